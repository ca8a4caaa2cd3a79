package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims extends JWT standard claims with the fields authorization needs.
// Subject carries the username and uid the user row ID, so validated
// tokens resolve to an Identity without a database hit.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
}

// TokenService issues and validates signed access tokens. The signing
// secret and TTL are fixed at construction; the clock is injectable so
// tests can drive expiry without sleeping.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService with the given HMAC secret
// and token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed HS256 token for the user. The expiry is always
// issued-at plus the configured TTL. Users with a role outside the
// closed set cannot be issued tokens.
func (s *TokenService) Issue(user *User) (string, error) {
	if !IsValidRole(user.Role) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature, expiry, and required fields of a token
// string and returns the authenticated identity. Expired tokens return
// ErrTokenExpired; anything malformed, tampered, or signed with the
// wrong key returns ErrTokenInvalid.
func (s *TokenService) Validate(tokenString string) (*Identity, error) {
	claims, err := s.claims(tokenString)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.UserID, Username: claims.Subject, Role: claims.Role}, nil
}

// TTL returns the token lifetime the service issues with.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims parses and verifies a token string, returning its claims.
func (s *TokenService) claims(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}

	// A well-signed token with an unknown role is still unusable; to the
	// caller it is indistinguishable from any other bad token.
	if !IsValidRole(claims.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrTokenInvalid, claims.Role)
	}

	return claims, nil
}
