package auth

import (
	"context"
	"errors"
	"fmt"
)

// Authenticator verifies login credentials and issues access tokens.
type Authenticator struct {
	users  UserRepository
	tokens *TokenService
}

// NewAuthenticator constructs an Authenticator from its dependencies.
func NewAuthenticator(users UserRepository, tokens *TokenService) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// dummyHash is verified against when the username does not resolve, so a
// failed lookup costs the same as a wrong password and response timing
// does not reveal which usernames exist.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=1$AAAAAAAAAAAAAAAAAAAAAA$t0B9Tpv1M3rrUN5TLbyhVVheTJnOvaulhfAKu6AYMNw"

// Authenticate verifies a username and password and returns the account
// with a freshly issued token. Unknown usernames, inactive accounts, and
// wrong passwords all return ErrInvalidCredentials so callers cannot
// distinguish them.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*User, string, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			VerifyPassword(password, dummyHash) //nolint:errcheck // burn the same work as a real check
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok || !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	return user, token, nil
}
