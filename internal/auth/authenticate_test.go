package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *SQLiteUserRepository) {
	t.Helper()

	db := testDB(t)
	repo := NewUserRepository(db)
	tokens := NewTokenService(testSecret, 15*time.Minute)
	return NewAuthenticator(repo, tokens), repo
}

func TestAuthenticate_Success(t *testing.T) {
	authn, repo := newTestAuthenticator(t)
	seedTestUser(t, repo.db, "alice", RoleOperator)

	user, token, err := authn.Authenticate(context.Background(), "alice", "test-password")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want alice", user.Username)
	}
	if token == "" {
		t.Fatal("Authenticate() returned empty token")
	}

	identity, err := authn.tokens.Validate(token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if identity.Role != RoleOperator {
		t.Errorf("token role = %q, want operator", identity.Role)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	authn, repo := newTestAuthenticator(t)
	seedTestUser(t, repo.db, "alice", RoleOperator)

	inactive := seedTestUser(t, repo.db, "bob", RoleViewer)
	inactive.IsActive = false
	if err := repo.Update(context.Background(), inactive); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "not-the-password"},
		{"unknown username", "mallory", "test-password"},
		{"inactive account", "bob", "test-password"},
		{"empty credentials", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := authn.Authenticate(context.Background(), tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
			}
			// Every failure mode must surface the identical sentinel so
			// the response gives nothing away about which accounts exist.
			if err.Error() != ErrInvalidCredentials.Error() {
				t.Errorf("error message %q leaks failure detail", err.Error())
			}
		})
	}
}
