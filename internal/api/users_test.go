package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/telemetree/sensornet-core/internal/auth"
)

func TestCreateUser(t *testing.T) {
	f := testServer(t)
	admin, token := f.seedUser(t, "root", auth.RoleAdmin)

	rec := f.do(t, http.MethodPost, "/api/v1/users", token, map[string]any{
		"username":     "newbie",
		"display_name": "New Operator",
		"password":     "a-long-password",
		"role":         "operator",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user = %d (body: %s)", rec.Code, rec.Body.String())
	}

	var user auth.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Role != auth.RoleOperator || !user.IsActive {
		t.Errorf("created user = %+v", user)
	}
	// created_by carries the creating admin's row ID; the schema enforces
	// it with a foreign key, so a username here would fail the insert.
	if user.CreatedBy != admin.ID {
		t.Errorf("created_by = %q, want %q", user.CreatedBy, admin.ID)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}

	// The new account can log in immediately.
	login := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "newbie", "password": "a-long-password",
	})
	if login.Code != http.StatusOK {
		t.Errorf("fresh user login = %d, want 200", login.Code)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	f := testServer(t)
	_, token := f.seedUser(t, "root", auth.RoleAdmin)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing password", map[string]any{"username": "x123", "display_name": "X"}},
		{"short password", map[string]any{"username": "x123", "display_name": "X", "password": "short"}},
		{"bad username", map[string]any{"username": "Bad User!", "display_name": "X", "password": "a-long-password"}},
		{"unknown role", map[string]any{"username": "x123", "display_name": "X", "password": "a-long-password", "role": "superuser"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/users", token, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	f := testServer(t)
	_, token := f.seedUser(t, "root", auth.RoleAdmin)
	f.seedUser(t, "taken", auth.RoleViewer)

	rec := f.do(t, http.MethodPost, "/api/v1/users", token, map[string]any{
		"username": "taken", "display_name": "Taken", "password": "a-long-password",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate username = %d, want 409", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Name != NameConflict {
		t.Errorf("name = %q, want Conflict", apiErr.Name)
	}
}

func TestDeleteUser_SelfDeletionBlocked(t *testing.T) {
	f := testServer(t)
	admin, token := f.seedUser(t, "root", auth.RoleAdmin)

	rec := f.do(t, http.MethodDelete, "/api/v1/users/"+admin.ID, token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self-delete = %d, want 400", rec.Code)
	}
}

func TestUpdateUser_DeactivationBlocksLogin(t *testing.T) {
	f := testServer(t)
	_, adminToken := f.seedUser(t, "root", auth.RoleAdmin)
	target, _ := f.seedUser(t, "victim", auth.RoleViewer)

	rec := f.do(t, http.MethodPatch, "/api/v1/users/"+target.ID, adminToken, map[string]any{
		"is_active": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate = %d (body: %s)", rec.Code, rec.Body.String())
	}

	login := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "victim", "password": "test-password",
	})
	if login.Code != http.StatusUnauthorized {
		t.Errorf("deactivated login = %d, want 401", login.Code)
	}
}

func TestSetUserPassword(t *testing.T) {
	f := testServer(t)
	_, adminToken := f.seedUser(t, "root", auth.RoleAdmin)
	target, _ := f.seedUser(t, "rotate", auth.RoleViewer)

	rec := f.do(t, http.MethodPut, "/api/v1/users/"+target.ID+"/password", adminToken, map[string]any{
		"password": "brand-new-password",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("set password = %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Old password rejected, new one accepted.
	old := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "rotate", "password": "test-password",
	})
	if old.Code != http.StatusUnauthorized {
		t.Errorf("old password login = %d, want 401", old.Code)
	}
	fresh := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "rotate", "password": "brand-new-password",
	})
	if fresh.Code != http.StatusOK {
		t.Errorf("new password login = %d, want 200", fresh.Code)
	}
}
