package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telemetree/sensornet-core/internal/audit"
	"github.com/telemetree/sensornet-core/internal/auth"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

type createUserRequest struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Password    string    `json:"password"`
	Role        auth.Role `json:"role"`
}

type updateUserRequest struct {
	DisplayName *string    `json:"display_name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Role        *auth.Role `json:"role,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleCreateUser creates a new user account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" || req.DisplayName == "" {
		s.writeBadRequest(w, r, "username, password, and display_name are required")
		return
	}
	if !auth.IsValidUsername(req.Username) {
		s.writeBadRequest(w, r, "username must be 3-32 lowercase letters, digits, or _.-")
		return
	}
	if len(req.Password) < minPasswordLength {
		s.writeBadRequest(w, r, "password must be at least 8 characters")
		return
	}

	if req.Role == "" {
		req.Role = auth.RoleViewer
	}
	if !auth.IsValidRole(req.Role) {
		s.writeBadRequest(w, r, "invalid role: must be admin, operator, or viewer")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	identity := identityFromContext(r.Context())
	user := &auth.User{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if identity != nil {
		user.CreatedBy = identity.UserID
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     user.CreatedBy,
		Details:    map[string]any{"username": user.Username, "role": string(user.Role)},
	})

	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser returns a single user by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser applies a partial update to a user account.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}

	user, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		if !auth.IsValidRole(*req.Role) {
			s.writeBadRequest(w, r, "invalid role: must be admin, operator, or viewer")
			return
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     actingUserID(r),
	})

	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser removes a user account. Admins cannot delete their
// own account, which keeps the system from locking everyone out.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if identity := identityFromContext(r.Context()); identity != nil && identity.Username == user.Username {
		s.writeBadRequest(w, r, "cannot delete your own account")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityUser,
		EntityID:   id,
		UserID:     actingUserID(r),
		Details:    map[string]any{"username": user.Username},
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleSetUserPassword replaces a user's password.
func (s *Server) handleSetUserPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}
	if len(req.Password) < minPasswordLength {
		s.writeBadRequest(w, r, "password must be at least 8 characters")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.users.GetByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.UpdatePassword(r.Context(), id, hash); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityUser,
		EntityID:   id,
		UserID:     actingUserID(r),
		Details:    map[string]any{"password_changed": true},
	})

	w.WriteHeader(http.StatusNoContent)
}

// actingUserID returns the authenticated caller's user ID, or empty
// when the route is unauthenticated. Audit entries and created_by
// columns store the user row ID, not the username.
func actingUserID(r *http.Request) string {
	if identity := identityFromContext(r.Context()); identity != nil {
		return identity.UserID
	}
	return ""
}
