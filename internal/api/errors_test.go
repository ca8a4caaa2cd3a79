package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/telemetree/sensornet-core/internal/auth"
	"github.com/telemetree/sensornet-core/internal/inventory"
	"github.com/telemetree/sensornet-core/internal/measurement"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantName   string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, NameUnauthorized},
		{"invalid token", auth.ErrTokenInvalid, http.StatusUnauthorized, NameUnauthorized},
		{"expired token", auth.ErrTokenExpired, http.StatusUnauthorized, NameUnauthorized},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden, NameInsufficientRights},
		{"user not found", auth.ErrUserNotFound, http.StatusNotFound, NameNotFound},
		{"gateway not found", inventory.ErrGatewayNotFound, http.StatusNotFound, NameNotFound},
		{"network not found", inventory.ErrNetworkNotFound, http.StatusNotFound, NameNotFound},
		{"sensor not found", inventory.ErrSensorNotFound, http.StatusNotFound, NameNotFound},
		{"measurement not found", measurement.ErrNotFound, http.StatusNotFound, NameNotFound},
		{"username exists", auth.ErrUsernameExists, http.StatusConflict, NameConflict},
		{"slug exists", inventory.ErrSlugExists, http.StatusConflict, NameConflict},
		{"serial exists", inventory.ErrSerialExists, http.StatusConflict, NameConflict},
		{"gateway has networks", inventory.ErrGatewayHasNetworks, http.StatusConflict, NameConflict},
		{"network has sensors", inventory.ErrNetworkHasSensors, http.StatusConflict, NameConflict},
		{"invalid role", auth.ErrInvalidRole, http.StatusBadRequest, NameBadRequest},
		{"invalid name", inventory.ErrInvalidName, http.StatusBadRequest, NameBadRequest},
		{"invalid slug", inventory.ErrInvalidSlug, http.StatusBadRequest, NameBadRequest},
		{"invalid protocol", inventory.ErrInvalidProtocol, http.StatusBadRequest, NameBadRequest},
		{"unknown error", errors.New("disk exploded"), http.StatusInternalServerError, NameInternal},
		{"nil-adjacent wrapped", fmt.Errorf("context: %w", errors.New("opaque")), http.StatusInternalServerError, NameInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if got.Status != tc.wantStatus {
				t.Errorf("status = %d, want %d", got.Status, tc.wantStatus)
			}
			if got.Name != tc.wantName {
				t.Errorf("name = %q, want %q", got.Name, tc.wantName)
			}
			if got.Message == "" {
				t.Error("message must never be empty")
			}
		})
	}
}

func TestClassify_WrappedErrors(t *testing.T) {
	// Classification must see through fmt.Errorf %w wrapping.
	wrapped := fmt.Errorf("looking up gateway %q: %w", "gw-123", inventory.ErrGatewayNotFound)
	got := classify(wrapped)
	if got.Status != http.StatusNotFound || got.Name != NameNotFound {
		t.Errorf("wrapped sentinel classified as %d/%s, want 404/NotFound", got.Status, got.Name)
	}
}

func TestClassify_InternalHidesDetails(t *testing.T) {
	got := classify(errors.New("pq: connection refused on 10.0.0.5"))
	if got.Message != "internal server error" {
		t.Errorf("internal error message %q leaks details", got.Message)
	}
}

func TestClassify_CredentialFailureMessage(t *testing.T) {
	// Login failures surface one fixed message regardless of cause.
	got := classify(auth.ErrInvalidCredentials)
	if got.Message != "Invalid password" {
		t.Errorf("message = %q, want %q", got.Message, "Invalid password")
	}
}

// statusCodeError mimics errors from HTTP client libraries that expose
// their status via a StatusCode method rather than a sentinel.
type statusCodeError struct {
	code int
	msg  string
}

func (e *statusCodeError) Error() string   { return e.msg }
func (e *statusCodeError) StatusCode() int { return e.code }

func TestClassify_TypedErrorPassesThrough(t *testing.T) {
	typed := &Error{Status: http.StatusConflict, Message: "slot already claimed", Name: NameConflict}

	got := classify(typed)
	if got != *typed {
		t.Errorf("classify(typed) = %+v, want %+v", got, *typed)
	}

	// Stays intact through wrapping.
	got = classify(fmt.Errorf("rejecting claim: %w", typed))
	if got != *typed {
		t.Errorf("classify(wrapped typed) = %+v, want %+v", got, *typed)
	}
}

func TestClassify_StatusCodeErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantName   string
	}{
		{"conflict", &statusCodeError{code: http.StatusConflict, msg: "already exists upstream"}, http.StatusConflict, NameConflict},
		{"not found", &statusCodeError{code: http.StatusNotFound, msg: "gone upstream"}, http.StatusNotFound, NameNotFound},
		{"service unavailable", &statusCodeError{code: http.StatusServiceUnavailable, msg: "backend down"}, http.StatusServiceUnavailable, NameInternal},
		{"wrapped", fmt.Errorf("proxying: %w", &statusCodeError{code: http.StatusForbidden, msg: "denied upstream"}), http.StatusForbidden, NameInsufficientRights},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Message != tt.err.Error() {
				t.Errorf("Message = %q, want %q", got.Message, tt.err.Error())
			}
		})
	}

	// A StatusCode outside the error range is not trusted.
	got := classify(&statusCodeError{code: http.StatusOK, msg: "confused client"})
	if got.Status != http.StatusInternalServerError || got.Name != NameInternal {
		t.Errorf("classify(status 200) = %+v, want generic 500", got)
	}
}
