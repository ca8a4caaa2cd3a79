package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/telemetree/sensornet-core/internal/auth"
	"github.com/telemetree/sensornet-core/internal/inventory"
	"github.com/telemetree/sensornet-core/internal/measurement"
)

// Error represents a structured error response. It also satisfies the
// error interface, so handlers can return one directly and classify
// will carry it to the client verbatim.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Error names carried in the response body. Clients branch on Name;
// Status is the HTTP status repeated for clients that cannot see headers.
const (
	NameBadRequest         = "BadRequest"
	NameUnauthorized       = "Unauthorized"
	NameInsufficientRights = "InsufficientRights"
	NameNotFound           = "NotFound"
	NameConflict           = "Conflict"
	NameInternal           = "InternalServerError"
)

// classify maps a domain error onto its HTTP representation.
//
// A typed *Error passes through verbatim. An error that exposes a
// recognised HTTP status via StatusCode() keeps that status and its
// message under a generic name. Domain sentinels map per the taxonomy
// below. Everything else becomes a generic 500 so internal failure
// details never reach the client. Invalid credentials always surface as
// the same "Invalid password" message regardless of which check failed.
func classify(err error) Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return *apiErr
	}

	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		if status := coded.StatusCode(); status >= 400 && status <= 599 {
			return Error{Status: status, Message: err.Error(), Name: nameForStatus(status)}
		}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Error{Status: http.StatusUnauthorized, Message: "Invalid password", Name: NameUnauthorized}
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenExpired):
		return Error{Status: http.StatusUnauthorized, Message: "Invalid or expired token", Name: NameUnauthorized}
	case errors.Is(err, auth.ErrForbidden):
		return Error{Status: http.StatusForbidden, Message: "Insufficient rights", Name: NameInsufficientRights}

	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, inventory.ErrGatewayNotFound),
		errors.Is(err, inventory.ErrNetworkNotFound),
		errors.Is(err, inventory.ErrSensorNotFound),
		errors.Is(err, measurement.ErrNotFound):
		return Error{Status: http.StatusNotFound, Message: err.Error(), Name: NameNotFound}

	case errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, inventory.ErrSlugExists),
		errors.Is(err, inventory.ErrSerialExists),
		errors.Is(err, inventory.ErrGatewayHasNetworks),
		errors.Is(err, inventory.ErrNetworkHasSensors):
		return Error{Status: http.StatusConflict, Message: err.Error(), Name: NameConflict}

	case errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, inventory.ErrInvalidName),
		errors.Is(err, inventory.ErrInvalidSlug),
		errors.Is(err, inventory.ErrInvalidProtocol),
		errors.Is(err, inventory.ErrInvalidSerial),
		errors.Is(err, inventory.ErrInvalidKind):
		return Error{Status: http.StatusBadRequest, Message: err.Error(), Name: NameBadRequest}
	}

	return Error{Status: http.StatusInternalServerError, Message: "internal server error", Name: NameInternal}
}

// nameForStatus returns the response Name for a bare HTTP status.
func nameForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return NameBadRequest
	case http.StatusUnauthorized:
		return NameUnauthorized
	case http.StatusForbidden:
		return NameInsufficientRights
	case http.StatusNotFound:
		return NameNotFound
	case http.StatusConflict:
		return NameConflict
	}
	if status >= http.StatusInternalServerError {
		return NameInternal
	}
	if text := strings.ReplaceAll(http.StatusText(status), " ", ""); text != "" {
		return text
	}
	return NameInternal
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a domain error after classification.
//
// Every handler error converges here: the original error is logged with
// the request context before the classified body goes out, so a 500
// response always has a matching log line with the real cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := classify(err)

	logArgs := []any{
		"error", err,
		"status", apiErr.Status,
		"name", apiErr.Name,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", r.Context().Value(ctxKeyRequestID),
	}
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logArgs...)
	} else {
		s.logger.Debug("request rejected", logArgs...)
	}

	writeJSON(w, apiErr.Status, apiErr)
}

// writeBadRequest writes a 400 error with a handler-supplied message,
// for request-shape problems (bad JSON, missing fields) that have no
// domain sentinel. It goes through writeError so the rejection is
// logged like any other.
func (s *Server) writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	s.writeError(w, r, &Error{
		Status:  http.StatusBadRequest,
		Message: message,
		Name:    NameBadRequest,
	})
}

// writeUnauthorized writes a 401 error with the given message.
func (s *Server) writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	s.writeError(w, r, &Error{
		Status:  http.StatusUnauthorized,
		Message: message,
		Name:    NameUnauthorized,
	})
}
