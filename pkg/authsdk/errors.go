package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/apufleet/fleetauth/pkg/httpx"
)

// Error codes shared between the service handlers and this SDK.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeMalformedRecord    = "malformed_record"
	ErrorCodeConflict           = "conflict"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeInsufficientRole   = "insufficient_role"
	ErrorCodeBootstrapped       = "already_bootstrapped"
	ErrorCodeServerError        = "server_error"
	ErrorCodeRateLimited        = "rate_limit_exceeded"
)

// APIError is the service's JSON error shape. It implements error and
// is used both by the server (to write responses) and by the client
// (to represent failures).
type APIError struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable message; for sign-in failures it
	// is what the dashboard shows the user.
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is lets errors.Is match any APIError with the same code, so the
// sentinels below work across the wire.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// Predefined errors. Descriptions for sign-in failures deliberately
// match the messages the legacy dashboard displayed.
var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeNotFound,
		Description: "User not found",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "Invalid password",
	}

	ErrMalformedRecord = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeMalformedRecord,
		Description: "User record is invalid",
	}

	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "an account with that username already exists",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "invalid or missing access token",
	}

	ErrAlreadyBootstrapped = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeBootstrapped,
		Description: "the system already has accounts",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseAPIError decodes an error response body into an *APIError,
// falling back to a generic error for undecodable bodies.
func parseAPIError(statusCode int, body []byte) *APIError {
	var e APIError
	if err := json.Unmarshal(body, &e); err != nil || e.Code == "" {
		return &APIError{
			StatusCode:  statusCode,
			Code:        ErrorCodeServerError,
			Description: fmt.Sprintf("unexpected response (status %d)", statusCode),
		}
	}
	e.StatusCode = statusCode
	return &e
}
