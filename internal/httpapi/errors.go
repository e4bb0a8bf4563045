package httpapi

import (
	"errors"
	"net/http"

	"gatepass-client/internal/gateway"
	"gatepass-client/internal/qr"
	"gatepass-client/internal/session"
	"gatepass-client/internal/verify"
)

// HTTPError carries an explicit status code and user message through
// the gin error chain.
type HTTPError struct {
	Err        error
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(statusCode int, err error, message string) *HTTPError {
	return &HTTPError{Err: err, StatusCode: statusCode, Message: message}
}

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

// errorStatusMap maps errors to HTTP status codes.
var errorStatusMap = map[error]int{
	ErrInvalidRequest:      http.StatusBadRequest,
	qr.ErrMalformedPayload: http.StatusBadRequest,

	verify.ErrNotAuthenticated:    http.StatusUnauthorized,
	gateway.ErrInvalidCredentials: http.StatusUnauthorized,
	gateway.ErrSessionExpired:     http.StatusUnauthorized,

	gateway.ErrForbidden: http.StatusForbidden,

	ErrNotFound:         http.StatusNotFound,
	gateway.ErrNotFound: http.StatusNotFound,

	verify.ErrSessionClosed: http.StatusConflict,

	session.ErrServerUnavailable: http.StatusServiceUnavailable,
	gateway.ErrUnreachable:       http.StatusServiceUnavailable,
	gateway.ErrTimeout:           http.StatusServiceUnavailable,
}

// errorMessageMap maps errors to user-facing messages. Unknown 5xx
// errors never leak details.
var errorMessageMap = map[error]string{
	ErrInvalidRequest:      "Invalid request format",
	qr.ErrMalformedPayload: "Malformed QR payload",

	verify.ErrNotAuthenticated:    "Log in before using the gate station",
	gateway.ErrInvalidCredentials: "Invalid email or password",
	gateway.ErrSessionExpired:     "Session expired, log in again",

	gateway.ErrForbidden: "Access denied",

	ErrNotFound:         "Not found",
	gateway.ErrNotFound: "Not found",

	verify.ErrSessionClosed: "Scan session superseded, start a new one",

	session.ErrServerUnavailable: "Remote server is unreachable",
	gateway.ErrUnreachable:       "Remote server is unreachable",
	gateway.ErrTimeout:           "Remote server timed out",
}

// GetErrorStatus returns the HTTP status code for an error.
func GetErrorStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// GetErrorMessage returns a user-friendly message for an error.
func GetErrorMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	for knownErr, message := range errorMessageMap {
		if errors.Is(err, knownErr) {
			return message
		}
	}

	if GetErrorStatus(err) >= 500 {
		return "An internal error occurred"
	}
	return err.Error()
}
