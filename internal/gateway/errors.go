package gateway

import "errors"

// Error taxonomy for outbound calls. Callers branch on these with
// errors.Is; the offline fallback keys on IsConnectivity.
var (
	// Authentication
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")

	// Connectivity
	ErrUnreachable = errors.New("server unreachable")
	ErrTimeout     = errors.New("request timed out")

	// Remote rejections
	ErrBadRequest = errors.New("request rejected")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")

	// Conflicts
	ErrDuplicateQRCode = errors.New("duplicate qr code")
	ErrDuplicatePlate  = errors.New("duplicate plate number")

	// Response shape failed boundary validation
	ErrInvalidResponse = errors.New("invalid response shape")

	ErrServerError = errors.New("server error")
)

// IsConnectivity reports whether err means the remote API could not be
// reached at all, as opposed to a definitive answer. Only these errors
// route a verification to the offline path.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout)
}
