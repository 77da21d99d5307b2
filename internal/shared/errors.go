package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateAccount occurs when registering an email that is taken.
	ErrDuplicateAccount = errors.New("account already registered")
	// ErrRateLimited occurs when the identity provider throttles a caller.
	ErrRateLimited = errors.New("too many attempts, try again later")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// FieldErrors carries per-field validation messages from a service.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return "validation failed"
}

// Any reports whether at least one field error was recorded.
func (f FieldErrors) Any() bool {
	return len(f) > 0
}
