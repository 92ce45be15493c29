package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind string

const (
	KindValidation         Kind = "validation"          // 400
	KindInvalidCredentials Kind = "invalid_credentials" // 400
	KindUnauthorized       Kind = "unauthorized"        // 401
	KindForbidden          Kind = "forbidden"           // 403
	KindNotFound           Kind = "not_found"           // 404
	KindConflict           Kind = "conflict"            // 409
	KindRateLimited        Kind = "rate_limited"        // 429
	KindUnavailable        Kind = "unavailable"         // 503
	KindInternal           Kind = "internal"            // 500
)

// Error is the typed failure every handler and middleware reports.
// Message is safe to show to clients; Cause is only logged.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	return StatusFromKind(e.Kind)
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind Kind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func StatusFromKind(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Validation

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "Invalid request body", cause)
}

func ErrMissingFields(msg string) *Error {
	return New(KindValidation, "missing_fields", msg)
}

func ErrInvalidField(msg string) *Error {
	return New(KindValidation, "invalid_field", msg)
}

// Credentials and tokens

func ErrInvalidPassword() *Error {
	return New(KindInvalidCredentials, "invalid_password", "Invalid password")
}

func ErrTokenMissing() *Error {
	return New(KindUnauthorized, "token_missing", "Login first")
}

func ErrTokenInvalid() *Error {
	return New(KindUnauthorized, "token_invalid", "Invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindUnauthorized, "token_expired", "Token expired")
}

func ErrForbidden(msg string) *Error {
	return New(KindForbidden, "forbidden", msg)
}

// Lookups

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "User does not exist")
}

func ErrRouteNotFound() *Error {
	return New(KindNotFound, "not_found", "Not Found")
}

func ErrEmailTaken() *Error {
	return New(KindConflict, "user_exists", "User already exists")
}

// Infrastructure

func ErrTooManyRequests() *Error {
	return New(KindRateLimited, "rate_limited", "Too many requests, try again later")
}

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindUnavailable, "db_unavailable",
		"Database not connected. Check DATABASE_URL and ensure Postgres is reachable.", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "Server error", cause)
}
