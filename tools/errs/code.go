package errs

import "net/http"

// Error codes double as HTTP status codes: every API failure maps onto the
// fixed taxonomy below before it leaves the process.
const (
	CodeValidation   = http.StatusBadRequest
	CodeUnauthorized = http.StatusUnauthorized
	CodeForbidden    = http.StatusForbidden
	CodeNotFound     = http.StatusNotFound
	CodeRateLimited  = http.StatusTooManyRequests
	CodeInternal     = http.StatusInternalServerError
)

var (
	ErrTokenMissing = NewCodeError(CodeUnauthorized, "Access token required")
	ErrTokenInvalid = NewCodeError(CodeUnauthorized, "Invalid token")
	ErrTokenExpired = NewCodeError(CodeUnauthorized, "Token expired")

	ErrForbidden = NewCodeError(CodeForbidden, "You do not own this resource")
	ErrBlocked   = NewCodeError(CodeForbidden, "Interaction not allowed")

	ErrNotFound    = NewCodeError(CodeNotFound, "Resource not found")
	ErrRateLimited = NewCodeError(CodeRateLimited, "Too many requests, please try again later")
	ErrInternal    = NewCodeError(CodeInternal, "Internal server error")
)

// NewValidation reports a 400 with a caller-supplied message.
func NewValidation(msg string) CodeError {
	return NewCodeError(CodeValidation, msg)
}

// NewDuplicate names the unique field that collided. Duplicate keys surface
// as 400 so the client can fix the offending field.
func NewDuplicate(field string) CodeError {
	return NewCodeError(CodeValidation, field+" already taken")
}
