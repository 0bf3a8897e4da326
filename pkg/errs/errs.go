// Package errs carries the domain error kinds surfaced at the API
// boundary. Every error is a status/message pair; internal detail
// (storage errors, stack traces) never rides along into a response.
package errs

import "net/http"

// E is a domain error with a stable HTTP status and a short
// human-readable message.
type E struct {
	Status int
	Msg    string
}

func (e *E) Error() string { return e.Msg }

// New returns an error with an explicit status and message.
func New(status int, msg string) *E { return &E{Status: status, Msg: msg} }

func NotFound(msg string) *E      { return &E{http.StatusNotFound, msg} }
func Invalid(msg string) *E       { return &E{http.StatusBadRequest, msg} }
func Unauthorized(msg string) *E  { return &E{http.StatusUnauthorized, msg} }
func Forbidden(msg string) *E     { return &E{http.StatusForbidden, msg} }
func Conflict(msg string) *E      { return &E{http.StatusConflict, msg} }
func Internal(msg string) *E      { return &E{http.StatusInternalServerError, msg} }

// StatusOf maps an error to its response status. Errors that are not
// an *E are treated as server-side failures.
func StatusOf(err error) int {
	if e, ok := err.(*E); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-visible message for an error. Non-domain
// errors collapse to a generic message so internals do not leak.
func MessageOf(err error) string {
	if e, ok := err.(*E); ok {
		return e.Msg
	}
	return "internal error"
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool {
	e, ok := err.(*E)
	return ok && e.Status == http.StatusNotFound
}
