// internal/app/system/apierr/apierr.go
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies a domain error and fixes its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindOTPMismatch
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindTooManyRequests
)

var statusByKind = map[Kind]int{
	KindInternal:        http.StatusInternalServerError,
	KindValidation:      http.StatusBadRequest,
	KindDuplicate:       http.StatusBadRequest,
	KindOTPMismatch:     http.StatusBadRequest,
	KindNotFound:        http.StatusNotFound,
	KindUnauthorized:    http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindConflict:        http.StatusConflict,
	KindTooManyRequests: http.StatusTooManyRequests,
}

// Error is a domain error that is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, logged but never returned
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error's kind.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newErr(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newErr(KindValidation, format, args...) }
func Duplicate(format string, args ...any) *Error  { return newErr(KindDuplicate, format, args...) }
func NotFound(format string, args ...any) *Error   { return newErr(KindNotFound, format, args...) }
func Unauthorized(format string, args ...any) *Error {
	return newErr(KindUnauthorized, format, args...)
}
func Forbidden(format string, args ...any) *Error { return newErr(KindForbidden, format, args...) }
func TooMany(format string, args ...any) *Error   { return newErr(KindTooManyRequests, format, args...) }

// OTPMismatch is returned when a submitted code does not match the stored one.
func OTPMismatch() *Error { return newErr(KindOTPMismatch, "Wrong OTP code entered") }

// Conflict wraps a stale-revision failure.
func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Message: "The record was modified by another request; reload and try again", Err: err}
}

// Internal wraps an unexpected failure under a caller-facing message.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// Body is the canonical JSON error body.
type Body struct {
	Message string `json:"message"`
}

// Write maps err to a JSON response. Domain errors keep their status and
// message; anything else is logged and reported as a 500.
func Write(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	e, ok := As(err)
	if !ok {
		e = Internal("Internal server error", err)
	}
	status := e.Status()
	if status >= http.StatusInternalServerError && log != nil {
		log.Error(op+" failed", zap.Error(err))
	} else if e.Err != nil && log != nil {
		log.Warn(op+" rejected", zap.String("reason", e.Message), zap.Error(e.Err))
	}
	WriteMessage(w, status, e.Message)
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Message: msg})
}
