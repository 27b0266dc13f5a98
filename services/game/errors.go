package game

import (
	"errors"
	"fmt"
)

// ErrorCode buckets every failure the service can surface. Clients may
// retry conflicts after re-reading state; nothing else is retryable.
type ErrorCode string

const (
	CodeNotFound   ErrorCode = "not_found"
	CodeForbidden  ErrorCode = "authorization"
	CodeConflict   ErrorCode = "conflict"
	CodeValidation ErrorCode = "validation"
	CodeInternal   ErrorCode = "internal"
)

// Error is the structured error surfaced to callers. Internal detail never
// reaches clients: the gateway serializes only Code and Message.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errNotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func errForbidden(format string, args ...interface{}) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func errConflict(format string, args ...interface{}) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func errValidation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func errInternal(err error) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf("internal error: %v", err)}
}

// CodeOf extracts the error code, mapping unknown errors to internal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ClientMessage returns the message safe to emit to clients.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code == CodeInternal {
			return "internal server error"
		}
		return e.Message
	}
	return "internal server error"
}
