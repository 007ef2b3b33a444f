package mirage

import (
	"errors"
	"fmt"
)

// Error codes. Each failure of the completion engine carries exactly one.
const (
	// EUNAVAILABLE means the completion service could not be reached or
	// refused to serve the completion.
	EUNAVAILABLE = "service_unavailable"
	// EMALFORMED means the completion service answered with a body that is
	// not the expected {"content": "<json text>"} envelope.
	EMALFORMED = "malformed_response"
	// ESCHEMA means the envelope's content is not valid JSON or does not
	// satisfy the SearchResults schema.
	ESCHEMA = "schema_violation"
	// EINVALID means the caller sent an unusable request.
	EINVALID = "invalid_request"
	// EINTERNAL is reserved for failures that indicate a bug.
	EINTERNAL = "internal"
)

// Error is the error type returned by the engine and the daemon.
type Error struct {
	// Code is one of the E* constants.
	Code string
	// Message is a human-readable description safe to show to end users.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Errorf returns an *Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError returns an *Error with the given code and message wrapping err.
func WrapError(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrorCode returns the code of the first *Error in err's chain.
// Returns EINTERNAL for errors that are not *Error, and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the first *Error in
// err's chain, or err.Error() for other errors.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	return err.Error()
}

// NewErrorBody converts err into its wire form.
func NewErrorBody(err error) *ErrorBody {
	return &ErrorBody{Code: ErrorCode(err), Message: ErrorMessage(err)}
}
