package portdex

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be used with the Error type and inspected via
// ErrorCode. They map cleanly onto the pipeline's failure taxonomy:
// ENOTFOUND doubles as the cache-miss signal and is never fatal on its own.
const (
	ECONFLICT      = "conflict"      // conflicting state
	EINVALID       = "invalid"       // validation failed
	EINTERNAL      = "internal"      // internal error
	ENOTFOUND      = "not_found"     // entity does not exist / cache miss
	ETIMEOUT       = "timeout"       // operation exceeded its deadline
	EUNAVAILABLE   = "unavailable"   // network or collaborator unavailable
	EUNPROCESSABLE = "unprocessable" // document structure unrecognized
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the machine-readable code and a
// human-readable message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("portdex error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
