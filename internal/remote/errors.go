package remote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies remote failures.
type ErrorKind string

const (
	// KindTransport covers timeouts and connectivity failures.
	KindTransport ErrorKind = "TRANSPORT"

	// KindNotFound means the remote answered "not found".
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindInvalidParameter means the remote rejected a request parameter.
	KindInvalidParameter ErrorKind = "INVALID_PARAMETER"

	// KindServer covers other errors reported by the remote service.
	KindServer ErrorKind = "SERVER"

	// KindUnknown is anything that could not be classified.
	KindUnknown ErrorKind = "UNKNOWN"
)

// Remote error codes with special handling.
const (
	// CodeNoRoute is reported with a not-found status when the endpoint
	// itself is missing (e.g. a plugin is not installed). It does not mean
	// the entity is gone.
	CodeNoRoute = "rest_no_route"

	// CodeInvalidParam is the remote's generic parameter rejection.
	CodeInvalidParam = "rest_invalid_param"
)

// Error is a failure reported by a remote collaborator.
type Error struct {
	Kind    ErrorKind
	Code    string
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("remote %s (%s): %s", e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("remote %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a not-found error for a missing entity.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Status: 404, Message: message}
}

// InvalidParameter builds an invalid-parameter rejection.
func InvalidParameter(message string) *Error {
	return &Error{Kind: KindInvalidParameter, Code: CodeInvalidParam, Status: 400, Message: message}
}

// Transport wraps a connectivity failure.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// KindOf returns the kind of a remote error, or KindUnknown.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// IsResourceNotFound reports whether err says the requested entity does not
// exist. A missing route is not a missing entity.
func IsResourceNotFound(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == KindNotFound && re.Code != CodeNoRoute
	}
	return false
}

// IsInvalidParameter reports whether err is a parameter rejection.
func IsInvalidParameter(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == KindInvalidParameter
	}
	return false
}

// IsTransport reports whether err is a connectivity failure.
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}
