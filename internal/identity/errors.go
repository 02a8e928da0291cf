package identity

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a resolver failure.
type Kind int

const (
	// KindInternal covers every fault that is not an upstream status.
	KindInternal Kind = iota
	// KindUpstream is a non-200 answer from the identity graph API.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is the only error type Resolve returns.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// UpstreamError forwards the upstream status and first error message.
func UpstreamError(code int, message string) *Error {
	return &Error{Kind: KindUpstream, Code: code, Message: message}
}

// InternalError wraps err as a 500.
func InternalError(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    http.StatusInternalServerError,
		Message: fmt.Sprintf("Internal server error: %v", err),
		Err:     err,
	}
}

// AsError returns err as an *Error, wrapping anything else as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return InternalError(err)
}
