package api

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure.
type Kind int

const (
	// KindUnauthorized is an HTTP 401 from the remote service.
	KindUnauthorized Kind = iota
	// KindForbidden is an HTTP 403.
	KindForbidden
	// KindServer is any other response with status >= 400.
	KindServer
	// KindNetwork is a transport or timeout failure with no response.
	KindNetwork
	// KindDecode means the response body did not match the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindServer:
		return "server error"
	case KindNetwork:
		return "network error"
	case KindDecode:
		return "decode error"
	}
	return "unknown"
}

// Error is a classified remote API failure.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 when no response arrived
	Message string // human-readable detail
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewDecodeError wraps an unmarshalling failure so callers can classify it
// alongside transport errors.
func NewDecodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: "unexpected response shape", Err: err}
}

// KindOf extracts the classification from err, or KindNetwork when err is
// not an *Error at all.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

// IsUnauthorized reports whether err classifies as an HTTP 401 failure.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}
