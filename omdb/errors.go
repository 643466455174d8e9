package omdb

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid omdb configuration")
	// ErrNotFound indicates no record matched the query, or the response could not be decoded
	ErrNotFound = errors.New("film not found")
	// ErrDecode indicates the response body did not have the expected shape
	ErrDecode = errors.New("failed to decode omdb response")
	// ErrTransport indicates the request could not be completed
	ErrTransport = errors.New("omdb request failed")
	// ErrTimeout indicates the request did not complete in time
	ErrTimeout = errors.New("omdb request timed out")
	// ErrUnauthorized indicates the API key was rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
	// ErrAPI indicates an unexpected HTTP status from the API
	ErrAPI = errors.New("unexpected omdb API status")
)

// Kind classifies an Error
type Kind int

const (
	// KindNotFound means the API reported no match
	KindNotFound Kind = iota
	// KindDecode means the body could not be decoded
	KindDecode
	// KindTransport means the HTTP round trip failed
	KindTransport
	// KindTimeout means the HTTP round trip timed out
	KindTimeout
	// KindUnauthorized means the API rejected the key
	KindUnauthorized
	// KindAPI means the API answered with an unexpected status
	KindAPI
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindDecode:
		return "decode"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Error is returned by every Client operation.
//
// Decode failures match both ErrDecode and ErrNotFound, and timeouts match both
// ErrTimeout and ErrTransport, so callers can test at whichever granularity
// they need with errors.Is.
type Error struct {
	Op         string
	Kind       Kind
	Query      string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("omdb %s %q: %s", e.Op, e.Query, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is one of the sentinels matching this error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound || e.Kind == KindDecode
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrTransport:
		return e.Kind == KindTransport || e.Kind == KindTimeout
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrAPI:
		return e.Kind == KindAPI
	}
	return false
}

// IsNotFound checks if the error indicates no matching record
func (e *Error) IsNotFound() bool {
	return e.Is(ErrNotFound)
}

// IsTemporary checks if retrying the same request could succeed
func (e *Error) IsTemporary() bool {
	return e.Kind == KindTransport || e.Kind == KindTimeout || (e.Kind == KindAPI && e.StatusCode >= 500)
}
