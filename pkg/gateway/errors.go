package gateway

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindConfigurationMissing
	KindInvalidInput
	KindDownloadFailed
	KindSizeExceeded
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindConfigurationMissing:
		return "configuration_missing"
	case KindInvalidInput:
		return "invalid_input"
	case KindDownloadFailed:
		return "download_failed"
	case KindSizeExceeded:
		return "size_exceeded"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Status is the HTTP status code reported for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindSizeExceeded:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks by kind.
var (
	ErrConfigurationMissing = &Error{Kind: KindConfigurationMissing}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrDownloadFailed       = &Error{Kind: KindDownloadFailed}
	ErrSizeExceeded         = &Error{Kind: KindSizeExceeded}
	ErrStorage              = &Error{Kind: KindStorage}
)

// Error is a classified orchestrator failure. Message is safe to show to a
// caller; Err carries the detail for the logs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-facing text for err. Only 4xx kinds carry
// their own message; everything else is generic.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind.Status() < http.StatusInternalServerError && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}
