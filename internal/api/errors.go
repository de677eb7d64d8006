package api

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyContext is returned before any request when the context to check is blank.
var ErrEmptyContext = errors.New("please enter API context")

// ErrMissingID is returned before any request when an id-addressed call has no id.
var ErrMissingID = errors.New("missing api id")

// TransportError wraps a failure to reach the backend or to read its reply.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a reply with a status the operation does not accept.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// DecodeError is a reply whose body could not be decoded.
type DecodeError struct {
	Op     string
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid json response (status=%d): %v", e.Op, e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransport reports whether err means the backend was never reached.
// Caller cancellation does not count.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransportError
	return errors.As(err, &te)
}
