package api

import (
	"context"
	"errors"
)

// Result is the outcome of a call after its fallback policy ran.
//
// Err is the error the caller has to deal with. When the policy substituted a
// value, Err is nil, Substituted is true and Cause keeps the swallowed error.
type Result[T any] struct {
	Value       T
	Err         error
	Substituted bool
	Cause       error
}

func (r Result[T]) OK() bool { return r.Err == nil }

// FallbackPolicy decides whether err may be replaced by a canned value.
type FallbackPolicy[T any] func(err error) (T, bool)

// Resolve applies policy to the outcome of a call. A nil policy never substitutes.
func Resolve[T any](v T, err error, policy FallbackPolicy[T]) Result[T] {
	if err == nil {
		return Result[T]{Value: v}
	}
	if policy != nil {
		if fb, ok := policy(err); ok {
			return Result[T]{Value: fb, Substituted: true, Cause: err}
		}
	}
	var zero T
	return Result[T]{Value: zero, Err: err}
}

// NoFallback is the policy of calls with nothing safe to substitute.
func NoFallback[T any]() FallbackPolicy[T] { return nil }

// OnAnyFailure substitutes fallback() for every error except local input
// rejection and caller cancellation.
func OnAnyFailure[T any](fallback func() T) FallbackPolicy[T] {
	return func(err error) (T, bool) {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrMissingID) || errors.Is(err, ErrEmptyContext) {
			var zero T
			return zero, false
		}
		return fallback(), true
	}
}

// OnTransportFailure substitutes fallback() only when the backend was never reached.
func OnTransportFailure[T any](fallback func() T) FallbackPolicy[T] {
	return func(err error) (T, bool) {
		if !IsTransport(err) {
			var zero T
			return zero, false
		}
		return fallback(), true
	}
}

// OnUnreadableReply substitutes fallback() when the backend was never reached
// or answered with a body that is not JSON.
func OnUnreadableReply[T any](fallback func() T) FallbackPolicy[T] {
	return func(err error) (T, bool) {
		var de *DecodeError
		if !IsTransport(err) && !errors.As(err, &de) {
			var zero T
			return zero, false
		}
		return fallback(), true
	}
}
