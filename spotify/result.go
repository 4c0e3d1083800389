package spotify

import (
	"time"

	"github.com/pkg/errors"
)

// Outcome discriminates the two arms of a Result.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// ErrorKind is the closed set of classified failure cases callers branch on.
// The zero value means the error is unclassified and fatal for the operation
// that produced it.
type ErrorKind string

const (
	// KindExpiredAuthCode is returned by the token endpoint when an
	// authorization code is exchanged more than ten minutes after issue.
	KindExpiredAuthCode ErrorKind = "expired-auth-code"

	// KindInvalidAuthCode is returned by the token endpoint when an
	// authorization code has already been exchanged once.
	KindInvalidAuthCode ErrorKind = "invalid-auth-code"

	// KindExpiredAccessToken is returned by resource endpoints when the
	// bearer token has passed its lifetime. Callers recover through the
	// session controller's bounded refresh-and-retry policy.
	KindExpiredAccessToken ErrorKind = "expired-access-token"

	// KindNoCurrentTrack is the "no content" steady state of the
	// currently-playing endpoint. Expected, not a failure.
	KindNoCurrentTrack ErrorKind = "no-current-track"

	// KindUncaught covers transport failures, malformed bodies, and any
	// provider error outside the classified set.
	KindUncaught ErrorKind = "uncaught-error"
)

// Result is the uniform envelope returned by every network operation against
// the provider. Operations that return a Result are total: they never
// propagate a transport error to the caller, they classify it instead.
type Result[T any] struct {
	Outcome Outcome
	Payload *T
	Message string
	Kind    ErrorKind
	At      time.Time
}

// NewSuccess builds a success Result stamped with the caller's clock.
func NewSuccess[T any](payload T, message string, at time.Time) Result[T] {
	return Result[T]{
		Outcome: OutcomeSuccess,
		Payload: &payload,
		Message: message,
		At:      at,
	}
}

// NewFailure builds an error Result. kind may be zero for unclassified
// failures.
func NewFailure[T any](kind ErrorKind, message string, at time.Time) Result[T] {
	return Result[T]{
		Outcome: OutcomeError,
		Message: message,
		Kind:    kind,
		At:      at,
	}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Fatal reports whether the Result is an error with no recoverable or benign
// classification. Fatal results should surface to the caller's error path.
func (r Result[T]) Fatal() bool {
	if r.Outcome != OutcomeError {
		return false
	}
	switch r.Kind {
	case KindExpiredAuthCode, KindInvalidAuthCode, KindExpiredAccessToken, KindNoCurrentTrack:
		return false
	}
	return true
}

// Err materialises a fatal Result as an error, nil otherwise.
func (r Result[T]) Err() error {
	if !r.Fatal() {
		return nil
	}
	return errors.New(r.Message)
}
