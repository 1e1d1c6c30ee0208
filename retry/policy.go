// Package retry drives repeated operation attempts under a token bucket,
// exponential backoff with jitter, and an optional adaptive client-side
// rate limiter.
package retry

import (
	"errors"
	"fmt"
)

// ErrorReason classifies a retryable failure; it drives both backoff and
// token cost.
type ErrorReason int

const (
	ReasonTransient ErrorReason = iota
	ReasonThrottling
	ReasonServerSide
	ReasonClientSide
)

func (r ErrorReason) String() string {
	switch r {
	case ReasonTransient:
		return "transient"
	case ReasonThrottling:
		return "throttling"
	case ReasonServerSide:
		return "server-side"
	case ReasonClientSide:
		return "client-side"
	}
	return fmt.Sprintf("ErrorReason(%d)", int(r))
}

type DirectiveKind int

const (
	// TerminateAndSucceed accepts the attempt's result.
	TerminateAndSucceed DirectiveKind = iota
	// TerminateAndFail surfaces the attempt's error without retrying.
	TerminateAndFail
	// RetryError schedules another attempt.
	RetryError
)

// Directive is a policy's verdict over one attempt.
type Directive struct {
	Kind   DirectiveKind
	Reason ErrorReason
}

func Succeed() Directive { return Directive{Kind: TerminateAndSucceed} }

func Fail() Directive { return Directive{Kind: TerminateAndFail} }

func RetryWith(reason ErrorReason) Directive {
	return Directive{Kind: RetryError, Reason: reason}
}

// Policy evaluates one attempt outcome. Exactly one of result and err is
// meaningful, mirroring the operation's return.
type Policy[O any] interface {
	Evaluate(result O, err error) Directive
}

type PolicyFunc[O any] func(result O, err error) Directive

func (f PolicyFunc[O]) Evaluate(result O, err error) Directive { return f(result, err) }

// TooManyAttemptsError reports an exhausted retry budget; it carries the
// last observed error.
type TooManyAttemptsError struct {
	Attempts int
	Last     error
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many attempts (%d): %v", e.Attempts, e.Last)
}

func (e *TooManyAttemptsError) Unwrap() error { return e.Last }

// CapacityExceededError reports an empty token bucket in circuit-breaker
// mode.
type CapacityExceededError struct {
	Cause error
}

func (e *CapacityExceededError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("retry capacity exceeded: %v", e.Cause)
	}
	return "retry capacity exceeded"
}

func (e *CapacityExceededError) Unwrap() error { return e.Cause }

var errNonRetryable = errors.New("operation failed with a non-retryable result")
