package retry

import (
	"context"
	"errors"
	"time"

	"github.com/smithkit/smithkit/logging"
)

// Outcome carries a successful operation result together with how many
// attempts it took.
type Outcome[O any] struct {
	Result   O
	Attempts int
}

// Operation is one attempt of the work under retry.
type Operation[O any] func(ctx context.Context, attempt int) (O, error)

// StandardStrategyOptions assemble a Strategy.
type StandardStrategyOptions struct {
	// MaxAttempts bounds the loop; zero means 3.
	MaxAttempts int
	// TokenBucket defaults to a standard bucket.
	TokenBucket TokenBucket
	// Delay defaults to 10ms initial, 20s ceiling, scale 2, full jitter.
	Delay DelayProvider
	// RateLimiter optionally gates attempts adaptively; nil disables.
	RateLimiter *AdaptiveRateLimiter
	Logger      logging.Logger
}

// Strategy is the coordinated retry loop. One Strategy is shared across
// operations; the bucket and limiter are the process-wide shared state.
type Strategy struct {
	maxAttempts int
	bucket      TokenBucket
	delay       DelayProvider
	limiter     *AdaptiveRateLimiter
	log         logging.Logger
}

func NewStandardStrategy(opts StandardStrategyOptions) *Strategy {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.TokenBucket == nil {
		opts.TokenBucket = NewStandardTokenBucket(DefaultStandardTokenBucketOptions)
	}
	if opts.Delay == nil {
		opts.Delay, _ = NewExponentialBackoffWithJitter(10*time.Millisecond, 20*time.Second, 2.0, 1.0)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Strategy{
		maxAttempts: opts.MaxAttempts,
		bucket:      opts.TokenBucket,
		delay:       opts.Delay,
		limiter:     opts.RateLimiter,
		log:         opts.Logger,
	}
}

func (s *Strategy) MaxAttempts() int { return s.maxAttempts }

// Retry runs op under policy until it succeeds, fails terminally, or the
// attempt budget is exhausted. Cancellation is never transformed: a context
// error from the operation or any delay is rethrown as-is.
func Retry[O any](ctx context.Context, s *Strategy, policy Policy[O], op Operation[O]) (Outcome[O], error) {
	var zero Outcome[O]

	token, err := s.bucket.Acquire(ctx)
	if err != nil {
		return zero, err
	}

	for attempt := 1; ; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Acquire(ctx, 1); err != nil {
				return zero, err
			}
		}

		result, opErr := op(ctx, attempt)

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(opErr, ctxErr) {
			token.NotifyFailure()
			return zero, opErr
		}

		directive := policy.Evaluate(result, opErr)

		if s.limiter != nil {
			throttled := directive.Kind == RetryError && directive.Reason == ReasonThrottling
			s.limiter.Update(throttled)
		}

		switch directive.Kind {
		case TerminateAndSucceed:
			token.NotifySuccess()
			return Outcome[O]{Result: result, Attempts: attempt}, nil

		case TerminateAndFail:
			token.NotifyFailure()
			if opErr == nil {
				opErr = errNonRetryable
			}
			return zero, opErr

		case RetryError:
			if attempt >= s.maxAttempts {
				token.NotifyFailure()
				return zero, &TooManyAttemptsError{Attempts: attempt, Last: opErr}
			}
			s.log.WithFields(logging.Fields{
				"attempt": attempt,
				"reason":  directive.Reason.String(),
			}).Debugf("retrying after %v", opErr)

			if err := s.delay.Backoff(ctx, attempt); err != nil {
				token.NotifyFailure()
				return zero, err
			}
			next, err := token.ScheduleRetry(ctx, directive.Reason)
			if err != nil {
				var capacity *CapacityExceededError
				if errors.As(err, &capacity) {
					return zero, &TooManyAttemptsError{Attempts: attempt, Last: opErr}
				}
				return zero, err
			}
			token = next
		}
	}
}
