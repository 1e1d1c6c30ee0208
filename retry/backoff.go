package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// DelayProvider spaces attempts apart. Backoff observes cancellation while
// sleeping.
type DelayProvider interface {
	Backoff(ctx context.Context, attempt int) error
}

// ExponentialBackoffWithJitter computes, for attempt n >= 1,
// min(initialDelay * scaleFactor^(n-1), maxBackoff), then applies full
// jitter as a multiplicative reduction in [1-jitter, 1].
type ExponentialBackoffWithJitter struct {
	InitialDelay time.Duration
	MaxBackoff   time.Duration
	ScaleFactor  float64
	Jitter       float64

	random func() float64
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewExponentialBackoffWithJitter(initial, max time.Duration, scale, jitter float64) (*ExponentialBackoffWithJitter, error) {
	if initial < 0 {
		return nil, fmt.Errorf("initial delay must be >= 0, got %v", initial)
	}
	if scale < 1 {
		return nil, fmt.Errorf("scale factor must be >= 1, got %v", scale)
	}
	if jitter < 0 || jitter > 1 {
		return nil, fmt.Errorf("jitter must be in [0, 1], got %v", jitter)
	}
	return &ExponentialBackoffWithJitter{
		InitialDelay: initial,
		MaxBackoff:   max,
		ScaleFactor:  scale,
		Jitter:       jitter,
		random:       rand.Float64,
		sleep:        sleepContext,
	}, nil
}

// DelayFor returns the jittered delay for attempt n (1-based).
func (b *ExponentialBackoffWithJitter) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(b.InitialDelay) * math.Pow(b.ScaleFactor, float64(attempt-1))
	if max := float64(b.MaxBackoff); delay > max {
		delay = max
	}
	if b.Jitter > 0 {
		delay *= 1 - b.Jitter*b.random()
	}
	return time.Duration(delay)
}

func (b *ExponentialBackoffWithJitter) Backoff(ctx context.Context, attempt int) error {
	return b.sleep(ctx, b.DelayFor(attempt))
}
