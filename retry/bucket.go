package retry

import (
	"context"
	"math"
	"sync"
	"time"
)

// StandardTokenBucketOptions tune the costed retry bucket.
type StandardTokenBucketOptions struct {
	// MaxCapacity is the ceiling; capacity never exceeds it.
	MaxCapacity int
	// RefillUnitsPerSecond restores capacity over time. Zero disables
	// refill (success returns are then the only income).
	RefillUnitsPerSecond int
	// CircuitBreakerMode fails acquisitions immediately instead of
	// delaying when capacity is insufficient.
	CircuitBreakerMode bool

	// InitialTryCost is the price of a first attempt.
	InitialTryCost int
	// InitialTrySuccessIncrement is returned on success.
	InitialTrySuccessIncrement int
	// RetryCost is the price of a plain retry.
	RetryCost int
	// TimeoutRetryCost is the price of a timeout or throttle retry.
	TimeoutRetryCost int
}

// DefaultStandardTokenBucketOptions mirror the standard retry mode.
var DefaultStandardTokenBucketOptions = StandardTokenBucketOptions{
	MaxCapacity:                500,
	RefillUnitsPerSecond:       10,
	InitialTryCost:             0,
	InitialTrySuccessIncrement: 1,
	RetryCost:                  5,
	TimeoutRetryCost:           10,
}

// StandardTokenBucket throttles attempts by integer capacity that refills
// over time. The mutex guards only the small capacity-accounting sections.
type StandardTokenBucket struct {
	opts StandardTokenBucketOptions

	mu           sync.Mutex
	capacity     int
	lastAccounts time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewStandardTokenBucket(opts StandardTokenBucketOptions) *StandardTokenBucket {
	if opts.MaxCapacity <= 0 {
		opts.MaxCapacity = DefaultStandardTokenBucketOptions.MaxCapacity
	}
	b := &StandardTokenBucket{
		opts:     opts,
		capacity: opts.MaxCapacity,
		now:      time.Now,
		sleep:    sleepContext,
	}
	b.lastAccounts = b.now()
	return b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// refill credits elapsed time. Callers hold b.mu.
func (b *StandardTokenBucket) refill() {
	now := b.now()
	if b.opts.RefillUnitsPerSecond > 0 {
		elapsed := now.Sub(b.lastAccounts).Seconds()
		b.capacity += int(elapsed * float64(b.opts.RefillUnitsPerSecond))
		if b.capacity > b.opts.MaxCapacity {
			b.capacity = b.opts.MaxCapacity
		}
	}
	b.lastAccounts = now
}

// checkout pays cost, delaying in non-circuit mode when capacity is short.
func (b *StandardTokenBucket) checkout(ctx context.Context, cost int) error {
	if cost <= 0 {
		return nil
	}
	for {
		b.mu.Lock()
		b.refill()
		if b.capacity >= cost {
			b.capacity -= cost
			b.mu.Unlock()
			return nil
		}
		if b.opts.CircuitBreakerMode {
			b.mu.Unlock()
			return &CapacityExceededError{}
		}
		missing := cost - b.capacity
		b.mu.Unlock()

		refill := b.opts.RefillUnitsPerSecond
		if refill <= 0 {
			return &CapacityExceededError{}
		}
		delay := time.Duration(math.Ceil(float64(missing)/float64(refill))) * time.Second
		if err := b.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// deposit returns capacity. Callers outside hold no locks.
func (b *StandardTokenBucket) deposit(n int) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	b.refill()
	b.capacity += n
	if b.capacity > b.opts.MaxCapacity {
		b.capacity = b.opts.MaxCapacity
	}
	b.mu.Unlock()
}

// Capacity reports the current capacity after refill accounting.
func (b *StandardTokenBucket) Capacity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.capacity
}

func (b *StandardTokenBucket) Acquire(ctx context.Context) (Token, error) {
	if err := b.checkout(ctx, b.opts.InitialTryCost); err != nil {
		return nil, err
	}
	return &standardToken{bucket: b, returnSize: b.opts.InitialTrySuccessIncrement}, nil
}

// standardToken is the bucket's one-shot attempt capability.
type standardToken struct {
	bucket *StandardTokenBucket
	// returnSize is what NotifySuccess gives back: the success increment
	// for initial tries, the paid cost for retries.
	returnSize int
	spent      bool
}

func (t *standardToken) NotifySuccess() {
	if t.spent {
		return
	}
	t.spent = true
	t.bucket.deposit(t.returnSize)
}

func (t *standardToken) NotifyFailure() {
	t.spent = true
}

func (t *standardToken) ScheduleRetry(ctx context.Context, reason ErrorReason) (Token, error) {
	if t.spent {
		return nil, errNonRetryable
	}
	t.spent = true

	cost := t.bucket.opts.RetryCost
	if reason == ReasonThrottling || reason == ReasonTransient {
		cost = t.bucket.opts.TimeoutRetryCost
	}
	if err := t.bucket.checkout(ctx, cost); err != nil {
		return nil, err
	}
	return &standardToken{bucket: t.bucket, returnSize: cost}, nil
}
