package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBucket(opts StandardTokenBucketOptions) (*StandardTokenBucket, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	b := NewStandardTokenBucket(opts)
	b.now = clock.now
	b.sleep = clock.sleep
	b.lastAccounts = clock.t
	b.capacity = b.opts.MaxCapacity
	return b, clock
}

type fakeClock struct {
	t      time.Time
	slept  []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
	return ctx.Err()
}

func TestBucketCapacityNeverExceedsMax(t *testing.T) {
	b, clock := newTestBucket(StandardTokenBucketOptions{
		MaxCapacity:          10,
		RefillUnitsPerSecond: 100,
	})
	clock.advance(time.Hour)
	assert.Equal(t, 10, b.Capacity())
}

func TestBucketRetryCosts(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBucket(DefaultStandardTokenBucketOptions)

	token, err := b.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, b.Capacity(), "initial try costs nothing")

	retryToken, err := token.ScheduleRetry(ctx, ReasonServerSide)
	require.NoError(t, err)
	assert.Equal(t, 495, b.Capacity(), "server-side retry costs 5")

	throttleToken, err := retryToken.ScheduleRetry(ctx, ReasonThrottling)
	require.NoError(t, err)
	assert.Equal(t, 485, b.Capacity(), "throttle retry costs 10")

	throttleToken.NotifySuccess()
	assert.Equal(t, 495, b.Capacity(), "success returns the retry cost")
}

func TestBucketSuccessIncrement(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBucket(StandardTokenBucketOptions{
		MaxCapacity:                500,
		InitialTrySuccessIncrement: 1,
	})
	b.capacity = 400

	token, err := b.Acquire(ctx)
	require.NoError(t, err)
	token.NotifySuccess()
	assert.Equal(t, 401, b.Capacity())
}

func TestBucketFailureReturnsNothing(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBucket(DefaultStandardTokenBucketOptions)

	token, err := b.Acquire(ctx)
	require.NoError(t, err)
	retryToken, err := token.ScheduleRetry(ctx, ReasonServerSide)
	require.NoError(t, err)
	retryToken.NotifyFailure()
	assert.Equal(t, 495, b.Capacity())
}

func TestBucketCircuitBreakerMode(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBucket(StandardTokenBucketOptions{
		MaxCapacity:        5,
		RetryCost:          5,
		CircuitBreakerMode: true,
	})

	token, err := b.Acquire(ctx)
	require.NoError(t, err)
	retryToken, err := token.ScheduleRetry(ctx, ReasonServerSide)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Capacity())

	// no capacity left: fail immediately instead of delaying
	_, err = retryToken.ScheduleRetry(ctx, ReasonServerSide)
	var capacity *CapacityExceededError
	assert.ErrorAs(t, err, &capacity)
}

func TestBucketNonCircuitModeDelays(t *testing.T) {
	ctx := context.Background()
	b, clock := newTestBucket(StandardTokenBucketOptions{
		MaxCapacity:          10,
		RefillUnitsPerSecond: 2,
		RetryCost:            10,
	})
	b.capacity = 4

	token, err := b.Acquire(ctx)
	require.NoError(t, err)
	_, err = token.ScheduleRetry(ctx, ReasonServerSide)
	require.NoError(t, err)

	// missing 6 units at 2/s: ceil(6/2) = 3s
	require.NotEmpty(t, clock.slept)
	assert.Equal(t, 3*time.Second, clock.slept[0])
}

func TestTokenTerminalExactlyOnce(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBucket(DefaultStandardTokenBucketOptions)

	token, err := b.Acquire(ctx)
	require.NoError(t, err)
	token.NotifySuccess()
	token.NotifySuccess() // second terminal is a no-op
	assert.Equal(t, 500, b.Capacity())

	_, err = token.ScheduleRetry(ctx, ReasonServerSide)
	assert.Error(t, err, "a spent token cannot schedule a retry")
}

func TestInfiniteTokenBucket(t *testing.T) {
	ctx := context.Background()
	var b InfiniteTokenBucket

	token, err := b.Acquire(ctx)
	require.NoError(t, err)
	next, err := token.ScheduleRetry(ctx, ReasonThrottling)
	require.NoError(t, err)
	next.NotifySuccess()
}
