package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() (*AdaptiveRateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	l := NewAdaptiveRateLimiter(DefaultAdaptiveRateLimiterOptions)
	l.now = clock.now
	l.sleep = clock.sleep
	l.lastRefill = clock.t
	l.lastThrottleTime = clock.t
	return l, clock
}

func TestLimiterDormantUntilFirstThrottle(t *testing.T) {
	l, clock := newTestLimiter()

	require.NoError(t, l.Acquire(context.Background(), 1))
	assert.Empty(t, clock.slept, "dormant limiter never delays")
	assert.False(t, l.Enabled())

	for i := 0; i < 5; i++ {
		l.Update(false)
		clock.advance(time.Second)
	}
	assert.False(t, l.Enabled(), "successes alone do not activate")
	assert.Zero(t, l.FillRate())
}

func TestLimiterActivatesOnThrottle(t *testing.T) {
	l, clock := newTestLimiter()

	// build up a measured rate: 2 requests per second
	for i := 0; i < 10; i++ {
		l.Update(false)
		clock.advance(500 * time.Millisecond)
	}
	l.Update(true)

	assert.True(t, l.Enabled())
	assert.Greater(t, l.FillRate(), 0.0)
	// throttling cuts to measured * beta, floored at MinFillRate
	assert.GreaterOrEqual(t, l.FillRate(), l.opts.MinFillRate)
}

func TestLimiterStrictDecreaseOnThrottle(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 20; i++ {
		l.Update(false)
		clock.advance(250 * time.Millisecond)
	}
	l.Update(true)
	require.True(t, l.Enabled())

	// grow the rate with successes
	for i := 0; i < 20; i++ {
		clock.advance(time.Second)
		l.Update(false)
	}
	grown := l.FillRate()

	clock.advance(250 * time.Millisecond)
	l.Update(true)
	assert.Less(t, l.FillRate(), grown, "a throttle must strictly decrease the fill rate")
}

func TestLimiterCubicGrowthBetweenThrottles(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 20; i++ {
		l.Update(false)
		clock.advance(250 * time.Millisecond)
	}
	l.Update(true)
	require.True(t, l.Enabled())
	after := l.FillRate()

	var rates []float64
	for i := 0; i < 5; i++ {
		clock.advance(time.Second)
		l.Update(false)
		rates = append(rates, l.FillRate())
	}
	assert.Greater(t, rates[len(rates)-1], after, "rate recovers after the throttle window")
}

func TestLimiterRateCappedByMeasured(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 8; i++ {
		l.Update(false)
		clock.advance(500 * time.Millisecond)
	}
	l.Update(true)

	// far in the future the cubic curve would explode; the cap holds it at
	// twice the measured rate
	clock.advance(time.Hour)
	l.Update(false)
	assert.LessOrEqual(t, l.FillRate(), 2*l.measuredTxRate+1e-9)
}

func TestLimiterAcquireDelaysWhenSaturated(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 8; i++ {
		l.Update(false)
		clock.advance(500 * time.Millisecond)
	}
	l.Update(true)
	require.True(t, l.Enabled())

	// drain whatever capacity is present, then one more acquire must wait
	for i := 0; i < 50 && len(clock.slept) == 0; i++ {
		require.NoError(t, l.Acquire(context.Background(), 1))
	}
	assert.NotEmpty(t, clock.slept, "saturated limiter must delay")
}
