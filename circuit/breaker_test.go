package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsecutiveBreakerTripsAndRecovers(t *testing.T) {
	b := newBreaker(BreakerSettings{
		Type:             ConsecutiveFailures,
		Endpoint:         "example.com",
		Failures:         3,
		Timeout:          10 * time.Millisecond,
		HalfOpenRequests: 1,
	})

	for i := 0; i < 3; i++ {
		done, ok := b.Allow()
		require.True(t, ok, "closed breaker must allow")
		done(false)
	}

	_, ok := b.Allow()
	assert.False(t, ok, "breaker must be open after 3 consecutive failures")

	time.Sleep(20 * time.Millisecond)

	done, ok := b.Allow()
	require.True(t, ok, "breaker must half-open after the timeout")
	done(true)

	done, ok = b.Allow()
	require.True(t, ok, "a half-open success must close the breaker")
	done(true)
}

func TestConsecutiveBreakerResetOnSuccess(t *testing.T) {
	b := newBreaker(BreakerSettings{
		Type:     ConsecutiveFailures,
		Failures: 2,
		Timeout:  time.Minute,
	})

	done, _ := b.Allow()
	done(false)
	done, _ = b.Allow()
	done(true)
	done, _ = b.Allow()
	done(false)

	_, ok := b.Allow()
	assert.True(t, ok, "a success in between must reset the failure count")
}

func TestRateBreaker(t *testing.T) {
	b := newBreaker(BreakerSettings{
		Type:     FailureRate,
		Window:   10,
		Failures: 5,
		Timeout:  time.Minute,
	})

	for i := 0; i < 5; i++ {
		done, ok := b.Allow()
		require.True(t, ok)
		done(i%2 == 0)
	}
	for i := 0; i < 3; i++ {
		done, ok := b.Allow()
		require.True(t, ok)
		done(false)
	}
	// 5 failures within the 10-wide window
	_, ok := b.Allow()
	assert.False(t, ok)
}

func TestVoidBreaker(t *testing.T) {
	b := newBreaker(BreakerSettings{})
	for i := 0; i < 100; i++ {
		done, ok := b.Allow()
		require.True(t, ok)
		done(false)
	}
}

func TestSettingsMerge(t *testing.T) {
	defaults := BreakerSettings{
		Type:             ConsecutiveFailures,
		Failures:         5,
		Timeout:          time.Minute,
		HalfOpenRequests: 2,
		IdleTTL:          time.Hour,
	}
	merged := BreakerSettings{Endpoint: "x"}.Merge(defaults)
	assert.Equal(t, ConsecutiveFailures, merged.Type)
	assert.Equal(t, 5, merged.Failures)
	assert.Equal(t, time.Minute, merged.Timeout)
	assert.Equal(t, 2, merged.HalfOpenRequests)
	assert.Equal(t, time.Hour, merged.IdleTTL)
	assert.Equal(t, "x", merged.Endpoint)

	override := BreakerSettings{Type: FailureRate, Window: 20, Failures: 3}.Merge(defaults)
	assert.Equal(t, FailureRate, override.Type)
	assert.Equal(t, 20, override.Window)
	assert.Equal(t, 3, override.Failures)
}

func TestRegistryPerEndpoint(t *testing.T) {
	r := NewRegistry(
		BreakerSettings{Type: ConsecutiveFailures, Failures: 3, Timeout: time.Minute},
		BreakerSettings{Endpoint: "special.example.com", Type: FailureRate, Window: 10, Failures: 5},
	)

	a := r.Get("a.example.com")
	require.NotNil(t, a)
	assert.Same(t, a, r.Get("a.example.com"), "same endpoint gets the same breaker")

	s := r.Get("special.example.com")
	require.NotNil(t, s)
	assert.NotSame(t, a, s)
}

func TestRegistryNoBreakerConfigured(t *testing.T) {
	r := NewRegistry(BreakerSettings{})
	assert.Nil(t, r.Get("example.com"))
}

func TestRegistryIdleEviction(t *testing.T) {
	r := NewRegistry(BreakerSettings{
		Type:     ConsecutiveFailures,
		Failures: 1,
		Timeout:  time.Minute,
		IdleTTL:  time.Second,
	})
	now := time.Unix(1000, 0)
	r.now = func() time.Time { return now }

	first := r.Get("example.com")
	// trip it
	done, _ := first.Allow()
	done(false)
	_, ok := first.Allow()
	require.False(t, ok)

	now = now.Add(time.Hour)
	second := r.Get("example.com")
	assert.NotSame(t, first, second, "idle breakers are replaced")
	_, ok = second.Allow()
	assert.True(t, ok, "the replacement starts closed")
}

func TestBinarySamplerWindow(t *testing.T) {
	s := newBinarySampler(3)
	s.tick(true)
	s.tick(true)
	s.tick(true)
	assert.Equal(t, 3, s.count)

	// window slides: oldest failure drops out
	s.tick(false)
	assert.Equal(t, 2, s.count)
	s.tick(false)
	s.tick(false)
	assert.Equal(t, 0, s.count)
}
