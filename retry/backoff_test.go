package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffSequenceWithoutJitter(t *testing.T) {
	b, err := NewExponentialBackoffWithJitter(10*time.Millisecond, time.Second, 2.0, 0)
	require.NoError(t, err)

	expected := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		80 * time.Millisecond,
		160 * time.Millisecond,
		320 * time.Millisecond,
		640 * time.Millisecond,
		1000 * time.Millisecond,
		1000 * time.Millisecond,
	}
	for i, want := range expected {
		assert.Equal(t, want, b.DelayFor(i+1), "attempt %d", i+1)
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b, err := NewExponentialBackoffWithJitter(100*time.Millisecond, time.Second, 2.0, 1.0)
	require.NoError(t, err)

	for attempt := 1; attempt <= 6; attempt++ {
		ceiling := b.DelayFor(attempt)
		_ = ceiling
		bNoJitter, _ := NewExponentialBackoffWithJitter(100*time.Millisecond, time.Second, 2.0, 0)
		max := bNoJitter.DelayFor(attempt)
		for i := 0; i < 50; i++ {
			d := b.DelayFor(attempt)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, max)
		}
	}
}

func TestBackoffFixedRandom(t *testing.T) {
	b, err := NewExponentialBackoffWithJitter(100*time.Millisecond, time.Second, 2.0, 0.5)
	require.NoError(t, err)
	b.random = func() float64 { return 1.0 }

	// full reduction by jitter: 100ms * (1 - 0.5) = 50ms
	assert.Equal(t, 50*time.Millisecond, b.DelayFor(1))

	b.random = func() float64 { return 0 }
	assert.Equal(t, 100*time.Millisecond, b.DelayFor(1))
}

func TestBackoffValidation(t *testing.T) {
	_, err := NewExponentialBackoffWithJitter(-1, time.Second, 2.0, 0)
	assert.Error(t, err)
	_, err = NewExponentialBackoffWithJitter(0, time.Second, 0.5, 0)
	assert.Error(t, err)
	_, err = NewExponentialBackoffWithJitter(0, time.Second, 2.0, 1.5)
	assert.Error(t, err)
	_, err = NewExponentialBackoffWithJitter(0, time.Second, 2.0, -0.1)
	assert.Error(t, err)
}
