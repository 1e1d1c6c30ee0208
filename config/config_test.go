package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
default:
  region: us-east-1
  retry:
    mode: standard
    max-attempts: 5
profiles:
  bulk:
    service: s3
    retry:
      mode: adaptive
    backoff:
      initial-delay: 50ms
      max-backoff: 5s
  strict:
    breaker:
      type: consecutive
      failures: 3
      timeout: 30s
`

func TestParseAndResolve(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	def, err := c.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", def.Region)
	assert.Equal(t, RetryModeStandard, def.Retry.Mode)
	assert.Equal(t, 5, def.Retry.MaxAttempts)
	// built-in defaults fill the rest
	assert.Equal(t, 10*time.Millisecond, def.Backoff.InitialDelay.Std())
	assert.Equal(t, 2.0, def.Backoff.ScaleFactor)
}

func TestResolveProfileMergesOverDefault(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	bulk, err := c.Resolve("bulk")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", bulk.Region, "region inherited from default profile")
	assert.Equal(t, "s3", bulk.Service)
	assert.Equal(t, RetryModeAdaptive, bulk.Retry.Mode)
	assert.Equal(t, 5, bulk.Retry.MaxAttempts, "max attempts inherited")
	assert.Equal(t, 50*time.Millisecond, bulk.Backoff.InitialDelay.Std())
	assert.Equal(t, 5*time.Second, bulk.Backoff.MaxBackoff.Std())
}

func TestResolveBreakerSettings(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	strict, err := c.Resolve("strict")
	require.NoError(t, err)
	assert.Equal(t, "consecutive", strict.Breaker.Type)
	assert.Equal(t, 3, strict.Breaker.Failures)
	assert.Equal(t, 30*time.Second, strict.Breaker.Timeout.Std())
}

func TestResolveUnknownProfile(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	_, err = c.Resolve("missing")
	assert.Error(t, err)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("default: ["))
	assert.Error(t, err)
}
