// Package circuit gates transmit attempts per endpoint with consecutive-
// failure or failure-rate breakers.
package circuit

import "time"

type BreakerType int

const (
	BreakerNone BreakerType = iota
	ConsecutiveFailures
	FailureRate
	BreakerDisabled
)

// BreakerSettings configure one breaker. Endpoint-specific settings merge
// over the defaults as described on Merge.
type BreakerSettings struct {
	Type     BreakerType
	Endpoint string

	// Failures trips the breaker: consecutively for ConsecutiveFailures,
	// within Window attempts for FailureRate.
	Failures int
	Window   int

	// Timeout is how long the breaker stays open before half-opening.
	Timeout time.Duration
	// HalfOpenRequests may pass while half-open.
	HalfOpenRequests int
	// IdleTTL expires unused breakers from the registry.
	IdleTTL time.Duration
}

// Merge fills a zero Timeout, HalfOpenRequests or IdleTTL of s from
// defaults. When s sets no Type, the type is taken from defaults together
// with its Failures and Window, replacing whatever s holds there; when s
// sets a Type, its Failures and Window are kept as they are.
func (s BreakerSettings) Merge(defaults BreakerSettings) BreakerSettings {
	if s.Type == BreakerNone {
		s.Type = defaults.Type
		if defaults.Type == ConsecutiveFailures || defaults.Type == FailureRate {
			s.Failures = defaults.Failures
		}
		if defaults.Type == FailureRate {
			s.Window = defaults.Window
		}
	}
	if s.Timeout == 0 {
		s.Timeout = defaults.Timeout
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = defaults.HalfOpenRequests
	}
	if s.IdleTTL == 0 {
		s.IdleTTL = defaults.IdleTTL
	}
	return s
}

type breakerImplementation interface {
	Allow() (func(bool), bool)
}

type voidBreaker struct{}

func (voidBreaker) Allow() (func(bool), bool) {
	return func(bool) {}, true
}

// Breaker guards one endpoint. Allow reports whether the attempt may
// proceed and, when it may, returns the callback to report its outcome.
type Breaker struct {
	settings BreakerSettings
	lastUsed time.Time
	impl     breakerImplementation
}

func newBreaker(s BreakerSettings) *Breaker {
	var impl breakerImplementation
	switch s.Type {
	case ConsecutiveFailures:
		impl = newConsecutive(s)
	case FailureRate:
		impl = newRate(s)
	default:
		impl = voidBreaker{}
	}
	return &Breaker{settings: s, impl: impl}
}

func (b *Breaker) Allow() (func(bool), bool) {
	return b.impl.Allow()
}

func (b *Breaker) idle(now time.Time) bool {
	return b.settings.IdleTTL > 0 && now.Sub(b.lastUsed) > b.settings.IdleTTL
}
