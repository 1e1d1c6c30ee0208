package circuit

import (
	"sync"

	"github.com/sony/gobreaker"
)

// rateBreaker trips when the failure count within a sliding window of
// attempts reaches the threshold.
type rateBreaker struct {
	settings BreakerSettings
	mx       sync.Mutex
	sampler  *binarySampler
	gb       *gobreaker.TwoStepCircuitBreaker
}

func newRate(s BreakerSettings) *rateBreaker {
	b := &rateBreaker{settings: s}
	b.gb = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        s.Endpoint,
		MaxRequests: uint32(s.HalfOpenRequests),
		Timeout:     s.Timeout,
		ReadyToTrip: func(gobreaker.Counts) bool { return b.readyToTrip() },
	})
	return b
}

func (b *rateBreaker) readyToTrip() bool {
	b.mx.Lock()
	defer b.mx.Unlock()
	if b.sampler == nil {
		return false
	}
	ready := b.sampler.count >= b.settings.Failures
	if ready {
		b.sampler = nil
	}
	return ready
}

// countRate samples failures in closed and half-open state.
func (b *rateBreaker) countRate(success bool) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if b.sampler == nil {
		b.sampler = newBinarySampler(b.settings.Window)
	}
	b.sampler.tick(!success)
}

func (b *rateBreaker) Allow() (func(bool), bool) {
	done, err := b.gb.Allow()
	if err != nil {
		return nil, false
	}
	return func(success bool) {
		b.countRate(success)
		done(success)
	}, true
}
