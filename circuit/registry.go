package circuit

import (
	"sync"
	"time"
)

// Registry hands out breakers by endpoint, merging endpoint-specific
// settings over the defaults, and sweeps idle entries on access.
type Registry struct {
	defaults    BreakerSettings
	perEndpoint map[string]BreakerSettings

	mu       sync.Mutex
	lookup   map[string]*Breaker
	lastScan time.Time

	now func() time.Time
}

const scanInterval = time.Minute

func NewRegistry(defaults BreakerSettings, endpointSettings ...BreakerSettings) *Registry {
	per := make(map[string]BreakerSettings)
	for _, s := range endpointSettings {
		if s.Endpoint != "" {
			per[s.Endpoint] = s
		}
	}
	return &Registry{
		defaults:    defaults,
		perEndpoint: per,
		lookup:      make(map[string]*Breaker),
		now:         time.Now,
	}
}

// Get returns the breaker for endpoint, or nil when no breaker applies.
func (r *Registry) Get(endpoint string) *Breaker {
	settings, ok := r.perEndpoint[endpoint]
	if ok {
		settings = settings.Merge(r.defaults)
	} else {
		settings = r.defaults
		settings.Endpoint = endpoint
	}
	if settings.Type == BreakerNone || settings.Type == BreakerDisabled {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastScan) > scanInterval {
		r.sweep(now)
	}

	b, ok := r.lookup[endpoint]
	if !ok || b.idle(now) {
		b = newBreaker(settings)
		r.lookup[endpoint] = b
	}
	b.lastUsed = now
	return b
}

// sweep drops breakers idle past their TTL. Callers hold r.mu.
func (r *Registry) sweep(now time.Time) {
	for endpoint, b := range r.lookup {
		if b.idle(now) {
			delete(r.lookup, endpoint)
		}
	}
	r.lastScan = now
}
