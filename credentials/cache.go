package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// refreshMargin is how long before expiry a refresh is attempted.
const refreshMargin = 5 * time.Minute

// CachingProvider wraps an expensive provider and serves a cached value
// until it nears expiry. Concurrent refreshes collapse into one fetch;
// transient fetch failures are retried with exponential backoff.
type CachingProvider struct {
	Wrapped Provider

	// MaxRetries bounds fetch attempts per refresh. Zero means 3.
	MaxRetries uint

	mu     sync.Mutex
	cached Credentials
	valid  bool
	now    func() time.Time
}

func NewCachingProvider(wrapped Provider) *CachingProvider {
	return &CachingProvider{Wrapped: wrapped, now: time.Now}
}

func (p *CachingProvider) Retrieve(ctx context.Context) (Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.now == nil {
		p.now = time.Now
	}
	if p.valid && !p.staleAt(p.now()) {
		return p.cached, nil
	}

	tries := p.MaxRetries
	if tries == 0 {
		tries = 3
	}
	creds, err := backoff.Retry(ctx, func() (Credentials, error) {
		return p.Wrapped.Retrieve(ctx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(tries))
	if err != nil {
		// Serve the stale value while it is still literally valid.
		if p.valid && !p.cached.Expired(p.now()) {
			return p.cached, nil
		}
		return Credentials{}, err
	}

	p.cached = creds
	p.valid = true
	return creds, nil
}

// staleAt reports whether the cached value should be refreshed at t.
func (p *CachingProvider) staleAt(t time.Time) bool {
	if !p.cached.CanExpire {
		return false
	}
	return !t.Before(p.cached.Expires.Add(-refreshMargin))
}

// Invalidate drops the cached value, forcing a refresh on next Retrieve.
func (p *CachingProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.valid = false
}
