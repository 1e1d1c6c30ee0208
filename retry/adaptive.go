package retry

import (
	"context"
	"math"
	"sync"
	"time"
)

// AdaptiveRateLimiterOptions tune the cubic client-side rate controller.
type AdaptiveRateLimiterOptions struct {
	// Smooth weighs new samples in the measured-rate moving average.
	Smooth float64
	// Beta is the multiplicative decrease applied on throttle.
	Beta float64
	// ScaleConstant shapes the cubic growth curve.
	ScaleConstant float64
	// MinFillRate floors the send rate once the limiter is active.
	MinFillRate float64
	// MinCapacity floors the token capacity.
	MinCapacity float64
	// RateMeasurementBucket is the sampling resolution of the measured
	// transmit rate.
	RateMeasurementBucket time.Duration
}

var DefaultAdaptiveRateLimiterOptions = AdaptiveRateLimiterOptions{
	Smooth:                0.8,
	Beta:                  0.7,
	ScaleConstant:         0.4,
	MinFillRate:           0.5,
	MinCapacity:           1,
	RateMeasurementBucket: 500 * time.Millisecond,
}

// AdaptiveRateLimiter converges the client send rate toward what the
// service tolerates, using cubic growth between throttles and
// multiplicative decrease on each throttle. It stays dormant until the
// first throttling signal.
type AdaptiveRateLimiter struct {
	opts AdaptiveRateLimiterOptions

	mu sync.Mutex

	fillRate    float64
	maxCapacity float64
	capacity    float64
	lastRefill  time.Time

	measuredTxRate float64
	rateBucket     float64
	requestCount   int

	enabled          bool
	lastMaxRate      float64
	timeWindow       float64
	lastThrottleTime time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewAdaptiveRateLimiter(opts AdaptiveRateLimiterOptions) *AdaptiveRateLimiter {
	if opts.Smooth == 0 {
		opts = DefaultAdaptiveRateLimiterOptions
	}
	l := &AdaptiveRateLimiter{
		opts:  opts,
		now:   time.Now,
		sleep: sleepContext,
	}
	l.lastRefill = l.now()
	l.lastThrottleTime = l.lastRefill
	return l
}

// Acquire blocks until amount send-capacity is available. Before the first
// throttle the limiter is a no-op.
func (l *AdaptiveRateLimiter) Acquire(ctx context.Context, amount float64) error {
	l.mu.Lock()
	if !l.enabled {
		l.mu.Unlock()
		return nil
	}
	l.refill()
	var wait time.Duration
	if amount > l.capacity {
		wait = time.Duration((amount - l.capacity) / l.fillRate * float64(time.Second))
	}
	l.capacity -= amount
	l.mu.Unlock()

	if wait > 0 {
		return l.sleep(ctx, wait)
	}
	return nil
}

// Update feeds one attempt outcome into the controller.
func (l *AdaptiveRateLimiter) Update(throttled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.updateMeasuredRate()

	var calculatedRate float64
	if throttled {
		rateToUse := l.measuredTxRate
		if l.enabled {
			rateToUse = math.Min(l.measuredTxRate, l.fillRate)
		}
		l.lastMaxRate = rateToUse
		l.calculateTimeWindow()
		l.lastThrottleTime = l.now()
		calculatedRate = rateToUse * l.opts.Beta
		l.enabled = true
	} else {
		if !l.enabled {
			return
		}
		l.calculateTimeWindow()
		calculatedRate = l.cubicSuccess(l.now())
	}

	newRate := math.Min(calculatedRate, 2*l.measuredTxRate)
	l.updateRate(newRate)
}

// FillRate reports refill units per second; zero until activated.
func (l *AdaptiveRateLimiter) FillRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fillRate
}

func (l *AdaptiveRateLimiter) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// calculateTimeWindow computes W = cbrt(lastMaxRate * (1 - beta) / scale).
func (l *AdaptiveRateLimiter) calculateTimeWindow() {
	l.timeWindow = math.Cbrt(l.lastMaxRate * (1 - l.opts.Beta) / l.opts.ScaleConstant)
}

// cubicSuccess grows the rate along scale*(dt - W)^3 + lastMaxRate.
func (l *AdaptiveRateLimiter) cubicSuccess(now time.Time) float64 {
	dt := now.Sub(l.lastThrottleTime).Seconds()
	return l.opts.ScaleConstant*math.Pow(dt-l.timeWindow, 3) + l.lastMaxRate
}

// updateMeasuredRate folds the current request count into the bucketed
// exponential moving average of the transmit rate.
func (l *AdaptiveRateLimiter) updateMeasuredRate() {
	bucketSeconds := l.opts.RateMeasurementBucket.Seconds()
	t := float64(l.now().UnixNano()) / float64(time.Second)
	bucket := math.Floor(t/bucketSeconds) * bucketSeconds

	l.requestCount++
	if bucket > l.rateBucket {
		if l.rateBucket > 0 {
			currentRate := float64(l.requestCount) / (bucket - l.rateBucket)
			l.measuredTxRate = currentRate*l.opts.Smooth + l.measuredTxRate*(1-l.opts.Smooth)
		}
		l.requestCount = 0
		l.rateBucket = bucket
	}
}

// updateRate installs a new fill rate, clamping capacity to the new
// maximum. The fill rate never drops below the configured floor once the
// limiter is active.
func (l *AdaptiveRateLimiter) updateRate(newRate float64) {
	l.refill()
	l.fillRate = math.Max(newRate, l.opts.MinFillRate)
	l.maxCapacity = math.Max(newRate, l.opts.MinCapacity)
	l.capacity = math.Min(l.capacity, l.maxCapacity)
}

// refill credits capacity for elapsed time. Callers hold l.mu.
func (l *AdaptiveRateLimiter) refill() {
	now := l.now()
	if !l.lastRefill.IsZero() {
		l.capacity = math.Min(l.maxCapacity, l.capacity+l.fillRate*now.Sub(l.lastRefill).Seconds())
	}
	l.lastRefill = now
}
