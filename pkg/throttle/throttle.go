// Package throttle provides a request rate limiter that slows down when
// the remote side pushes back and recovers gradually afterwards.
//
// Example usage:
//
//	lim := throttle.New(5, 0.5, 10)
//	if err := lim.Wait(ctx); err != nil {
//	    return err
//	}
//	resp, err := do()
//	if tooManyRequests(resp) {
//	    lim.Throttled()
//	} else {
//	    lim.Success()
//	}
package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cooldown is how long after the last push-back the rate stays put.
const cooldown = 10 * time.Second

// AdaptiveLimiter halves its rate on push-back and adds stepUp per
// success once the cooldown has passed. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	min, max  rate.Limit
	stepUp    rate.Limit
	lastError time.Time
	now       func() time.Time
}

// New starts at max requests per second and never drops below min.
// A non-positive max disables limiting.
func New(max, min, stepUp float64) *AdaptiveLimiter {
	if max <= 0 {
		return &AdaptiveLimiter{limiter: rate.NewLimiter(rate.Inf, 1), now: time.Now}
	}
	if min <= 0 || min > max {
		min = max
	}
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(rate.Limit(max), 1),
		min:     rate.Limit(min),
		max:     rate.Limit(max),
		stepUp:  rate.Limit(stepUp),
		now:     time.Now,
	}
}

// Wait blocks until a request may be made or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate after a request went through.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.max == 0 || a.now().Sub(a.lastError) < cooldown {
		return
	}
	a.setLocked(a.limiter.Limit() + a.stepUp)
}

// Throttled halves the rate after the remote side refused a request.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.max == 0 {
		return
	}
	a.lastError = a.now()
	a.setLocked(a.limiter.Limit() / 2)
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLocked(l rate.Limit) {
	l = min(max(l, a.min), a.max)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
	}
}
