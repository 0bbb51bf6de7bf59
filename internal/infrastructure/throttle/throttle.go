// Package throttle enforces a minimum spacing between upstream API requests.
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle admits at most one request per interval. After the upstream
// reports a rate limit, Penalize blocks all requests for the penalty window.
// A Throttle is meant to be shared by every component calling the same API.
type Throttle struct {
	mu           sync.Mutex
	limiter      *rate.Limiter
	penalty      time.Duration
	blockedUntil time.Time
	now          func() time.Time
}

// New creates a throttle with the given minimum interval and rate-limit penalty
func New(minInterval, penalty time.Duration) *Throttle {
	return NewWithClock(minInterval, penalty, time.Now)
}

// NewWithClock is New with an injectable clock
func NewWithClock(minInterval, penalty time.Duration, now func() time.Time) *Throttle {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &Throttle{
		limiter: rate.NewLimiter(limit, 1),
		penalty: penalty,
		now:     now,
	}
}

// Allow reports whether a request may be sent now and, if so, records it
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Before(t.blockedUntil) {
		return false
	}

	return t.limiter.AllowN(now, 1)
}

// Penalize extends the throttle window after an upstream rate-limit response
func (t *Throttle) Penalize() {
	t.mu.Lock()
	defer t.mu.Unlock()

	until := t.now().Add(t.penalty)
	if until.After(t.blockedUntil) {
		t.blockedUntil = until
	}
}

// BlockedUntil returns the end of the current penalty window, if any
func (t *Throttle) BlockedUntil() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.blockedUntil
}
