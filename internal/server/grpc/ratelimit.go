package grpc

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// writeLimiter keeps one token bucket per session nickname. Buckets idle
// for limiterIdleTTL are dropped.
type writeLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastPrune time.Time
}

// newWriteLimiter returns nil, which allows everything, when perSecond <= 0.
func newWriteLimiter(perSecond float64, burst int) *writeLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &writeLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

func (w *writeLimiter) Allow(key string) bool {
	if w == nil {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.lastPrune) > limiterIdleTTL {
		for k, e := range w.limiters {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(w.limiters, k)
			}
		}
		w.lastPrune = now
	}

	e, ok := w.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(w.limit, w.burst)}
		w.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}
