package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter rations requests per key, one token bucket per key. The
// feedback loop keys it by generator provider so repeated regeneration
// requests cannot hammer an external API.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

// NewLimiter allows requestsPerSecond per key, with the given burst.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		rps:     rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// Wait blocks until the key's bucket grants a token or the context is
// cancelled.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}

// Allow reports whether a request for the key may proceed right now.
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

// SetKeyRate overrides the rate for one key, replacing its bucket.
func (l *Limiter) SetKeyRate(key string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	l.mu.Lock()
	l.buckets[key] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	l.mu.Unlock()
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.rps, l.burst)
		l.buckets[key] = b
	}
	return b
}
