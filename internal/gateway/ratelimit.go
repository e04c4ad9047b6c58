package gateway

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket guarding outbound order commands.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing a burst of maxBurst and a
// sustained perSecond rate. A non-positive rate disables limiting.
func NewRateLimiter(maxBurst int, perSecond float64) *RateLimiter {
	if maxBurst <= 0 || perSecond <= 0 {
		return nil
	}
	return &RateLimiter{
		tokens:     float64(maxBurst),
		maxTokens:  float64(maxBurst),
		refillRate: perSecond,
		lastRefill: time.Now(),
	}
}

// TryAcquire takes a token without blocking. A nil limiter always
// grants.
func (r *RateLimiter) TryAcquire() bool {
	if r == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with the
// mutex held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = now
}
