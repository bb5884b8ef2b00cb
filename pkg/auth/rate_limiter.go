package auth

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket over wall-clock time. It paces
// outgoing calls so a misbehaving loop cannot hammer a remote agent.
type RateLimiter struct {
	mu       sync.Mutex
	rate     float64   // tokens per second
	capacity int64     // maximum token capacity
	tokens   float64   // current token count
	last     time.Time // last time tokens were added
}

// NewRateLimiter creates a new rate limiter with specified rate and interval
// rate: number of allowed operations
// interval: time period for the rate
func NewRateLimiter(rate int64, interval time.Duration) *RateLimiter {
	if rate <= 0 || interval <= 0 {
		panic("rate and interval must be positive")
	}

	return &RateLimiter{
		rate:     float64(rate) / interval.Seconds(),
		capacity: rate,
		tokens:   float64(rate), // Start with full capacity
		last:     time.Now(),
	}
}

// Allow checks if a request is allowed under the rate limit
// Returns true if allowed, false if rate limited
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	elapsed := now.Sub(rl.last).Seconds()
	rl.last = now

	rl.tokens = min(float64(rl.capacity), rl.tokens+elapsed*rl.rate)

	if rl.tokens < 1.0 {
		return false
	}

	rl.tokens--

	return true
}

// WaitTime returns the time to wait before the next token is available
func (rl *RateLimiter) WaitTime() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens >= 1.0 {
		return 0
	}

	tokensNeeded := 1.0 - rl.tokens
	secondsNeeded := tokensNeeded / rl.rate

	return time.Duration(secondsNeeded * float64(time.Second))
}

// Reset resets the rate limiter to its initial state
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = float64(rl.capacity)
	rl.last = time.Now()
}
