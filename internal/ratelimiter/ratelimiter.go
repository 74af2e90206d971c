// Package ratelimiter bounds the request rate a funkostore server accepts,
// using a token bucket so short bursts pass while the sustained rate holds.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a thread-safe token bucket. Tokens refill at the sustained
// rate; each request consumes one; burst is the bucket capacity.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond sustained with the given
// burst capacity. A zero requestsPerSecond disables limiting.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		// Effectively unlimited; rate.Inf has edge cases around Wait.
		requestsPerSecond = 1_000_000_000
		burst = requestsPerSecond
	}
	if burst == 0 {
		// A zero-capacity bucket would reject every request.
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow reports whether one more request fits the budget right now,
// consuming a token when it does. It never blocks.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
