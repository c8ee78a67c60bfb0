package gdrive

import (
	"context"

	"golang.org/x/time/rate"
)

// Default rate limit for Drive API requests. Google allows 10/sec/user;
// staying below that avoids quota errors on large trees.
const (
	DefaultRequestsPerSecond = 8.0
	DefaultBurstSize         = 10
)

// RateLimiter throttles Drive API requests with a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter with the given sustained rate and
// burst size. Non-positive values fall back to the defaults.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurstSize
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the limit.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
