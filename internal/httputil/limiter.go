// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket Pacer. Scopus allows a fixed number of requests
// per second per key; pacing below that keeps runs from tripping 429s.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows ratePerSecond sustained requests with the given burst.
// A non-positive rate disables pacing.
func NewLimiter(ratePerSecond float64, burst int) *Limiter {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
