package http

import (
	"context"

	"github.com/portdex/portdex"
	"golang.org/x/time/rate"
)

// Ensure RateLimitedFetcher implements portdex.Fetcher at compile time.
var _ portdex.Fetcher = (*RateLimitedFetcher)(nil)

// RateLimitedFetcher wraps a Fetcher with a token-bucket rate limit so
// refreshes stay polite to the source servers. A single limiter suffices
// because the pipeline only ever talks to one host.
type RateLimitedFetcher struct {
	next    portdex.Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher creates a fetcher limited to rps requests per
// second with a burst of 1.
func NewRateLimitedFetcher(next portdex.Fetcher, rps float64) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Fetch waits for the rate limiter, then delegates.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return f.next.Fetch(ctx, url)
}
