package http_test

import (
	"context"
	"testing"
	"time"

	"github.com/portdex/portdex"
	portdexhttp "github.com/portdex/portdex/http"
	"github.com/portdex/portdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure RateLimitedFetcher implements portdex.Fetcher at compile time.
var _ portdex.Fetcher = (*portdexhttp.RateLimitedFetcher)(nil)

func TestRateLimitedFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("delegates to the wrapped fetcher", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				gotURL = url
				return []byte("body"), nil
			},
		}

		f := portdexhttp.NewRateLimitedFetcher(inner, 100)
		body, err := f.Fetch(context.Background(), "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "body", string(body))
		assert.Equal(t, "https://example.com", gotURL)
	})

	t.Run("spaces out successive fetches", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				return nil, nil
			},
		}

		f := portdexhttp.NewRateLimitedFetcher(inner, 20) // 50ms between requests
		start := time.Now()
		for i := 0; i < 3; i++ {
			_, err := f.Fetch(context.Background(), "https://example.com")
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("respects context cancellation while waiting", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				return nil, nil
			},
		}

		f := portdexhttp.NewRateLimitedFetcher(inner, 0.001)
		_, err := f.Fetch(context.Background(), "https://example.com") // consumes the burst
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = f.Fetch(ctx, "https://example.com")
		assert.Error(t, err)
	})
}
