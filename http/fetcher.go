// Package http provides the network-facing collaborators: the raw document
// fetcher and the revision history client.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/portdex/portdex"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// userAgent identifies the tool to the Wikimedia servers.
const userAgent = "portdex/1.0 (https://github.com/portdex/portdex)"

// Ensure Fetcher implements portdex.Fetcher at compile time.
var _ portdex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves raw document bytes over HTTP.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the document bytes from the given URL. Timeouts map to
// ETIMEOUT, every other transport failure and non-200 response to
// EUNAVAILABLE, so the pipeline can decide between fallback and abort.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, portdex.Errorf(portdex.EINVALID, "invalid fetch URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, portdex.Errorf(portdex.ETIMEOUT, "fetch of %s timed out after %s", url, f.timeout)
		}
		return nil, portdex.Errorf(portdex.EUNAVAILABLE, "fetch of %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, portdex.Errorf(portdex.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, portdex.Errorf(portdex.ETIMEOUT, "fetch of %s timed out after %s", url, f.timeout)
		}
		return nil, portdex.Errorf(portdex.EUNAVAILABLE, "reading %s failed: %v", url, err)
	}

	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
