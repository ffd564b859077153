package mock

import (
	"context"

	"github.com/portdex/portdex"
)

var _ portdex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of portdex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

var _ portdex.RevisionSource = (*RevisionSource)(nil)

// RevisionSource is a mock implementation of portdex.RevisionSource.
type RevisionSource struct {
	LatestRevisionFn func(ctx context.Context) (int64, error)
}

func (s *RevisionSource) LatestRevision(ctx context.Context) (int64, error) {
	return s.LatestRevisionFn(ctx)
}
