package portdex

import "context"

// Fetcher retrieves the raw source document over the network.
//
// Failures carry an error code: ETIMEOUT when the deadline is exceeded,
// EUNAVAILABLE for network errors and non-200 responses.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RevisionSource resolves the latest revision ID of the source document.
// The ID doubles as a version marker for cached snapshots.
type RevisionSource interface {
	LatestRevision(ctx context.Context) (int64, error)
}
