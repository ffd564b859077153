package portdex

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
)

// CacheStore persists and loads a built registry.
//
// Load returns ENOTFOUND for every flavor of miss: missing file, corrupt
// content, schema version mismatch, permission denial. Misses are never
// fatal; the pipeline transparently falls back to re-fetch and rebuild.
// Save failures are surfaced as warnings by callers but do not abort a
// lookup that already has a registry in memory.
type CacheStore interface {
	Load(ctx context.Context) (*PortRegistry, error)
	Save(ctx context.Context, registry *PortRegistry) error
}

// HashContent computes the xxHash of content and returns it hex-encoded.
// The same hash serves as a snapshot's ContentHash and as the registry's
// source fingerprint, so the two are directly comparable.
func HashContent(content []byte) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64(content))
	return hex.EncodeToString(b[:])
}

// Snapshot is one raw fetch of the source document, keyed by revision.
// Snapshots allow re-parsing offline and pinning a lookup to an exact
// document version.
type Snapshot struct {
	ID          string    `json:"id"`
	Revision    int64     `json:"revision"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the snapshot contains invalid fields.
func (s *Snapshot) Validate() error {
	if s.Revision <= 0 {
		return Errorf(EINVALID, "snapshot revision required")
	}
	if s.Content == "" {
		return Errorf(EINVALID, "snapshot content required")
	}
	return nil
}

// SnapshotService stores raw page snapshots.
type SnapshotService interface {
	// SaveSnapshot inserts a snapshot, replacing any existing snapshot for
	// the same revision.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// FindSnapshotByRevision retrieves the snapshot for an exact revision.
	// Returns ENOTFOUND if no such snapshot exists.
	FindSnapshotByRevision(ctx context.Context, revision int64) (*Snapshot, error)

	// LatestSnapshot retrieves the snapshot with the highest revision.
	// Returns ENOTFOUND if the store is empty.
	LatestSnapshot(ctx context.Context) (*Snapshot, error)

	// ListSnapshots returns all snapshots, newest revision first, without
	// their content bodies.
	ListSnapshots(ctx context.Context) ([]*Snapshot, error)
}
