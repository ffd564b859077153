package mock

import (
	"context"

	"github.com/portdex/portdex"
)

var _ portdex.CacheStore = (*CacheStore)(nil)

// CacheStore is a mock implementation of portdex.CacheStore.
type CacheStore struct {
	LoadFn func(ctx context.Context) (*portdex.PortRegistry, error)
	SaveFn func(ctx context.Context, registry *portdex.PortRegistry) error
}

func (s *CacheStore) Load(ctx context.Context) (*portdex.PortRegistry, error) {
	return s.LoadFn(ctx)
}

func (s *CacheStore) Save(ctx context.Context, registry *portdex.PortRegistry) error {
	return s.SaveFn(ctx, registry)
}

var _ portdex.SnapshotService = (*SnapshotService)(nil)

// SnapshotService is a mock implementation of portdex.SnapshotService.
type SnapshotService struct {
	SaveSnapshotFn           func(ctx context.Context, snapshot *portdex.Snapshot) error
	FindSnapshotByRevisionFn func(ctx context.Context, revision int64) (*portdex.Snapshot, error)
	LatestSnapshotFn         func(ctx context.Context) (*portdex.Snapshot, error)
	ListSnapshotsFn          func(ctx context.Context) ([]*portdex.Snapshot, error)
}

func (s *SnapshotService) SaveSnapshot(ctx context.Context, snapshot *portdex.Snapshot) error {
	return s.SaveSnapshotFn(ctx, snapshot)
}

func (s *SnapshotService) FindSnapshotByRevision(ctx context.Context, revision int64) (*portdex.Snapshot, error) {
	return s.FindSnapshotByRevisionFn(ctx, revision)
}

func (s *SnapshotService) LatestSnapshot(ctx context.Context) (*portdex.Snapshot, error) {
	return s.LatestSnapshotFn(ctx)
}

func (s *SnapshotService) ListSnapshots(ctx context.Context) ([]*portdex.Snapshot, error) {
	return s.ListSnapshotsFn(ctx)
}
