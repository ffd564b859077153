package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/portdex/portdex"
	"github.com/portdex/portdex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface verification.
var _ portdex.SnapshotService = (*sqlite.SnapshotService)(nil)

func mustOpenDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func TestSnapshotService_SaveSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("saves and assigns ID and content hash", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSnapshotService(mustOpenDB(t))
		ctx := context.Background()

		snap := &portdex.Snapshot{Revision: 100, Content: "<html>v100</html>"}
		require.NoError(t, s.SaveSnapshot(ctx, snap))
		assert.NotEmpty(t, snap.ID)
		assert.Equal(t, portdex.HashContent([]byte("<html>v100</html>")), snap.ContentHash)
		assert.False(t, snap.FetchedAt.IsZero())
	})

	t.Run("replaces an existing snapshot for the same revision", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSnapshotService(mustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 100, Content: "old"}))
		require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 100, Content: "new"}))

		got, err := s.FindSnapshotByRevision(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Content)

		all, err := s.ListSnapshots(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("rejects invalid snapshots", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSnapshotService(mustOpenDB(t))
		ctx := context.Background()

		err := s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 0, Content: "x"})
		assert.Equal(t, portdex.EINVALID, portdex.ErrorCode(err))

		err = s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 1, Content: ""})
		assert.Equal(t, portdex.EINVALID, portdex.ErrorCode(err))
	})
}

func TestSnapshotService_FindSnapshotByRevision(t *testing.T) {
	t.Parallel()

	t.Run("finds a stored snapshot", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSnapshotService(mustOpenDB(t))
		ctx := context.Background()
		fetched := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

		require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{
			Revision:  200,
			Content:   "<html>v200</html>",
			FetchedAt: fetched,
		}))

		got, err := s.FindSnapshotByRevision(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(200), got.Revision)
		assert.Equal(t, "<html>v200</html>", got.Content)
		assert.Equal(t, fetched, got.FetchedAt)
	})

	t.Run("unknown revision is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSnapshotService(mustOpenDB(t))
		_, err := s.FindSnapshotByRevision(context.Background(), 999)
		assert.Equal(t, portdex.ENOTFOUND, portdex.ErrorCode(err))
	})
}

func TestSnapshotService_LatestSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("returns the highest revision", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSnapshotService(mustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 100, Content: "a"}))
		require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 300, Content: "c"}))
		require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 200, Content: "b"}))

		got, err := s.LatestSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(300), got.Revision)
	})

	t.Run("empty store is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSnapshotService(mustOpenDB(t))
		_, err := s.LatestSnapshot(context.Background())
		assert.Equal(t, portdex.ENOTFOUND, portdex.ErrorCode(err))
	})
}

func TestSnapshotService_ListSnapshots(t *testing.T) {
	t.Parallel()

	s := sqlite.NewSnapshotService(mustOpenDB(t))
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 100, Content: "a"}))
	require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 300, Content: "c"}))
	require.NoError(t, s.SaveSnapshot(ctx, &portdex.Snapshot{Revision: 200, Content: "b"}))

	got, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(300), got[0].Revision)
	assert.Equal(t, int64(200), got[1].Revision)
	assert.Equal(t, int64(100), got[2].Revision)

	// Listing omits the content bodies.
	for _, snap := range got {
		assert.Empty(t, snap.Content)
		assert.NotEmpty(t, snap.ContentHash)
	}
}
