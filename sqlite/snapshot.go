package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/portdex/portdex"
)

// Compile-time interface verification.
var _ portdex.SnapshotService = (*SnapshotService)(nil)

// SnapshotService implements portdex.SnapshotService using SQLite.
type SnapshotService struct {
	db *DB
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(db *DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// SaveSnapshot inserts a snapshot, replacing any prior snapshot for the
// same revision.
func (s *SnapshotService) SaveSnapshot(ctx context.Context, snapshot *portdex.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	snapshot.ID = uuid.New().String()
	snapshot.ContentHash = portdex.HashContent([]byte(snapshot.Content))
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, revision, content, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(revision) DO UPDATE SET
			id = excluded.id,
			content = excluded.content,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, snapshot.ID, snapshot.Revision, snapshot.Content, snapshot.ContentHash,
		snapshot.FetchedAt.Format(time.RFC3339))

	return err
}

// FindSnapshotByRevision retrieves the snapshot for an exact revision.
func (s *SnapshotService) FindSnapshotByRevision(ctx context.Context, revision int64) (*portdex.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, revision, content, content_hash, fetched_at
		FROM snapshots
		WHERE revision = ?
	`, revision)
	return scanSnapshot(row)
}

// LatestSnapshot retrieves the snapshot with the highest revision.
func (s *SnapshotService) LatestSnapshot(ctx context.Context) (*portdex.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, revision, content, content_hash, fetched_at
		FROM snapshots
		ORDER BY revision DESC
		LIMIT 1
	`)
	return scanSnapshot(row)
}

// ListSnapshots returns all snapshots, newest revision first, without
// content bodies.
func (s *SnapshotService) ListSnapshots(ctx context.Context) ([]*portdex.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, revision, content_hash, fetched_at
		FROM snapshots
		ORDER BY revision DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*portdex.Snapshot
	for rows.Next() {
		var snap portdex.Snapshot
		var fetchedAt string
		if err := rows.Scan(&snap.ID, &snap.Revision, &snap.ContentHash, &fetchedAt); err != nil {
			return nil, err
		}
		if snap.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
		}
		snapshots = append(snapshots, &snap)
	}
	return snapshots, rows.Err()
}

func scanSnapshot(row *sql.Row) (*portdex.Snapshot, error) {
	var snap portdex.Snapshot
	var fetchedAt string

	err := row.Scan(&snap.ID, &snap.Revision, &snap.Content, &snap.ContentHash, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, portdex.Errorf(portdex.ENOTFOUND, "snapshot not found")
	}
	if err != nil {
		return nil, err
	}

	var parseErr error
	if snap.FetchedAt, parseErr = time.Parse(time.RFC3339, fetchedAt); parseErr != nil {
		return nil, fmt.Errorf("failed to parse fetched_at: %w", parseErr)
	}

	return &snap, nil
}
