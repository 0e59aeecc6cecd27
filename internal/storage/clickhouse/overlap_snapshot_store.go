package clickhouse

import (
	"context"
	"fmt"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// OverlapSnapshotStore implements storage.OverlapSnapshotStore using
// ClickHouse. MergeTree does not enforce uniqueness at insert time, so
// append-only semantics are upheld with an explicit existence check.
type OverlapSnapshotStore struct {
	conn *Conn
}

// NewOverlapSnapshotStore creates a new OverlapSnapshotStore.
func NewOverlapSnapshotStore(conn *Conn) *OverlapSnapshotStore {
	return &OverlapSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OverlapSnapshotStore = (*OverlapSnapshotStore)(nil)

// Insert adds a snapshot. Returns ErrDuplicateKey if run_id exists.
func (s *OverlapSnapshotStore) Insert(ctx context.Context, snap *domain.OverlapSnapshot) error {
	if snap == nil || snap.RunID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, snap.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO overlap_snapshots (
			run_id, funds, entry_count, overlap_count,
			total_redundant_value, max_overlap, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		snap.RunID, snap.Funds, uint32(snap.EntryCount), uint32(snap.OverlapCount),
		snap.TotalRedundantValue, uint32(snap.MaxOverlap), snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert overlap snapshot: %w", err)
	}
	return nil
}

// GetAll retrieves all snapshots ordered by created_at ASC.
func (s *OverlapSnapshotStore) GetAll(ctx context.Context) ([]*domain.OverlapSnapshot, error) {
	query := `
		SELECT run_id, funds, entry_count, overlap_count,
		       total_redundant_value, max_overlap, created_at
		FROM overlap_snapshots
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all overlap snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.OverlapSnapshot
	for rows.Next() {
		var (
			snap         domain.OverlapSnapshot
			entryCount   uint32
			overlapCount uint32
			maxOverlap   uint32
		)
		err := rows.Scan(&snap.RunID, &snap.Funds, &entryCount, &overlapCount,
			&snap.TotalRedundantValue, &maxOverlap, &snap.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan overlap snapshot row: %w", err)
		}
		snap.EntryCount = int(entryCount)
		snap.OverlapCount = int(overlapCount)
		snap.MaxOverlap = int(maxOverlap)
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overlap snapshot rows: %w", err)
	}

	return snapshots, nil
}

func (s *OverlapSnapshotStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count() FROM overlap_snapshots WHERE run_id = ?`, runID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
