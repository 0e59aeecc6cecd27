package postgres

import (
	"context"
	"fmt"
	"time"

	"fund-overlap-lab/internal/storage"
)

// ComparisonStore implements storage.ComparisonStore using PostgreSQL.
type ComparisonStore struct {
	pool *Pool
	now  func() time.Time
}

// NewComparisonStore creates a new ComparisonStore.
func NewComparisonStore(pool *Pool) *ComparisonStore {
	return &ComparisonStore{pool: pool, now: time.Now}
}

// Compile-time interface check.
var _ storage.ComparisonStore = (*ComparisonStore)(nil)

// Put stores a payload under the composite key, overwriting any
// previous entry and refreshing its stored-at timestamp.
func (s *ComparisonStore) Put(ctx context.Context, fundTicker, institutionID string, payload []byte) error {
	if fundTicker == "" || institutionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO comparisons (fund_ticker, institution_id, payload, stored_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fund_ticker, institution_id) DO UPDATE
		SET payload = EXCLUDED.payload, stored_at = EXCLUDED.stored_at
	`

	_, err := s.pool.Exec(ctx, query, fundTicker, institutionID, payload, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put comparison: %w", err)
	}
	return nil
}

// Get retrieves the payload and its stored-at timestamp (Unix ms).
// Returns ErrNotFound when no entry exists.
func (s *ComparisonStore) Get(ctx context.Context, fundTicker, institutionID string) ([]byte, int64, error) {
	query := `
		SELECT payload, stored_at
		FROM comparisons
		WHERE fund_ticker = $1 AND institution_id = $2
	`

	var (
		payload  []byte
		storedAt int64
	)
	err := s.pool.QueryRow(ctx, query, fundTicker, institutionID).Scan(&payload, &storedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, 0, storage.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get comparison: %w", err)
	}
	return payload, storedAt, nil
}
