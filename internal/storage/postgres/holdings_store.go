package postgres

import (
	"context"
	"fmt"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// HoldingsStore implements storage.HoldingsStore using PostgreSQL.
// A set replaces its predecessor atomically: Put deletes the old rows
// and inserts the new ones in one transaction.
type HoldingsStore struct {
	pool *Pool
}

// NewHoldingsStore creates a new HoldingsStore.
func NewHoldingsStore(pool *Pool) *HoldingsStore {
	return &HoldingsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HoldingsStore = (*HoldingsStore)(nil)

// Put stores a holdings set, replacing any previous set for its key.
func (s *HoldingsStore) Put(ctx context.Context, set domain.HoldingsSet) error {
	if set.Key == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO holdings_sets (key, retrieved_at)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET retrieved_at = EXCLUDED.retrieved_at
	`, set.Key, set.RetrievedAt)
	if err != nil {
		return fmt.Errorf("upsert holdings set: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM holdings WHERE set_key = $1`, set.Key)
	if err != nil {
		return fmt.Errorf("delete previous holdings: %w", err)
	}

	query := `
		INSERT INTO holdings (
			set_key, position, name, ticker, cusip,
			value, percentage, category, parent_fund_name, parent_fund_ticker
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i, r := range set.Records {
		_, err := tx.Exec(ctx, query,
			set.Key, i, r.Name, r.Ticker, r.CUSIP,
			r.Value, r.Percentage, r.Category, r.ParentFundName, r.ParentFundTicker,
		)
		if err != nil {
			return fmt.Errorf("insert holding row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByKey retrieves the holdings set for a key. Unknown keys yield an
// empty set, never an error.
func (s *HoldingsStore) GetByKey(ctx context.Context, key string) (domain.HoldingsSet, error) {
	set := domain.HoldingsSet{Key: key}

	err := s.pool.QueryRow(ctx,
		`SELECT retrieved_at FROM holdings_sets WHERE key = $1`, key,
	).Scan(&set.RetrievedAt)
	if err != nil {
		if isNotFoundError(err) {
			return set, nil
		}
		return set, fmt.Errorf("get holdings set: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT name, ticker, cusip, value, percentage, category,
		       parent_fund_name, parent_fund_ticker
		FROM holdings
		WHERE set_key = $1
		ORDER BY position ASC
	`, key)
	if err != nil {
		return set, fmt.Errorf("get holdings rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.HoldingsRecord
		err := rows.Scan(&r.Name, &r.Ticker, &r.CUSIP, &r.Value, &r.Percentage,
			&r.Category, &r.ParentFundName, &r.ParentFundTicker)
		if err != nil {
			return set, fmt.Errorf("scan holding row: %w", err)
		}
		set.Records = append(set.Records, r)
	}
	if err := rows.Err(); err != nil {
		return set, fmt.Errorf("iterate holding rows: %w", err)
	}

	return set, nil
}
