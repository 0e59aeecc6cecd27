package postgres

import (
	"context"
	"fmt"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// FundStore implements storage.FundStore using PostgreSQL.
type FundStore struct {
	pool *Pool
}

// NewFundStore creates a new FundStore.
func NewFundStore(pool *Pool) *FundStore {
	return &FundStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FundStore = (*FundStore)(nil)

// Upsert inserts a fund or replaces the existing record for its ticker.
func (s *FundStore) Upsert(ctx context.Context, f *domain.Fund) error {
	if f == nil || f.Ticker == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO funds (ticker, name, fund_type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO UPDATE
		SET name = EXCLUDED.name, fund_type = EXCLUDED.fund_type
	`

	_, err := s.pool.Exec(ctx, query, f.Ticker, f.Name, f.FundType, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert fund: %w", err)
	}
	return nil
}

// GetByTicker retrieves a fund by ticker. Returns ErrNotFound if not exists.
func (s *FundStore) GetByTicker(ctx context.Context, ticker string) (*domain.Fund, error) {
	query := `
		SELECT ticker, name, fund_type, created_at
		FROM funds
		WHERE ticker = $1
	`

	var f domain.Fund
	err := s.pool.QueryRow(ctx, query, ticker).Scan(&f.Ticker, &f.Name, &f.FundType, &f.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get fund by ticker: %w", err)
	}
	return &f, nil
}

// GetByName retrieves a fund by exact name, falling back to a
// case-insensitive match. Returns ErrNotFound if not exists.
func (s *FundStore) GetByName(ctx context.Context, name string) (*domain.Fund, error) {
	query := `
		SELECT ticker, name, fund_type, created_at
		FROM funds
		WHERE name = $1
	`

	var f domain.Fund
	err := s.pool.QueryRow(ctx, query, name).Scan(&f.Ticker, &f.Name, &f.FundType, &f.CreatedAt)
	if err == nil {
		return &f, nil
	}
	if !isNotFoundError(err) {
		return nil, fmt.Errorf("get fund by name: %w", err)
	}

	query = `
		SELECT ticker, name, fund_type, created_at
		FROM funds
		WHERE LOWER(name) = LOWER($1)
		ORDER BY ticker
		LIMIT 1
	`

	err = s.pool.QueryRow(ctx, query, name).Scan(&f.Ticker, &f.Name, &f.FundType, &f.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get fund by name (case-insensitive): %w", err)
	}
	return &f, nil
}

// GetAll retrieves all funds ordered by ticker.
func (s *FundStore) GetAll(ctx context.Context) ([]*domain.Fund, error) {
	query := `
		SELECT ticker, name, fund_type, created_at
		FROM funds
		ORDER BY ticker
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all funds: %w", err)
	}
	defer rows.Close()

	var funds []*domain.Fund
	for rows.Next() {
		var f domain.Fund
		if err := rows.Scan(&f.Ticker, &f.Name, &f.FundType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fund row: %w", err)
		}
		funds = append(funds, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fund rows: %w", err)
	}

	return funds, nil
}
