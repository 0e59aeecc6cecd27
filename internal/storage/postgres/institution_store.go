package postgres

import (
	"context"
	"fmt"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// InstitutionStore implements storage.InstitutionStore using PostgreSQL.
type InstitutionStore struct {
	pool *Pool
}

// NewInstitutionStore creates a new InstitutionStore.
func NewInstitutionStore(pool *Pool) *InstitutionStore {
	return &InstitutionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InstitutionStore = (*InstitutionStore)(nil)

// Upsert inserts an institution or replaces the existing record for its ID.
func (s *InstitutionStore) Upsert(ctx context.Context, inst *domain.Institution) error {
	if inst == nil || inst.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO institutions (id, name, report_date, holdings_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    report_date = EXCLUDED.report_date,
		    holdings_count = EXCLUDED.holdings_count
	`

	_, err := s.pool.Exec(ctx, query,
		inst.ID, inst.Name, inst.ReportDate, inst.HoldingsCount, inst.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert institution: %w", err)
	}
	return nil
}

// GetByID retrieves an institution by ID. Returns ErrNotFound if not exists.
func (s *InstitutionStore) GetByID(ctx context.Context, id string) (*domain.Institution, error) {
	query := `
		SELECT id, name, report_date, holdings_count, created_at
		FROM institutions
		WHERE id = $1
	`

	var inst domain.Institution
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&inst.ID, &inst.Name, &inst.ReportDate, &inst.HoldingsCount, &inst.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get institution by id: %w", err)
	}
	return &inst, nil
}

// GetAll retrieves all institutions ordered by name.
func (s *InstitutionStore) GetAll(ctx context.Context) ([]*domain.Institution, error) {
	query := `
		SELECT id, name, report_date, holdings_count, created_at
		FROM institutions
		ORDER BY name ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all institutions: %w", err)
	}
	defer rows.Close()

	var institutions []*domain.Institution
	for rows.Next() {
		var inst domain.Institution
		err := rows.Scan(&inst.ID, &inst.Name, &inst.ReportDate, &inst.HoldingsCount, &inst.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan institution row: %w", err)
		}
		institutions = append(institutions, &inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institution rows: %w", err)
	}

	return institutions, nil
}
