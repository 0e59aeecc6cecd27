package storage

import (
	"context"

	"fund-overlap-lab/internal/domain"
)

// FundStore provides access to funds storage.
type FundStore interface {
	// Upsert inserts a fund or replaces the existing record for its ticker.
	Upsert(ctx context.Context, f *domain.Fund) error

	// GetByTicker retrieves a fund by ticker. Returns ErrNotFound if not exists.
	GetByTicker(ctx context.Context, ticker string) (*domain.Fund, error)

	// GetByName retrieves a fund by exact name, falling back to a
	// case-insensitive match. Returns ErrNotFound if not exists.
	GetByName(ctx context.Context, name string) (*domain.Fund, error)

	// GetAll retrieves all funds ordered by ticker.
	GetAll(ctx context.Context) ([]*domain.Fund, error)
}

// HoldingsStore provides access to normalized holdings sets, keyed by
// fund ticker or institution key (see domain.InstitutionKey).
type HoldingsStore interface {
	// Put stores a holdings set, replacing any previous set for its key.
	Put(ctx context.Context, set domain.HoldingsSet) error

	// GetByKey retrieves the holdings set for a key. Unknown keys yield
	// an empty set, never an error.
	GetByKey(ctx context.Context, key string) (domain.HoldingsSet, error)
}

// InstitutionStore provides access to institutions storage.
type InstitutionStore interface {
	// Upsert inserts an institution or replaces the existing record for its ID.
	Upsert(ctx context.Context, inst *domain.Institution) error

	// GetByID retrieves an institution by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Institution, error)

	// GetAll retrieves all institutions ordered by name.
	GetAll(ctx context.Context) ([]*domain.Institution, error)
}

// ComparisonStore provides durable storage for cached comparison
// payloads, addressed by (fund ticker, institution id).
type ComparisonStore interface {
	// Put stores a payload under the composite key, overwriting any
	// previous entry and refreshing its stored-at timestamp.
	Put(ctx context.Context, fundTicker, institutionID string, payload []byte) error

	// Get retrieves the payload and its stored-at timestamp (Unix ms).
	// Returns ErrNotFound when no entry exists.
	Get(ctx context.Context, fundTicker, institutionID string) ([]byte, int64, error)
}

// OverlapSnapshotStore provides append-only storage for overlap run
// snapshots.
type OverlapSnapshotStore interface {
	// Insert adds a snapshot. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, s *domain.OverlapSnapshot) error

	// GetAll retrieves all snapshots ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.OverlapSnapshot, error)
}
