package memory

import (
	"context"
	"sort"
	"sync"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// InstitutionStore is an in-memory implementation of storage.InstitutionStore.
type InstitutionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Institution // keyed by institution id
}

// NewInstitutionStore creates a new in-memory institution store.
func NewInstitutionStore() *InstitutionStore {
	return &InstitutionStore{
		data: make(map[string]*domain.Institution),
	}
}

// Upsert inserts an institution or replaces the existing record for its ID.
func (s *InstitutionStore) Upsert(_ context.Context, inst *domain.Institution) error {
	if inst == nil || inst.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *inst
	s.data[inst.ID] = &copy
	return nil
}

// GetByID retrieves an institution by ID. Returns ErrNotFound if not exists.
func (s *InstitutionStore) GetByID(_ context.Context, id string) (*domain.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *inst
	return &copy, nil
}

// GetAll retrieves all institutions ordered by name.
func (s *InstitutionStore) GetAll(_ context.Context) ([]*domain.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Institution, 0, len(s.data))
	for _, inst := range s.data {
		copy := *inst
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

var _ storage.InstitutionStore = (*InstitutionStore)(nil)
