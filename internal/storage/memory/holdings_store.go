package memory

import (
	"context"
	"sync"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// HoldingsStore is an in-memory implementation of storage.HoldingsStore.
type HoldingsStore struct {
	mu   sync.RWMutex
	data map[string]domain.HoldingsSet // keyed by fund ticker or institution key
}

// NewHoldingsStore creates a new in-memory holdings store.
func NewHoldingsStore() *HoldingsStore {
	return &HoldingsStore{
		data: make(map[string]domain.HoldingsSet),
	}
}

// Put stores a holdings set, replacing any previous set for its key.
func (s *HoldingsStore) Put(_ context.Context, set domain.HoldingsSet) error {
	if set.Key == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := set
	stored.Records = make([]domain.HoldingsRecord, len(set.Records))
	copy(stored.Records, set.Records)
	s.data[set.Key] = stored
	return nil
}

// GetByKey retrieves the holdings set for a key. Unknown keys yield an
// empty set, never an error.
func (s *HoldingsStore) GetByKey(_ context.Context, key string) (domain.HoldingsSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, exists := s.data[key]
	if !exists {
		return domain.HoldingsSet{Key: key}, nil
	}

	out := set
	out.Records = make([]domain.HoldingsRecord, len(set.Records))
	copy(out.Records, set.Records)
	return out, nil
}

var _ storage.HoldingsStore = (*HoldingsStore)(nil)
