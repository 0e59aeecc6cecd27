package memory

import (
	"context"
	"sort"
	"sync"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// OverlapSnapshotStore is an in-memory implementation of
// storage.OverlapSnapshotStore.
type OverlapSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.OverlapSnapshot // keyed by run id
}

// NewOverlapSnapshotStore creates a new in-memory overlap snapshot store.
func NewOverlapSnapshotStore() *OverlapSnapshotStore {
	return &OverlapSnapshotStore{
		data: make(map[string]*domain.OverlapSnapshot),
	}
}

// Insert adds a snapshot. Returns ErrDuplicateKey if run_id exists.
func (s *OverlapSnapshotStore) Insert(_ context.Context, snap *domain.OverlapSnapshot) error {
	if snap == nil || snap.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *snap
	copy.Funds = append([]string(nil), snap.Funds...)
	s.data[snap.RunID] = &copy
	return nil
}

// GetAll retrieves all snapshots ordered by created_at ASC.
func (s *OverlapSnapshotStore) GetAll(_ context.Context) ([]*domain.OverlapSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.OverlapSnapshot, 0, len(s.data))
	for _, snap := range s.data {
		copy := *snap
		copy.Funds = append([]string(nil), snap.Funds...)
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt == result[j].CreatedAt {
			return result[i].RunID < result[j].RunID
		}
		return result[i].CreatedAt < result[j].CreatedAt
	})

	return result, nil
}

var _ storage.OverlapSnapshotStore = (*OverlapSnapshotStore)(nil)
