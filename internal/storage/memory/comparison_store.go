package memory

import (
	"context"
	"sync"
	"time"

	"fund-overlap-lab/internal/storage"
)

// ComparisonStore is an in-memory implementation of storage.ComparisonStore.
type ComparisonStore struct {
	mu   sync.RWMutex
	data map[string]comparisonEntry // keyed by fundTicker + "\x00" + institutionID
	now  func() time.Time
}

type comparisonEntry struct {
	payload  []byte
	storedAt int64 // Unix ms
}

// NewComparisonStore creates a new in-memory comparison store.
func NewComparisonStore() *ComparisonStore {
	return &ComparisonStore{
		data: make(map[string]comparisonEntry),
		now:  time.Now,
	}
}

func comparisonKey(fundTicker, institutionID string) string {
	return fundTicker + "\x00" + institutionID
}

// Put stores a payload under the composite key, overwriting any
// previous entry and refreshing its stored-at timestamp.
func (s *ComparisonStore) Put(_ context.Context, fundTicker, institutionID string, payload []byte) error {
	if fundTicker == "" || institutionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.data[comparisonKey(fundTicker, institutionID)] = comparisonEntry{
		payload:  stored,
		storedAt: s.now().UnixMilli(),
	}
	return nil
}

// Get retrieves the payload and its stored-at timestamp (Unix ms).
// Returns ErrNotFound when no entry exists.
func (s *ComparisonStore) Get(_ context.Context, fundTicker, institutionID string) ([]byte, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.data[comparisonKey(fundTicker, institutionID)]
	if !exists {
		return nil, 0, storage.ErrNotFound
	}

	payload := make([]byte, len(entry.payload))
	copy(payload, entry.payload)
	return payload, entry.storedAt, nil
}

var _ storage.ComparisonStore = (*ComparisonStore)(nil)
