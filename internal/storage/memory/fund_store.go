package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

// FundStore is an in-memory implementation of storage.FundStore.
type FundStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Fund // keyed by ticker
}

// NewFundStore creates a new in-memory fund store.
func NewFundStore() *FundStore {
	return &FundStore{
		data: make(map[string]*domain.Fund),
	}
}

// Upsert inserts a fund or replaces the existing record for its ticker.
func (s *FundStore) Upsert(_ context.Context, f *domain.Fund) error {
	if f == nil || f.Ticker == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *f
	s.data[f.Ticker] = &copy
	return nil
}

// GetByTicker retrieves a fund by ticker. Returns ErrNotFound if not exists.
func (s *FundStore) GetByTicker(_ context.Context, ticker string) (*domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.data[ticker]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *f
	return &copy, nil
}

// GetByName retrieves a fund by exact name, falling back to a
// case-insensitive match. Returns ErrNotFound if not exists.
func (s *FundStore) GetByName(_ context.Context, name string) (*domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.data {
		if f.Name == name {
			copy := *f
			return &copy, nil
		}
	}
	for _, f := range s.data {
		if strings.EqualFold(f.Name, name) {
			copy := *f
			return &copy, nil
		}
	}

	return nil, storage.ErrNotFound
}

// GetAll retrieves all funds ordered by ticker.
func (s *FundStore) GetAll(_ context.Context) ([]*domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Fund, 0, len(s.data))
	for _, f := range s.data {
		copy := *f
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Ticker < result[j].Ticker
	})

	return result, nil
}

var _ storage.FundStore = (*FundStore)(nil)
