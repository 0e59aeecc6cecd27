package memory

import (
	"context"
	"errors"
	"testing"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

func TestOverlapSnapshotStore_InsertAndGetAll(t *testing.T) {
	store := NewOverlapSnapshotStore()
	ctx := context.Background()

	snap := &domain.OverlapSnapshot{
		RunID:               "run-1",
		Funds:               []string{"QQQ", "SPY"},
		EntryCount:          10,
		OverlapCount:        4,
		TotalRedundantValue: 1234.5,
		MaxOverlap:          2,
		CreatedAt:           1704067200000,
	}

	if err := store.Insert(ctx, snap); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(all))
	}
	got := all[0]
	if got.RunID != "run-1" || got.OverlapCount != 4 || got.TotalRedundantValue != 1234.5 {
		t.Errorf("Got %+v", got)
	}
	if len(got.Funds) != 2 {
		t.Errorf("Funds = %v", got.Funds)
	}
}

func TestOverlapSnapshotStore_DuplicateRunID(t *testing.T) {
	store := NewOverlapSnapshotStore()
	ctx := context.Background()

	snap := &domain.OverlapSnapshot{RunID: "run-1", CreatedAt: 1}
	if err := store.Insert(ctx, snap); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := store.Insert(ctx, &domain.OverlapSnapshot{RunID: "run-1", CreatedAt: 2})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestOverlapSnapshotStore_GetAllOrderedByCreatedAt(t *testing.T) {
	store := NewOverlapSnapshotStore()
	ctx := context.Background()

	for _, snap := range []*domain.OverlapSnapshot{
		{RunID: "run-c", CreatedAt: 3000},
		{RunID: "run-a", CreatedAt: 1000},
		{RunID: "run-b", CreatedAt: 2000},
	} {
		if err := store.Insert(ctx, snap); err != nil {
			t.Fatalf("Insert %s failed: %v", snap.RunID, err)
		}
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	for i, want := range []string{"run-a", "run-b", "run-c"} {
		if all[i].RunID != want {
			t.Errorf("all[%d] = %q, want %q", i, all[i].RunID, want)
		}
	}
}

func TestOverlapSnapshotStore_InvalidInput(t *testing.T) {
	store := NewOverlapSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.OverlapSnapshot{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty run id, got %v", err)
	}
}
