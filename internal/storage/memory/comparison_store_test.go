package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"fund-overlap-lab/internal/storage"
)

func TestComparisonStore_PutAndGet(t *testing.T) {
	store := NewComparisonStore()
	ctx := context.Background()

	fixed := time.UnixMilli(1704067200000)
	store.now = func() time.Time { return fixed }

	payload := []byte(`{"fund_ticker":"SPY"}`)
	if err := store.Put(ctx, "SPY", "inst-1", payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, storedAt, err := store.Get(ctx, "SPY", "inst-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Payload = %s, want %s", got, payload)
	}
	if storedAt != fixed.UnixMilli() {
		t.Errorf("storedAt = %d, want %d", storedAt, fixed.UnixMilli())
	}
}

func TestComparisonStore_GetNotFound(t *testing.T) {
	store := NewComparisonStore()
	_, _, err := store.Get(context.Background(), "SPY", "inst-1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestComparisonStore_PutOverwritesAndRefreshes(t *testing.T) {
	store := NewComparisonStore()
	ctx := context.Background()

	clock := time.UnixMilli(1704067200000)
	store.now = func() time.Time { return clock }

	if err := store.Put(ctx, "SPY", "inst-1", []byte("old")); err != nil {
		t.Fatalf("Put (1) failed: %v", err)
	}

	clock = clock.Add(time.Hour)
	if err := store.Put(ctx, "SPY", "inst-1", []byte("new")); err != nil {
		t.Fatalf("Put (2) failed: %v", err)
	}

	payload, storedAt, err := store.Get(ctx, "SPY", "inst-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(payload) != "new" {
		t.Errorf("Payload = %q, want new", payload)
	}
	if storedAt != clock.UnixMilli() {
		t.Errorf("storedAt not refreshed: %d, want %d", storedAt, clock.UnixMilli())
	}
}

func TestComparisonStore_KeysAreCompound(t *testing.T) {
	store := NewComparisonStore()
	ctx := context.Background()

	if err := store.Put(ctx, "SPY", "inst-1", []byte("a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "SPY", "inst-2", []byte("b")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _, err := store.Get(ctx, "SPY", "inst-2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "b" {
		t.Errorf("Payload = %q, want b", got)
	}
}

func TestComparisonStore_InvalidInput(t *testing.T) {
	store := NewComparisonStore()
	ctx := context.Background()

	if err := store.Put(ctx, "", "inst-1", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ticker, got %v", err)
	}
	if err := store.Put(ctx, "SPY", "", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty institution, got %v", err)
	}
}

func TestComparisonStore_ReturnsCopies(t *testing.T) {
	store := NewComparisonStore()
	ctx := context.Background()

	if err := store.Put(ctx, "SPY", "inst-1", []byte("original")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _, _ := store.Get(ctx, "SPY", "inst-1")
	got[0] = 'X'

	again, _, _ := store.Get(ctx, "SPY", "inst-1")
	if string(again) != "original" {
		t.Errorf("Store leaked internal state: %q", again)
	}
}
