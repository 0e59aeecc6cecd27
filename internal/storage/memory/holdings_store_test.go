package memory

import (
	"context"
	"errors"
	"testing"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

func TestHoldingsStore_PutAndGet(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	set := domain.HoldingsSet{
		Key:         "SPY",
		RetrievedAt: 1704067200000,
		Records: []domain.HoldingsRecord{
			{Name: "Apple Inc", Value: 100},
			{Name: "Microsoft Corp", Value: 200},
		},
	}

	if err := store.Put(ctx, set); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.GetByKey(ctx, "SPY")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if got.Key != "SPY" || got.RetrievedAt != set.RetrievedAt || len(got.Records) != 2 {
		t.Errorf("Got %+v", got)
	}
}

func TestHoldingsStore_UnknownKeyYieldsEmptySet(t *testing.T) {
	store := NewHoldingsStore()

	got, err := store.GetByKey(context.Background(), "UNKNOWN")
	if err != nil {
		t.Fatalf("Unknown key must not error, got %v", err)
	}
	if !got.Empty() {
		t.Errorf("Expected empty set, got %+v", got)
	}
	if got.Key != "UNKNOWN" {
		t.Errorf("Key = %q, want UNKNOWN", got.Key)
	}
}

func TestHoldingsStore_PutReplaces(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	first := domain.HoldingsSet{
		Key:     "SPY",
		Records: []domain.HoldingsRecord{{Name: "Old Position", Value: 1}},
	}
	second := domain.HoldingsSet{
		Key:     "SPY",
		Records: []domain.HoldingsRecord{{Name: "New Position", Value: 2}},
	}

	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put (1) failed: %v", err)
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put (2) failed: %v", err)
	}

	got, _ := store.GetByKey(ctx, "SPY")
	if len(got.Records) != 1 || got.Records[0].Name != "New Position" {
		t.Errorf("Put did not replace: %+v", got.Records)
	}
}

func TestHoldingsStore_EmptyKeyRejected(t *testing.T) {
	store := NewHoldingsStore()
	err := store.Put(context.Background(), domain.HoldingsSet{})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestHoldingsStore_ReturnsCopies(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	if err := store.Put(ctx, domain.HoldingsSet{
		Key:     "SPY",
		Records: []domain.HoldingsRecord{{Name: "Original", Value: 1}},
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _ := store.GetByKey(ctx, "SPY")
	got.Records[0].Name = "Mutated"

	again, _ := store.GetByKey(ctx, "SPY")
	if again.Records[0].Name != "Original" {
		t.Errorf("Store leaked internal state: %q", again.Records[0].Name)
	}
}

func TestHoldingsStore_FundAndInstitutionKeysDisjoint(t *testing.T) {
	store := NewHoldingsStore()
	ctx := context.Background()

	fundSet := domain.HoldingsSet{
		Key:     "X",
		Records: []domain.HoldingsRecord{{Name: "Fund Holding", Value: 1}},
	}
	instSet := domain.HoldingsSet{
		Key:     domain.InstitutionKey("X"),
		Records: []domain.HoldingsRecord{{Name: "Institution Holding", Value: 2}},
	}

	if err := store.Put(ctx, fundSet); err != nil {
		t.Fatalf("Put fund failed: %v", err)
	}
	if err := store.Put(ctx, instSet); err != nil {
		t.Fatalf("Put institution failed: %v", err)
	}

	gotFund, _ := store.GetByKey(ctx, "X")
	gotInst, _ := store.GetByKey(ctx, domain.InstitutionKey("X"))
	if gotFund.Records[0].Name != "Fund Holding" || gotInst.Records[0].Name != "Institution Holding" {
		t.Errorf("Keys collided: fund=%+v inst=%+v", gotFund.Records, gotInst.Records)
	}
}
