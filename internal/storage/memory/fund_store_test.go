package memory

import (
	"context"
	"errors"
	"testing"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

func TestFundStore_UpsertAndGet(t *testing.T) {
	store := NewFundStore()
	ctx := context.Background()

	f := &domain.Fund{
		Ticker:    "SPY",
		Name:      "SPDR S&P 500 ETF",
		FundType:  domain.FundTypeUnderlying,
		CreatedAt: 1704067200000,
	}

	if err := store.Upsert(ctx, f); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByTicker(ctx, "SPY")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}
	if got.Name != f.Name || got.FundType != f.FundType {
		t.Errorf("Got %+v, want %+v", got, f)
	}

	// Upsert replaces.
	f.FundType = domain.FundTypeFundOfFunds
	if err := store.Upsert(ctx, f); err != nil {
		t.Fatalf("Upsert (2) failed: %v", err)
	}
	got, _ = store.GetByTicker(ctx, "SPY")
	if got.FundType != domain.FundTypeFundOfFunds {
		t.Errorf("Upsert did not replace, FundType = %q", got.FundType)
	}
}

func TestFundStore_GetByTickerNotFound(t *testing.T) {
	store := NewFundStore()
	_, err := store.GetByTicker(context.Background(), "NOPE")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFundStore_GetByName(t *testing.T) {
	store := NewFundStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.Fund{Ticker: "SPY", Name: "SPDR S&P 500 ETF"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByName(ctx, "SPDR S&P 500 ETF")
	if err != nil {
		t.Fatalf("GetByName (exact) failed: %v", err)
	}
	if got.Ticker != "SPY" {
		t.Errorf("Ticker = %q, want SPY", got.Ticker)
	}

	// Case-insensitive fallback.
	got, err = store.GetByName(ctx, "spdr s&p 500 etf")
	if err != nil {
		t.Fatalf("GetByName (case-insensitive) failed: %v", err)
	}
	if got.Ticker != "SPY" {
		t.Errorf("Ticker = %q, want SPY", got.Ticker)
	}

	if _, err := store.GetByName(ctx, "Unknown Fund"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFundStore_GetAllSorted(t *testing.T) {
	store := NewFundStore()
	ctx := context.Background()

	for _, ticker := range []string{"VTI", "QQQ", "SPY"} {
		if err := store.Upsert(ctx, &domain.Fund{Ticker: ticker, Name: ticker}); err != nil {
			t.Fatalf("Upsert %s failed: %v", ticker, err)
		}
	}

	funds, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(funds) != 3 {
		t.Fatalf("Expected 3 funds, got %d", len(funds))
	}
	for i, want := range []string{"QQQ", "SPY", "VTI"} {
		if funds[i].Ticker != want {
			t.Errorf("funds[%d] = %q, want %q", i, funds[i].Ticker, want)
		}
	}
}

func TestFundStore_InvalidInput(t *testing.T) {
	store := NewFundStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Upsert(ctx, &domain.Fund{Name: "No Ticker"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ticker, got %v", err)
	}
}

func TestFundStore_ReturnsCopies(t *testing.T) {
	store := NewFundStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.Fund{Ticker: "SPY", Name: "Original"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := store.GetByTicker(ctx, "SPY")
	got.Name = "Mutated"

	again, _ := store.GetByTicker(ctx, "SPY")
	if again.Name != "Original" {
		t.Errorf("Store leaked internal state: %q", again.Name)
	}
}
