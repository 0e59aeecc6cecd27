package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/storage"
)

func TestHoldingsStore_PutAndGetByKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingsStore(pool)
	ctx := context.Background()

	set := domain.HoldingsSet{
		Key:         "SPY",
		RetrievedAt: 1704067200000,
		Records: []domain.HoldingsRecord{
			{
				Name:       "Apple Inc",
				Ticker:     ptr("AAPL"),
				CUSIP:      ptr("037833100"),
				Value:      1000.5,
				Percentage: 7.2,
				Category:   ptr("Equity"),
			},
			{
				Name:  "Cash Position",
				Value: 50,
			},
		},
	}

	err := store.Put(ctx, set)
	require.NoError(t, err)

	got, err := store.GetByKey(ctx, "SPY")
	require.NoError(t, err)

	assert.Equal(t, "SPY", got.Key)
	assert.Equal(t, int64(1704067200000), got.RetrievedAt)
	require.Len(t, got.Records, 2)

	first := got.Records[0]
	assert.Equal(t, "Apple Inc", first.Name)
	require.NotNil(t, first.Ticker)
	assert.Equal(t, "AAPL", *first.Ticker)
	require.NotNil(t, first.CUSIP)
	assert.Equal(t, "037833100", *first.CUSIP)
	assert.Equal(t, 1000.5, first.Value)
	assert.Equal(t, 7.2, first.Percentage)

	second := got.Records[1]
	assert.Equal(t, "Cash Position", second.Name)
	assert.Nil(t, second.Ticker)
	assert.Nil(t, second.CUSIP)
	assert.Nil(t, second.Category)
}

func TestHoldingsStore_RecordOrderPreserved(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingsStore(pool)
	ctx := context.Background()

	set := domain.HoldingsSet{Key: "SPY", RetrievedAt: 1}
	for _, name := range []string{"Zebra Corp", "Apple Inc", "Midway Inc"} {
		set.Records = append(set.Records, domain.HoldingsRecord{Name: name})
	}
	require.NoError(t, store.Put(ctx, set))

	got, err := store.GetByKey(ctx, "SPY")
	require.NoError(t, err)
	require.Len(t, got.Records, 3)
	assert.Equal(t, "Zebra Corp", got.Records[0].Name)
	assert.Equal(t, "Apple Inc", got.Records[1].Name)
	assert.Equal(t, "Midway Inc", got.Records[2].Name)
}

func TestHoldingsStore_PutReplacesWholesale(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingsStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.HoldingsSet{
		Key:         "SPY",
		RetrievedAt: 1000,
		Records: []domain.HoldingsRecord{
			{Name: "Old Position A"},
			{Name: "Old Position B"},
			{Name: "Old Position C"},
		},
	}))

	require.NoError(t, store.Put(ctx, domain.HoldingsSet{
		Key:         "SPY",
		RetrievedAt: 2000,
		Records: []domain.HoldingsRecord{
			{Name: "New Position"},
		},
	}))

	got, err := store.GetByKey(ctx, "SPY")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.RetrievedAt)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "New Position", got.Records[0].Name)
}

func TestHoldingsStore_UnknownKeyYieldsEmptySet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingsStore(pool)

	got, err := store.GetByKey(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", got.Key)
	assert.True(t, got.Empty())
}

func TestHoldingsStore_InstitutionKeyRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingsStore(pool)
	ctx := context.Background()

	key := domain.InstitutionKey("0001067983")
	require.NoError(t, store.Put(ctx, domain.HoldingsSet{
		Key:         key,
		RetrievedAt: 1,
		Records: []domain.HoldingsRecord{
			{Name: "Apple Inc", Ticker: ptr("AAPL"), Value: 9000},
		},
	}))

	got, err := store.GetByKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Apple Inc", got.Records[0].Name)
}

func TestHoldingsStore_ProvenanceColumns(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingsStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.HoldingsSet{
		Key:         "FOF",
		RetrievedAt: 1,
		Records: []domain.HoldingsRecord{
			{
				Name:             "Microsoft Corp",
				Ticker:           ptr("MSFT"),
				Value:            30,
				ParentFundName:   ptr("Growth Fund X"),
				ParentFundTicker: ptr("X"),
			},
		},
	}))

	got, err := store.GetByKey(ctx, "FOF")
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	rec := got.Records[0]
	require.NotNil(t, rec.ParentFundName)
	assert.Equal(t, "Growth Fund X", *rec.ParentFundName)
	require.NotNil(t, rec.ParentFundTicker)
	assert.Equal(t, "X", *rec.ParentFundTicker)
}

func TestHoldingsStore_EmptyKeyRejected(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingsStore(pool)
	err := store.Put(context.Background(), domain.HoldingsSet{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
