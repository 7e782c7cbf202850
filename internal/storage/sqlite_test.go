package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldhoen/tapster/internal/model"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func summaryFixture(orderID string) model.OrderSummary {
	return model.OrderSummary{
		CreatedAt:          time.Now().UTC(),
		OrderID:            orderID,
		CategoryCounts:     map[string]int{"10": 2, "30": 1},
		MatchTypeCounts:    map[model.MatchType]int{model.MatchExact: 2, model.MatchFallback: 1},
		TotalItems:         3,
		LowConfidenceItems: 1,
	}
}

func TestSQLiteStore_AppendAndLoad(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, summaryFixture("order-1"), 100))
	require.NoError(t, store.Append(ctx, summaryFixture("order-2"), 100))

	summaries, err := store.LoadRecent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Insertion order, oldest first.
	assert.Equal(t, "order-1", summaries[0].OrderID)
	assert.Equal(t, "order-2", summaries[1].OrderID)

	assert.Equal(t, 3, summaries[0].TotalItems)
	assert.Equal(t, 1, summaries[0].LowConfidenceItems)
	assert.Equal(t, map[string]int{"10": 2, "30": 1}, summaries[0].CategoryCounts)
	assert.Equal(t, map[model.MatchType]int{model.MatchExact: 2, model.MatchFallback: 1}, summaries[0].MatchTypeCounts)
}

func TestSQLiteStore_TrimsBeyondCapacity(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 1; i <= 150; i++ {
		require.NoError(t, store.Append(ctx, summaryFixture(fmt.Sprintf("order-%03d", i)), 100))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, count)

	summaries, err := store.LoadRecent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, summaries, 100)

	// The 100 most recently inserted remain, oldest first.
	assert.Equal(t, "order-051", summaries[0].OrderID)
	assert.Equal(t, "order-150", summaries[99].OrderID)
}

func TestSQLiteStore_LoadRecentLimit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		require.NoError(t, store.Append(ctx, summaryFixture(fmt.Sprintf("order-%02d", i)), 100))
	}

	summaries, err := store.LoadRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "order-08", summaries[0].OrderID)
	assert.Equal(t, "order-10", summaries[2].OrderID)
}

func TestSQLiteStore_RejectsInvalidSummaries(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		summary model.OrderSummary
	}{
		{
			name:    "missing order id",
			summary: model.OrderSummary{CreatedAt: time.Now(), TotalItems: 1},
		},
		{
			name:    "missing creation time",
			summary: model.OrderSummary{OrderID: "x", TotalItems: 1},
		},
		{
			name: "low confidence exceeds total",
			summary: model.OrderSummary{
				CreatedAt:          time.Now(),
				OrderID:            "x",
				TotalItems:         1,
				LowConfidenceItems: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.Append(ctx, tt.summary, 100))
		})
	}
}

func TestSQLiteStore_MigrateIsIdempotent(t *testing.T) {
	store := setupStore(t)
	assert.NoError(t, store.Migrate(context.Background()))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 150; i++ {
		require.NoError(t, store.Append(ctx, summaryFixture(fmt.Sprintf("order-%03d", i)), 100))
	}

	summaries, err := store.LoadRecent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, summaries, 100)
	assert.Equal(t, "order-051", summaries[0].OrderID)
	assert.Equal(t, "order-150", summaries[99].OrderID)

	assert.NoError(t, store.Close())
}
