package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/storage"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

func testTaxonomy() *taxonomy.Taxonomy {
	return taxonomy.New(map[string]string{
		"10": "Beer",
		"30": "Soft Drinks",
		"99": "Uncategorized",
	})
}

func summaryWith(orderID string, total, low int, categories map[string]int) model.OrderSummary {
	return model.OrderSummary{
		CreatedAt:          time.Now().UTC(),
		OrderID:            orderID,
		CategoryCounts:     categories,
		MatchTypeCounts:    map[model.MatchType]int{model.MatchExact: total - low, model.MatchFallback: low},
		TotalItems:         total,
		LowConfidenceItems: low,
	}
}

func TestAggregator_RollingLogBound(t *testing.T) {
	ctx := context.Background()
	agg, err := New(ctx, storage.NewMemoryStore(), testTaxonomy())
	require.NoError(t, err)

	for i := 1; i <= 150; i++ {
		summary := summaryWith(fmt.Sprintf("order-%03d", i), 4, 0, map[string]int{"10": 4})
		require.NoError(t, agg.Record(ctx, summary))
	}

	snapshot := agg.Compute()
	assert.Equal(t, 100, snapshot.TotalOrders)
	assert.Equal(t, 400, snapshot.TotalItems)
}

func TestAggregator_MeanConfidenceRate(t *testing.T) {
	ctx := context.Background()
	agg, err := New(ctx, nil, testTaxonomy())
	require.NoError(t, err)

	// Rates 1.0 and 0.5; the mean is arithmetic across orders, not weighted
	// by item count.
	require.NoError(t, agg.Record(ctx, summaryWith("order-1", 10, 0, map[string]int{"10": 10})))
	require.NoError(t, agg.Record(ctx, summaryWith("order-2", 2, 1, map[string]int{"30": 2})))

	snapshot := agg.Compute()
	assert.Equal(t, 2, snapshot.TotalOrders)
	assert.InDelta(t, 0.75, snapshot.AvgConfidenceRate, 1e-9)
}

func TestAggregator_TopCategories(t *testing.T) {
	ctx := context.Background()
	agg, err := New(ctx, nil, testTaxonomy())
	require.NoError(t, err)

	require.NoError(t, agg.Record(ctx, summaryWith("order-1", 5, 0, map[string]int{"10": 3, "30": 2})))
	require.NoError(t, agg.Record(ctx, summaryWith("order-2", 4, 0, map[string]int{"30": 4})))

	snapshot := agg.Compute()
	require.Len(t, snapshot.TopCategories, 2)

	assert.Equal(t, "30", snapshot.TopCategories[0].CategoryCode)
	assert.Equal(t, "Soft Drinks", snapshot.TopCategories[0].CategoryName)
	assert.Equal(t, 6, snapshot.TopCategories[0].Count)

	assert.Equal(t, "10", snapshot.TopCategories[1].CategoryCode)
	assert.Equal(t, 3, snapshot.TopCategories[1].Count)
}

func TestAggregator_TopCategoriesTieBreakFirstSeen(t *testing.T) {
	ctx := context.Background()
	agg, err := New(ctx, nil, testTaxonomy())
	require.NoError(t, err)

	// "30" and "10" end up with equal counts; "30" was seen first.
	require.NoError(t, agg.Record(ctx, summaryWith("order-1", 3, 0, map[string]int{"30": 3})))
	require.NoError(t, agg.Record(ctx, summaryWith("order-2", 3, 0, map[string]int{"10": 3})))

	snapshot := agg.Compute()
	require.Len(t, snapshot.TopCategories, 2)
	assert.Equal(t, "30", snapshot.TopCategories[0].CategoryCode)
	assert.Equal(t, "10", snapshot.TopCategories[1].CategoryCode)
}

func TestAggregator_TopNLimit(t *testing.T) {
	ctx := context.Background()
	agg, err := NewWithConfig(ctx, nil, testTaxonomy(), Config{TopN: 1})
	require.NoError(t, err)

	require.NoError(t, agg.Record(ctx, summaryWith("order-1", 5, 0, map[string]int{"10": 3, "30": 2})))

	snapshot := agg.Compute()
	require.Len(t, snapshot.TopCategories, 1)
	assert.Equal(t, "10", snapshot.TopCategories[0].CategoryCode)
}

func TestAggregator_MatchTypeTotals(t *testing.T) {
	ctx := context.Background()
	agg, err := New(ctx, nil, testTaxonomy())
	require.NoError(t, err)

	require.NoError(t, agg.Record(ctx, summaryWith("order-1", 4, 1, map[string]int{"10": 4})))
	require.NoError(t, agg.Record(ctx, summaryWith("order-2", 2, 1, map[string]int{"30": 2})))

	snapshot := agg.Compute()
	assert.Equal(t, 4, snapshot.MatchTypeTotals[model.MatchExact])
	assert.Equal(t, 2, snapshot.MatchTypeTotals[model.MatchFallback])
}

func TestAggregator_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	agg, err := New(ctx, store, testTaxonomy())
	require.NoError(t, err)
	require.NoError(t, agg.Record(ctx, summaryWith("order-1", 2, 0, map[string]int{"10": 2})))

	// A fresh aggregator over the same store sees the persisted log.
	reborn, err := New(ctx, store, testTaxonomy())
	require.NoError(t, err)

	snapshot := reborn.Compute()
	assert.Equal(t, 1, snapshot.TotalOrders)
	assert.Equal(t, 2, snapshot.TotalItems)
}

func TestAggregator_Refresh(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	agg, err := New(ctx, store, testTaxonomy())
	require.NoError(t, err)

	// Another writer appends behind this aggregator's back.
	other, err := New(ctx, store, testTaxonomy())
	require.NoError(t, err)
	require.NoError(t, other.Record(ctx, summaryWith("order-1", 1, 0, map[string]int{"10": 1})))

	assert.Equal(t, 0, agg.Compute().TotalOrders)
	require.NoError(t, agg.Refresh(ctx))
	assert.Equal(t, 1, agg.Compute().TotalOrders)
}

func TestAggregator_EmptyLog(t *testing.T) {
	agg, err := New(context.Background(), nil, testTaxonomy())
	require.NoError(t, err)

	snapshot := agg.Compute()
	assert.Equal(t, 0, snapshot.TotalOrders)
	assert.Equal(t, 0.0, snapshot.AvgConfidenceRate)
	assert.Empty(t, snapshot.TopCategories)
}
