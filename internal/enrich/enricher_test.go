package enrich

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldhoen/tapster/internal/catalog"
	"github.com/veldhoen/tapster/internal/matcher"
	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/service"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

// slowCategorizer resolves items with per-item artificial latency to exercise
// completion-order independence.
type slowCategorizer struct {
	delays map[string]time.Duration
	inner  service.Categorizer
}

func (c *slowCategorizer) Categorize(ctx context.Context, req service.CategorizeRequest) model.MatchResult {
	if d, ok := c.delays[req.Name]; ok {
		time.Sleep(d)
	}
	return c.inner.Categorize(ctx, req)
}

func (c *slowCategorizer) CategoryName(code string) string {
	return c.inner.CategoryName(code)
}

// panicCategorizer panics on a specific item name.
type panicCategorizer struct {
	inner     service.Categorizer
	panicName string
}

func (c *panicCategorizer) Categorize(ctx context.Context, req service.CategorizeRequest) model.MatchResult {
	if req.Name == c.panicName {
		panic("malformed input")
	}
	return c.inner.Categorize(ctx, req)
}

func (c *panicCategorizer) CategoryName(code string) string {
	return c.inner.CategoryName(code)
}

// memRecorder captures recorded summaries.
type memRecorder struct {
	mu        sync.Mutex
	summaries []model.OrderSummary
}

func (r *memRecorder) Record(_ context.Context, summary model.OrderSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
	return nil
}

func (r *memRecorder) Compute() model.AnalyticsSnapshot { return model.AnalyticsSnapshot{} }

func (r *memRecorder) Refresh(_ context.Context) error { return nil }

func testTaxonomy() *taxonomy.Taxonomy {
	return taxonomy.New(map[string]string{
		"10": "Beer",
		"30": "Soft Drinks",
		"99": "Uncategorized",
	})
}

func testCategorizer() service.Categorizer {
	source := catalog.NewStatic([]model.CatalogProduct{
		{ArticleKey: "HEIN-33-24", Name: "Heineken Bier 24x33cl", CategoryCode: "10"},
		{ArticleKey: "COCA-50-12", Name: "Coca Cola 12x50cl", CategoryCode: "30"},
	})
	curated := map[string]string{"HEIN-33-24": "10"}
	return matcher.New(catalog.NewIndex(curated, source), testTaxonomy())
}

func TestEnrichOrder(t *testing.T) {
	recorder := &memRecorder{}
	enricher := New(testCategorizer(), recorder)

	order := model.Order{
		ID: "order-1",
		Items: []model.LineItem{
			{Name: "Heineken Bier 24x33cl", ArticleKey: "HEIN-33-24", Quantity: 2, UnitPrice: 16.99},
			{Name: "Coca Cola 12x50cl", Quantity: 1, UnitPrice: 8.49},
			{Name: "Unknown Mystery Item", Quantity: 1, UnitPrice: 1.00},
			{Name: "anything", CategoryCode: "30", Quantity: 3, UnitPrice: 2.00},
		},
	}

	got, err := enricher.EnrichOrder(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, got.Items, 4)

	assert.Equal(t, model.MatchID, got.Items[0].MatchType)
	assert.Equal(t, model.MatchExact, got.Items[1].MatchType)
	assert.Equal(t, model.MatchFallback, got.Items[2].MatchType)
	assert.Equal(t, model.MatchExisting, got.Items[3].MatchType)
	assert.Equal(t, "30", got.Items[3].CategoryCode)

	// Original fields are untouched.
	assert.Equal(t, 2, got.Items[0].LineItem.Quantity)
	assert.Equal(t, 16.99, got.Items[0].LineItem.UnitPrice)

	// Summary side effect.
	assert.Equal(t, 4, got.Summary.TotalItems)
	assert.Equal(t, 1, got.Summary.LowConfidenceItems)
	assert.Equal(t, 1, got.Summary.MatchTypeCounts[model.MatchFallback])
	assert.Equal(t, 2, got.Summary.CategoryCounts["30"])

	// Recorded exactly once.
	require.Len(t, recorder.summaries, 1)
	assert.Equal(t, "order-1", recorder.summaries[0].OrderID)
}

func TestEnrichOrder_PreservesInputOrder(t *testing.T) {
	// The middle item resolves last; output order must still match input.
	slow := &slowCategorizer{
		inner: testCategorizer(),
		delays: map[string]time.Duration{
			"Coca Cola 12x50cl": 50 * time.Millisecond,
		},
	}
	enricher := New(slow, nil)

	order := model.Order{
		ID: "order-2",
		Items: []model.LineItem{
			{Name: "Heineken Bier 24x33cl"},
			{Name: "Coca Cola 12x50cl"},
			{Name: "Unknown Mystery Item"},
		},
	}

	got, err := enricher.EnrichOrder(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)

	assert.Equal(t, "Heineken Bier 24x33cl", got.Items[0].LineItem.Name)
	assert.Equal(t, "Coca Cola 12x50cl", got.Items[1].LineItem.Name)
	assert.Equal(t, "Unknown Mystery Item", got.Items[2].LineItem.Name)
}

func TestEnrichOrder_PanicDegradesSingleItem(t *testing.T) {
	enricher := New(&panicCategorizer{
		inner:     testCategorizer(),
		panicName: "Coca Cola 12x50cl",
	}, nil)

	order := model.Order{
		ID: "order-3",
		Items: []model.LineItem{
			{Name: "Heineken Bier 24x33cl"},
			{Name: "Coca Cola 12x50cl"},
		},
	}

	got, err := enricher.EnrichOrder(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)

	assert.NotEqual(t, model.MatchFallback, got.Items[0].MatchType)
	assert.Equal(t, model.MatchFallback, got.Items[1].MatchType)
	assert.Equal(t, taxonomy.DefaultCategoryCode, got.Items[1].CategoryCode)
	assert.NotEmpty(t, got.Items[1].CategoryName)
}

func TestEnrichOrder_GeneratesOrderID(t *testing.T) {
	enricher := New(testCategorizer(), nil)

	got, err := enricher.EnrichOrder(context.Background(), model.Order{
		Items: []model.LineItem{{Name: "Coca Cola 12x50cl"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, got.ID, got.Summary.OrderID)
}

func TestEnrichOrder_EmptyOrder(t *testing.T) {
	recorder := &memRecorder{}
	enricher := New(testCategorizer(), recorder)

	got, err := enricher.EnrichOrder(context.Background(), model.Order{ID: "empty"})
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, 0, got.Summary.TotalItems)
	assert.Equal(t, 1.0, got.Summary.ConfidenceRate())
}
