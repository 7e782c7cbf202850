// Package enrich applies the matching engine to every line item of an order
// and feeds the resulting summary into analytics.
package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/service"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

// DefaultLowConfidenceThreshold marks results whose confidence is considered
// weak for observability purposes. Distinct from the fuzzy acceptance
// threshold.
const DefaultLowConfidenceThreshold = 0.7

// Config holds enrichment pipeline options.
type Config struct {
	LowConfidenceThreshold float64
	// FallbackCategory and FallbackConfidence are used when a categorizer
	// implementation misbehaves and an item must be degraded locally.
	FallbackCategory   string
	FallbackConfidence float64
}

// Enricher maps orders through the categorizer, preserving item order, and
// records one summary per completed order.
type Enricher struct {
	categorizer        service.Categorizer
	recorder           service.Recorder
	threshold          float64
	fallbackCategory   string
	fallbackConfidence float64
}

// New creates an enricher. The recorder may be nil, in which case summaries
// are computed but not recorded.
func New(categorizer service.Categorizer, recorder service.Recorder) *Enricher {
	return NewWithConfig(categorizer, recorder, Config{})
}

// NewWithConfig creates an enricher with custom options.
func NewWithConfig(categorizer service.Categorizer, recorder service.Recorder, cfg Config) *Enricher {
	if cfg.LowConfidenceThreshold <= 0 {
		cfg.LowConfidenceThreshold = DefaultLowConfidenceThreshold
	}
	if cfg.FallbackCategory == "" {
		cfg.FallbackCategory = taxonomy.DefaultCategoryCode
	}
	if cfg.FallbackConfidence <= 0 {
		cfg.FallbackConfidence = 0.3
	}
	return &Enricher{
		categorizer:        categorizer,
		recorder:           recorder,
		threshold:          cfg.LowConfidenceThreshold,
		fallbackCategory:   cfg.FallbackCategory,
		fallbackConfidence: cfg.FallbackConfidence,
	}
}

// EnrichOrder categorizes every line item of the order. Matches fan out
// concurrently since no item depends on another; the output preserves input
// order regardless of completion order. A single item's failure degrades that
// item, never the batch.
func (e *Enricher) EnrichOrder(ctx context.Context, order model.Order) (model.EnrichedOrder, error) {
	orderID := order.ID
	if orderID == "" {
		orderID = uuid.NewString()
	}

	enriched := make([]model.EnrichedLineItem, len(order.Items))

	var wg sync.WaitGroup
	for i, item := range order.Items {
		wg.Add(1)
		go func(i int, item model.LineItem) {
			defer wg.Done()
			enriched[i] = e.enrichItem(ctx, item)
		}(i, item)
	}
	wg.Wait()

	summary := e.summarize(orderID, enriched)

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, summary); err != nil {
			// Analytics are advisory; a failed record never fails the order.
			slog.Error("Failed to record order summary",
				"order_id", orderID,
				"error", err)
		}
	}

	slog.Info("Order enriched",
		"order_id", orderID,
		"items", summary.TotalItems,
		"low_confidence", summary.LowConfidenceItems)

	return model.EnrichedOrder{
		ID:      orderID,
		Items:   enriched,
		Summary: summary,
	}, nil
}

// enrichItem resolves one item, converting any panic from a misbehaving
// categorizer into a fallback result.
func (e *Enricher) enrichItem(ctx context.Context, item model.LineItem) (out model.EnrichedLineItem) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Categorization panicked, degrading item to fallback",
				"item", item.Name,
				"panic", r)
			out = model.EnrichedLineItem{
				LineItem:     item,
				CategoryCode: e.fallbackCategory,
				CategoryName: e.categorizer.CategoryName(e.fallbackCategory),
				MatchType:    model.MatchFallback,
				Confidence:   e.fallbackConfidence,
			}
		}
	}()

	result := e.categorizer.Categorize(ctx, service.CategorizeRequest{
		Name:         item.Name,
		VolumeHint:   item.VolumeHint,
		ArticleKey:   item.ArticleKey,
		ExistingCode: item.CategoryCode,
	})

	return model.EnrichedLineItem{
		LineItem:     item,
		CategoryCode: result.CategoryCode,
		CategoryName: result.CategoryName,
		MatchType:    result.Type,
		Confidence:   result.Confidence,
	}
}

func (e *Enricher) summarize(orderID string, items []model.EnrichedLineItem) model.OrderSummary {
	summary := model.OrderSummary{
		CreatedAt:       time.Now(),
		OrderID:         orderID,
		CategoryCounts:  make(map[string]int),
		MatchTypeCounts: make(map[model.MatchType]int),
		TotalItems:      len(items),
	}

	for _, item := range items {
		summary.CategoryCounts[item.CategoryCode]++
		summary.MatchTypeCounts[item.MatchType]++
		if item.Confidence < e.threshold {
			summary.LowConfidenceItems++
		}
	}

	return summary
}
