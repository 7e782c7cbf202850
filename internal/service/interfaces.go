// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/veldhoen/tapster/internal/model"
)

// CatalogSource provides the full product listing from the external catalog.
// Implementations are best-effort: a failed fetch returns an error and the
// caller degrades, it never blocks indefinitely.
type CatalogSource interface {
	Products(ctx context.Context) ([]model.CatalogProduct, error)
}

// CategorizeRequest carries the raw signals for one line item match.
type CategorizeRequest struct {
	Name         string
	VolumeHint   string
	ArticleKey   string
	ExistingCode string
}

// Categorizer assigns a category to a single line item. Implementations must
// be total: every request resolves to a valid MatchResult, never an error.
type Categorizer interface {
	Categorize(ctx context.Context, req CategorizeRequest) model.MatchResult
	CategoryName(code string) string
}

// SummaryStore persists the bounded rolling log of order summaries.
// Append must trim beyond capacity as part of the same logical operation.
type SummaryStore interface {
	Append(ctx context.Context, summary model.OrderSummary, capacity int) error
	LoadRecent(ctx context.Context, limit int) ([]model.OrderSummary, error)
	Close() error
}

// Recorder receives completed order summaries and serves derived analytics.
type Recorder interface {
	Record(ctx context.Context, summary model.OrderSummary) error
	Compute() model.AnalyticsSnapshot
	Refresh(ctx context.Context) error
}

// Enricher applies categorization to every line item of an order.
type Enricher interface {
	EnrichOrder(ctx context.Context, order model.Order) (model.EnrichedOrder, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// EnrichmentStats summarizes a batch enrichment run for CLI reporting.
type EnrichmentStats struct {
	Orders        int
	Items         int
	LowConfidence int
	Duration      time.Duration
}
