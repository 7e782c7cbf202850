// Package model defines the core domain models used throughout the application.
package model

import "time"

// LineItem represents a purchasable unit within an order as received from
// upstream order processing. Absence of ArticleKey is common and is the main
// driver of categorization ambiguity.
type LineItem struct {
	Name         string  `json:"name"`
	ArticleKey   string  `json:"article_key,omitempty"`
	VolumeHint   string  `json:"volume_hint,omitempty"`
	CategoryCode string  `json:"category_code,omitempty"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
}

// EnrichedLineItem is a LineItem after categorization. The original fields
// are carried verbatim; only category metadata is added.
type EnrichedLineItem struct {
	LineItem
	CategoryCode string    `json:"category_code"`
	CategoryName string    `json:"category_name"`
	MatchType    MatchType `json:"match_type"`
	Confidence   float64   `json:"confidence"`
}

// Order is a batch of line items submitted for enrichment.
type Order struct {
	PlacedAt time.Time  `json:"placed_at,omitempty"`
	ID       string     `json:"id"`
	Items    []LineItem `json:"items"`
}

// EnrichedOrder is the enriched payload consumed by downstream document
// generation. Items preserve the input ordering of the source order.
type EnrichedOrder struct {
	ID      string             `json:"id"`
	Items   []EnrichedLineItem `json:"items"`
	Summary OrderSummary       `json:"summary"`
}
