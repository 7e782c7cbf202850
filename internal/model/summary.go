package model

import "time"

// OrderSummary is the per-order categorization record kept in the rolling
// analytics log. Immutable once created.
type OrderSummary struct {
	CreatedAt          time.Time         `json:"created_at"`
	OrderID            string            `json:"order_id"`
	CategoryCounts     map[string]int    `json:"category_counts"`
	MatchTypeCounts    map[MatchType]int `json:"match_type_counts"`
	TotalItems         int               `json:"total_items"`
	LowConfidenceItems int               `json:"low_confidence_items"`
}

// ConfidenceRate returns the share of items categorized with acceptable
// confidence. An empty order counts as fully confident.
func (s OrderSummary) ConfidenceRate() float64 {
	if s.TotalItems == 0 {
		return 1.0
	}
	return float64(s.TotalItems-s.LowConfidenceItems) / float64(s.TotalItems)
}

// CategoryCount pairs a category with its total item count across the log.
type CategoryCount struct {
	CategoryCode string `json:"category_code"`
	CategoryName string `json:"category_name"`
	Count        int    `json:"count"`
}

// AnalyticsSnapshot is derived from the full rolling log on demand; it is
// never patched incrementally.
type AnalyticsSnapshot struct {
	ComputedAt        time.Time         `json:"computed_at"`
	TopCategories     []CategoryCount   `json:"top_categories"`
	MatchTypeTotals   map[MatchType]int `json:"match_type_totals"`
	TotalOrders       int               `json:"total_orders"`
	TotalItems        int               `json:"total_items"`
	AvgConfidenceRate float64           `json:"avg_confidence_rate"`
}
