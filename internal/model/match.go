package model

// MatchType classifies how a category was derived for a line item.
type MatchType string

// Match type constants, ordered from most to least trusted.
const (
	// MatchExisting indicates the item already carried a trusted category code.
	MatchExisting MatchType = "existing"
	// MatchID indicates a direct hit in the curated article index.
	MatchID MatchType = "id_match"
	// MatchExact indicates an exact normalized-name match against the catalog.
	MatchExact MatchType = "exact"
	// MatchPartial indicates a fuzzy name match above the acceptance threshold.
	MatchPartial MatchType = "partial"
	// MatchFallback indicates no match was found and the default category applied.
	MatchFallback MatchType = "fallback"
)

// MatchTypes lists all match types in confidence order, highest first.
// Useful for stable iteration when rendering per-type totals.
var MatchTypes = []MatchType{MatchExisting, MatchID, MatchExact, MatchPartial, MatchFallback}

// CatalogProduct is a product record from the external catalog.
type CatalogProduct struct {
	ArticleKey   string `json:"article_key"`
	Name         string `json:"name"`
	CategoryCode string `json:"category_code"`
}

// MatchResult is the ephemeral output of the matching engine for one item.
type MatchResult struct {
	CategoryCode string          `json:"category_code"`
	CategoryName string          `json:"category_name"`
	Type         MatchType       `json:"match_type"`
	Confidence   float64         `json:"confidence"`
	Product      *CatalogProduct `json:"product,omitempty"`
}
