// Package matcher implements the cascading categorization engine for order
// line items.
package matcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/veldhoen/tapster/internal/catalog"
	"github.com/veldhoen/tapster/internal/common"
	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/service"
	"github.com/veldhoen/tapster/internal/similarity"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

// Config holds the tunable constants of the matching policy. The defaults
// mirror observed behavior; they are configuration, not invariants.
type Config struct {
	// PartialThreshold is the minimum similarity a fuzzy candidate must
	// exceed to be accepted.
	PartialThreshold float64
	// ExactConfidence is assigned to exact name matches. Below 1.0 because
	// catalog names may be ambiguous duplicates.
	ExactConfidence float64
	// FallbackConfidence is the floor value assigned to fallback results.
	FallbackConfidence float64
	// DefaultCategory receives every item no other step could place.
	DefaultCategory string
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{
		PartialThreshold:   0.6,
		ExactConfidence:    0.9,
		FallbackConfidence: 0.3,
		DefaultCategory:    taxonomy.DefaultCategoryCode,
	}
}

// Engine orchestrates the cascading match policy per line item. It is safe
// for concurrent use; all mutable state lives behind the injected index.
type Engine struct {
	index    *catalog.Index
	taxonomy *taxonomy.Taxonomy
	config   Config
}

// New creates a matching engine with the default configuration.
func New(index *catalog.Index, tax *taxonomy.Taxonomy) *Engine {
	return NewWithConfig(index, tax, DefaultConfig())
}

// NewWithConfig creates a matching engine with custom configuration.
func NewWithConfig(index *catalog.Index, tax *taxonomy.Taxonomy, config Config) *Engine {
	if config.PartialThreshold <= 0 {
		config.PartialThreshold = DefaultConfig().PartialThreshold
	}
	if config.ExactConfidence <= 0 {
		config.ExactConfidence = DefaultConfig().ExactConfidence
	}
	if config.FallbackConfidence <= 0 {
		config.FallbackConfidence = DefaultConfig().FallbackConfidence
	}
	if config.DefaultCategory == "" {
		config.DefaultCategory = DefaultConfig().DefaultCategory
	}
	return &Engine{
		index:    index,
		taxonomy: tax,
		config:   config,
	}
}

// Categorize resolves a category for one line item. Evaluation is a strict
// cascade, short-circuiting on the first step that succeeds:
//
//  1. preserve an existing trusted code verbatim
//  2. curated article index hit
//  3. exact normalized-name match against the catalog
//  4. best fuzzy candidate above the acceptance threshold
//  5. configured default category
//
// Every input resolves to a valid result. Catalog failures degrade to the
// fallback step, they are never returned.
func (e *Engine) Categorize(ctx context.Context, req service.CategorizeRequest) model.MatchResult {
	// Step 1: a pre-existing code is preserved verbatim so re-running
	// enrichment never reassigns a category.
	if code := strings.TrimSpace(req.ExistingCode); code != "" {
		return e.result(code, model.MatchExisting, 1.0, nil)
	}

	// Step 2: curated index lookup by article key.
	if code, ok := e.index.CategoryFor(req.ArticleKey); ok {
		product, _ := e.index.Product(ctx, req.ArticleKey)
		return e.result(code, model.MatchID, 1.0, product)
	}

	name := common.NormalizeName(req.Name)
	if name == "" {
		// Malformed item; nothing left to match on.
		return e.fallback()
	}

	products, err := e.index.Products(ctx)
	if err != nil {
		slog.Debug("Catalog unavailable, degrading to fallback",
			"name", req.Name,
			"error", err)
		return e.fallback()
	}

	// Step 3: exact normalized-name equality.
	for i := range products {
		if common.NormalizeName(products[i].Name) == name {
			return e.result(products[i].CategoryCode, model.MatchExact, e.config.ExactConfidence, &products[i])
		}
	}

	// Step 4: best fuzzy candidate. Strict greater-than keeps the first
	// candidate in catalog order on ties.
	var best *model.CatalogProduct
	bestScore := 0.0
	for i := range products {
		if score := similarity.Score(name, products[i].Name); score > bestScore {
			best = &products[i]
			bestScore = score
		}
	}
	if best != nil && bestScore > e.config.PartialThreshold {
		return e.result(best.CategoryCode, model.MatchPartial, bestScore, best)
	}

	// Step 5: the safety net.
	return e.fallback()
}

// CategoryName returns the display name for a category code. Unknown codes
// produce a synthesized label; there is no fallback-to-fetch.
func (e *Engine) CategoryName(code string) string {
	return e.taxonomy.Name(code)
}

func (e *Engine) fallback() model.MatchResult {
	return e.result(e.config.DefaultCategory, model.MatchFallback, e.config.FallbackConfidence, nil)
}

func (e *Engine) result(code string, matchType model.MatchType, confidence float64, product *model.CatalogProduct) model.MatchResult {
	return model.MatchResult{
		CategoryCode: code,
		CategoryName: e.taxonomy.Name(code),
		Type:         matchType,
		Confidence:   confidence,
		Product:      product,
	}
}
