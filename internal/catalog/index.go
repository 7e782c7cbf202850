package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/veldhoen/tapster/internal/common"
	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/service"
)

// Index is the product index: a curated article key to category code map for
// high-confidence short-circuit matching, plus catalog record lookup through
// an optional best-effort source.
type Index struct {
	source   service.CatalogSource
	curated  map[string]string
	warnOnce sync.Once
}

// NewIndex builds an index over the curated mapping and an optional catalog
// source. A nil source means name-based matching degrades to fallback; the
// curated mapping keeps working regardless.
func NewIndex(curated map[string]string, source service.CatalogSource) *Index {
	cp := make(map[string]string, len(curated))
	for key, code := range curated {
		cp[key] = code
	}
	return &Index{curated: cp, source: source}
}

// CategoryFor looks up the curated category code for an article key.
func (ix *Index) CategoryFor(articleKey string) (string, bool) {
	if articleKey == "" {
		return "", false
	}
	code, ok := ix.curated[articleKey]
	return code, ok
}

// CuratedKeys returns the curated article keys in sorted order.
func (ix *Index) CuratedKeys() []string {
	keys := make([]string, 0, len(ix.curated))
	for key := range ix.curated {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Product returns the catalog record for an article key, if the catalog is
// reachable and carries one. Lookup failures are fail-open: they report a
// miss, never an error.
func (ix *Index) Product(ctx context.Context, articleKey string) (*model.CatalogProduct, bool) {
	if articleKey == "" {
		return nil, false
	}

	products, err := ix.Products(ctx)
	if err != nil {
		return nil, false
	}

	for i := range products {
		if products[i].ArticleKey == articleKey {
			p := products[i]
			return &p, true
		}
	}
	return nil, false
}

// Products returns the catalog listing from the configured source. With no
// source configured every call reports the catalog as unavailable; the
// condition is logged once, not per lookup.
func (ix *Index) Products(ctx context.Context) ([]model.CatalogProduct, error) {
	if ix.source == nil {
		ix.warnOnce.Do(func() {
			slog.Warn("No catalog source configured, name matching degrades to fallback")
		})
		return nil, common.ErrMissingConfig
	}
	return ix.source.Products(ctx)
}
