package catalog

import (
	"context"

	"github.com/veldhoen/tapster/internal/model"
)

// Static is an in-memory catalog source with a fixed product listing.
// It is used for offline categorization and in tests; iteration order is the
// construction order, which keeps fuzzy tie-breaking deterministic.
type Static struct {
	products []model.CatalogProduct
}

// NewStatic creates a static catalog source. The slice is copied.
func NewStatic(products []model.CatalogProduct) *Static {
	cp := make([]model.CatalogProduct, len(products))
	copy(cp, products)
	return &Static{products: cp}
}

// Products returns the fixed listing.
func (s *Static) Products(_ context.Context) ([]model.CatalogProduct, error) {
	return s.products, nil
}
