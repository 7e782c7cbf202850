package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldhoen/tapster/internal/model"
)

type failingSource struct{}

func (failingSource) Products(_ context.Context) ([]model.CatalogProduct, error) {
	return nil, errors.New("connection refused")
}

func TestIndex_CategoryFor(t *testing.T) {
	ix := NewIndex(map[string]string{"HEIN-33-24": "10"}, nil)

	code, ok := ix.CategoryFor("HEIN-33-24")
	assert.True(t, ok)
	assert.Equal(t, "10", code)

	_, ok = ix.CategoryFor("UNKNOWN-KEY")
	assert.False(t, ok)

	_, ok = ix.CategoryFor("")
	assert.False(t, ok)
}

func TestIndex_Product(t *testing.T) {
	source := NewStatic([]model.CatalogProduct{
		{ArticleKey: "HEIN-33-24", Name: "Heineken Bier 24x33cl", CategoryCode: "10"},
		{ArticleKey: "COCA-50-12", Name: "Coca Cola 12x50cl", CategoryCode: "30"},
	})
	ix := NewIndex(nil, source)

	product, ok := ix.Product(context.Background(), "COCA-50-12")
	require.True(t, ok)
	assert.Equal(t, "Coca Cola 12x50cl", product.Name)
	assert.Equal(t, "30", product.CategoryCode)

	_, ok = ix.Product(context.Background(), "MISSING")
	assert.False(t, ok)
}

func TestIndex_ProductFailOpen(t *testing.T) {
	ix := NewIndex(nil, failingSource{})

	// Source errors must surface as a miss, never as a panic or error.
	product, ok := ix.Product(context.Background(), "HEIN-33-24")
	assert.False(t, ok)
	assert.Nil(t, product)
}

func TestIndex_NoSourceConfigured(t *testing.T) {
	ix := NewIndex(map[string]string{"HEIN-33-24": "10"}, nil)

	_, err := ix.Products(context.Background())
	assert.Error(t, err)

	// Curated lookups keep working without a source.
	code, ok := ix.CategoryFor("HEIN-33-24")
	assert.True(t, ok)
	assert.Equal(t, "10", code)
}

func TestIndex_CuratedMapCopied(t *testing.T) {
	curated := map[string]string{"HEIN-33-24": "10"}
	ix := NewIndex(curated, nil)

	curated["HEIN-33-24"] = "99"
	code, _ := ix.CategoryFor("HEIN-33-24")
	assert.Equal(t, "10", code)
}

func TestDefaultCuratedIndex(t *testing.T) {
	curated := DefaultCuratedIndex()
	assert.NotEmpty(t, curated)
	for key, code := range curated {
		assert.NotEmpty(t, key)
		assert.NotEmpty(t, code)
	}
}
