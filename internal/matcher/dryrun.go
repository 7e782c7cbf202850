package matcher

import (
	"context"

	"github.com/veldhoen/tapster/internal/catalog"
	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/service"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

// DryRunItem is one probe input for offline matcher validation.
type DryRunItem struct {
	Name       string
	VolumeHint string
	ArticleKey string
}

// DryRun categorizes the given items against an engine with no catalog
// source attached. Results are fully deterministic and involve no network:
// items resolve through the curated index or fall through to fallback.
func DryRun(items []DryRunItem, curated map[string]string, tax *taxonomy.Taxonomy, cfg Config) []model.MatchResult {
	engine := NewWithConfig(catalog.NewIndex(curated, nil), tax, cfg)

	results := make([]model.MatchResult, len(items))
	for i, item := range items {
		results[i] = engine.Categorize(context.Background(), service.CategorizeRequest{
			Name:       item.Name,
			VolumeHint: item.VolumeHint,
			ArticleKey: item.ArticleKey,
		})
	}
	return results
}
