package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/veldhoen/tapster/internal/analytics"
	"github.com/veldhoen/tapster/internal/catalog"
	"github.com/veldhoen/tapster/internal/enrich"
	"github.com/veldhoen/tapster/internal/matcher"
	"github.com/veldhoen/tapster/internal/service"
	"github.com/veldhoen/tapster/internal/storage"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

// buildTaxonomy returns the taxonomy, extended with any categories configured
// under taxonomy.categories.
func buildTaxonomy() *taxonomy.Taxonomy {
	entries := viper.GetStringMapString("taxonomy.categories")
	if len(entries) == 0 {
		return taxonomy.Default()
	}
	return taxonomy.New(entries)
}

// buildCatalogClient creates the remote catalog client, or nil when no
// endpoint is configured. A missing endpoint is not an error: matching
// degrades to the curated index plus fallback.
func buildCatalogClient() (*catalog.Client, error) {
	url := viper.GetString("catalog.url")
	if url == "" {
		return nil, nil
	}
	return catalog.NewClient(catalog.ClientConfig{
		URL:     url,
		Timeout: viper.GetDuration("catalog.timeout"),
		TTL:     viper.GetDuration("catalog.ttl"),
	})
}

// buildIndex assembles the product index from the curated mapping and the
// configured catalog source.
func buildIndex() (*catalog.Index, error) {
	client, err := buildCatalogClient()
	if err != nil {
		return nil, err
	}

	curated := viper.GetStringMapString("catalog.curated")
	if len(curated) == 0 {
		curated = catalog.DefaultCuratedIndex()
	}

	if client == nil {
		return catalog.NewIndex(curated, nil), nil
	}
	return catalog.NewIndex(curated, client), nil
}

// buildEngine creates the matching engine from configuration.
func buildEngine() (*matcher.Engine, error) {
	index, err := buildIndex()
	if err != nil {
		return nil, err
	}

	return matcher.NewWithConfig(index, buildTaxonomy(), matcher.Config{
		PartialThreshold:   viper.GetFloat64("matcher.partial_threshold"),
		ExactConfidence:    viper.GetFloat64("matcher.exact_confidence"),
		FallbackConfidence: viper.GetFloat64("matcher.fallback_confidence"),
		DefaultCategory:    viper.GetString("matcher.default_category"),
	}), nil
}

// buildSummaryStore opens the configured analytics store. With no database
// path configured the rolling log lives in memory only.
func buildSummaryStore(ctx context.Context) (service.SummaryStore, error) {
	dbPath := viper.GetString("analytics.db_path")
	if dbPath == "" {
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate analytics store: %w", err)
	}
	return store, nil
}

// buildAggregator creates the analytics aggregator over the configured store.
// The caller owns the returned store and must close it.
func buildAggregator(ctx context.Context) (*analytics.Aggregator, service.SummaryStore, error) {
	store, err := buildSummaryStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	agg, err := analytics.NewWithConfig(ctx, store, buildTaxonomy(), analytics.Config{
		Capacity: viper.GetInt("analytics.capacity"),
		TopN:     viper.GetInt("analytics.top_n"),
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return agg, store, nil
}

// buildEnricher wires the full pipeline: engine, aggregator and enricher.
func buildEnricher(ctx context.Context) (*enrich.Enricher, *analytics.Aggregator, service.SummaryStore, error) {
	engine, err := buildEngine()
	if err != nil {
		return nil, nil, nil, err
	}

	agg, store, err := buildAggregator(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	enricher := enrich.NewWithConfig(engine, agg, enrich.Config{
		LowConfidenceThreshold: viper.GetFloat64("enrich.low_confidence_threshold"),
		FallbackCategory:       viper.GetString("matcher.default_category"),
		FallbackConfidence:     viper.GetFloat64("matcher.fallback_confidence"),
	})
	return enricher, agg, store, nil
}
