// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/storage"
)

// SetupTestStore creates a migrated in-memory SQLite store with automatic
// cleanup.
func SetupTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// Summary builds a valid order summary fixture.
func Summary(orderID string, total, low int, categories map[string]int) model.OrderSummary {
	matchTypes := map[model.MatchType]int{}
	if total-low > 0 {
		matchTypes[model.MatchExact] = total - low
	}
	if low > 0 {
		matchTypes[model.MatchFallback] = low
	}
	return model.OrderSummary{
		CreatedAt:          time.Now().UTC(),
		OrderID:            orderID,
		CategoryCounts:     categories,
		MatchTypeCounts:    matchTypes,
		TotalItems:         total,
		LowConfidenceItems: low,
	}
}
