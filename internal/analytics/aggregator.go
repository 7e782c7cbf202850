// Package analytics maintains a bounded rolling log of order categorization
// summaries and derives dashboard statistics from it.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/service"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

const (
	// DefaultCapacity bounds the rolling log to the most recent N orders.
	DefaultCapacity = 100
	// DefaultTopN limits how many categories the snapshot ranks.
	DefaultTopN = 5
)

// Config holds aggregator options.
type Config struct {
	Capacity int
	TopN     int
}

// Aggregator owns the rolling log. Appends are atomic with respect to the
// eviction policy; statistics are recomputed in full on every record or
// refresh, never patched incrementally.
type Aggregator struct {
	store    service.SummaryStore
	taxonomy *taxonomy.Taxonomy
	log      []model.OrderSummary
	snapshot model.AnalyticsSnapshot
	capacity int
	topN     int
	mu       sync.Mutex
}

// New creates an aggregator with the default configuration, loading any
// previously persisted log from the store. The store may be nil for a purely
// in-memory aggregator.
func New(ctx context.Context, store service.SummaryStore, tax *taxonomy.Taxonomy) (*Aggregator, error) {
	return NewWithConfig(ctx, store, tax, Config{})
}

// NewWithConfig creates an aggregator with custom configuration.
func NewWithConfig(ctx context.Context, store service.SummaryStore, tax *taxonomy.Taxonomy, cfg Config) (*Aggregator, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}

	a := &Aggregator{
		store:    store,
		taxonomy: tax,
		capacity: cfg.Capacity,
		topN:     cfg.TopN,
	}

	if store != nil {
		log, err := store.LoadRecent(ctx, cfg.Capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to load analytics log: %w", err)
		}
		a.log = log
	}
	a.snapshot = a.compute()

	return a, nil
}

// Record appends a summary to the rolling log, evicting the oldest entry
// beyond capacity, and recomputes the snapshot. Append and trim happen as one
// step under the lock so concurrent order completions cannot lose entries.
func (a *Aggregator) Record(ctx context.Context, summary model.OrderSummary) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log = append(a.log, summary)
	if excess := len(a.log) - a.capacity; excess > 0 {
		a.log = a.log[excess:]
	}
	a.snapshot = a.compute()

	if a.store != nil {
		if err := a.store.Append(ctx, summary, a.capacity); err != nil {
			return fmt.Errorf("failed to persist order summary: %w", err)
		}
	}
	return nil
}

// Compute returns the current snapshot.
func (a *Aggregator) Compute() model.AnalyticsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// Refresh reloads the log from the store and recomputes the snapshot.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		log, err := a.store.LoadRecent(ctx, a.capacity)
		if err != nil {
			return fmt.Errorf("failed to reload analytics log: %w", err)
		}
		a.log = log
	}
	a.snapshot = a.compute()

	slog.Debug("Analytics refreshed", "orders", len(a.log))
	return nil
}

// compute derives the snapshot from the full current log. Callers hold the
// lock. Cost is O(log size × categories), acceptable for a bounded log.
func (a *Aggregator) compute() model.AnalyticsSnapshot {
	snapshot := model.AnalyticsSnapshot{
		ComputedAt:      time.Now(),
		MatchTypeTotals: make(map[model.MatchType]int),
		TotalOrders:     len(a.log),
	}

	if len(a.log) == 0 {
		return snapshot
	}

	// First-seen order of category keys drives tie-breaking.
	counts := make(map[string]int)
	var firstSeen []string

	var rateSum float64
	for _, summary := range a.log {
		rateSum += summary.ConfidenceRate()
		snapshot.TotalItems += summary.TotalItems

		for matchType, n := range summary.MatchTypeCounts {
			snapshot.MatchTypeTotals[matchType] += n
		}
		for _, code := range sortedKeys(summary.CategoryCounts) {
			if _, seen := counts[code]; !seen {
				firstSeen = append(firstSeen, code)
			}
			counts[code] += summary.CategoryCounts[code]
		}
	}
	snapshot.AvgConfidenceRate = rateSum / float64(len(a.log))

	ranked := make([]model.CategoryCount, 0, len(firstSeen))
	for _, code := range firstSeen {
		ranked = append(ranked, model.CategoryCount{
			CategoryCode: code,
			CategoryName: a.taxonomy.Name(code),
			Count:        counts[code],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > a.topN {
		ranked = ranked[:a.topN]
	}
	snapshot.TopCategories = ranked

	return snapshot
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
