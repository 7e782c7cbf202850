package storage

import (
	"context"
	"sync"

	"github.com/veldhoen/tapster/internal/model"
)

// MemoryStore is a non-durable service.SummaryStore used when no database
// path is configured, and in tests.
type MemoryStore struct {
	summaries []model.OrderSummary
	mu        sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a summary and trims beyond capacity as one step.
func (s *MemoryStore) Append(ctx context.Context, summary model.OrderSummary, capacity int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSummary(&summary); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = append(s.summaries, summary)
	if excess := len(s.summaries) - capacity; excess > 0 {
		s.summaries = s.summaries[excess:]
	}
	return nil
}

// LoadRecent returns up to limit summaries in insertion order, oldest first.
func (s *MemoryStore) LoadRecent(ctx context.Context, limit int) ([]model.OrderSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.summaries) > limit {
		start = len(s.summaries) - limit
	}
	out := make([]model.OrderSummary, len(s.summaries)-start)
	copy(out, s.summaries[start:])
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
