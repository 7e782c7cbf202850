// Package storage provides the persistence layer for the analytics rolling log.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/veldhoen/tapster/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements service.SummaryStore using SQLite, so the rolling
// log survives process restarts within a single client context.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append persists a summary and trims entries beyond capacity in the same
// transaction, so concurrent order completions cannot lose entries.
func (s *SQLiteStore) Append(ctx context.Context, summary model.OrderSummary, capacity int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSummary(&summary); err != nil {
		return err
	}
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidCapacity)
	}

	categoryCounts, err := json.Marshal(summary.CategoryCounts)
	if err != nil {
		return fmt.Errorf("failed to encode category counts: %w", err)
	}
	matchTypeCounts, err := json.Marshal(summary.MatchTypeCounts)
	if err != nil {
		return fmt.Errorf("failed to encode match type counts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertQuery := `
		INSERT INTO order_summaries
			(order_id, created_at, total_items, low_confidence_items, category_counts, match_type_counts)
		VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insertQuery,
		summary.OrderID,
		summary.CreatedAt,
		summary.TotalItems,
		summary.LowConfidenceItems,
		string(categoryCounts),
		string(matchTypeCounts),
	); err != nil {
		return fmt.Errorf("failed to insert order summary: %w", err)
	}

	trimQuery := `
		DELETE FROM order_summaries
		WHERE id NOT IN (
			SELECT id FROM order_summaries
			ORDER BY id DESC
			LIMIT ?
		)`

	if _, err := tx.ExecContext(ctx, trimQuery, capacity); err != nil {
		return fmt.Errorf("failed to trim order summaries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order summary: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit summaries in insertion order, oldest first.
func (s *SQLiteStore) LoadRecent(ctx context.Context, limit int) ([]model.OrderSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidCapacity)
	}

	query := `
		SELECT order_id, created_at, total_items, low_confidence_items, category_counts, match_type_counts
		FROM (
			SELECT id, order_id, created_at, total_items, low_confidence_items, category_counts, match_type_counts
			FROM order_summaries
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order summaries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var summaries []model.OrderSummary
	for rows.Next() {
		var summary model.OrderSummary
		var categoryCounts, matchTypeCounts string

		if err := rows.Scan(
			&summary.OrderID,
			&summary.CreatedAt,
			&summary.TotalItems,
			&summary.LowConfidenceItems,
			&categoryCounts,
			&matchTypeCounts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}

		if err := json.Unmarshal([]byte(categoryCounts), &summary.CategoryCounts); err != nil {
			return nil, fmt.Errorf("failed to decode category counts: %w", err)
		}
		if err := json.Unmarshal([]byte(matchTypeCounts), &summary.MatchTypeCounts); err != nil {
			return nil, fmt.Errorf("failed to decode match type counts: %w", err)
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order summaries: %w", err)
	}
	return summaries, nil
}

// Count returns the number of persisted summaries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_summaries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count order summaries: %w", err)
	}
	return count, nil
}
