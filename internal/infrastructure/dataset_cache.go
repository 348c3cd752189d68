package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"adpulse/internal/domain"
	"adpulse/pkg/logger"
)

// cacheKey is the fixed key the last dataset is stored under. There is only
// ever one cached dataset per store.
const cacheKey = "processed_dataset"

// SQLiteDatasetCache persists the last dataset into a single-row key-value
// table. It is a cache, not a source of truth: a missing row loads as nil,
// and a row that fails to unmarshal also loads as nil instead of erroring.
type SQLiteDatasetCache struct {
	db     *sql.DB
	logger *logger.Logger
}

func NewSQLiteDatasetCache(path string, logger *logger.Logger) (*SQLiteDatasetCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS dataset_cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &SQLiteDatasetCache{db: db, logger: logger}, nil
}

func (c *SQLiteDatasetCache) Save(ctx context.Context, dataset *domain.ProcessedDataset) error {
	payload, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `INSERT INTO dataset_cache (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		cacheKey, string(payload))
	if err != nil {
		return fmt.Errorf("failed to write dataset cache: %w", err)
	}
	return nil
}

func (c *SQLiteDatasetCache) Load(ctx context.Context) (*domain.ProcessedDataset, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM dataset_cache WHERE key = ?`, cacheKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset cache: %w", err)
	}

	var dataset domain.ProcessedDataset
	if err := json.Unmarshal([]byte(payload), &dataset); err != nil {
		// Corrupt cache degrades to "no dataset".
		c.logger.WithError(err).Warn("Discarding unreadable dataset cache entry")
		return nil, nil
	}
	return &dataset, nil
}

func (c *SQLiteDatasetCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM dataset_cache WHERE key = ?`, cacheKey); err != nil {
		return fmt.Errorf("failed to clear dataset cache: %w", err)
	}
	return nil
}

func (c *SQLiteDatasetCache) Close() error {
	return c.db.Close()
}
