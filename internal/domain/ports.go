package domain

import "context"

// DatasetRepository owns the current in-memory dataset of the session.
// Exactly one processing run writes at a time; reads never mutate.
type DatasetRepository interface {
	Replace(ctx context.Context, dataset *ProcessedDataset) error
	Current(ctx context.Context) (*ProcessedDataset, error)
	Clear(ctx context.Context) error
}

// DatasetCache opportunistically persists the last dataset. It is a cache,
// not a source of truth: a missing or unreadable entry loads as nil.
type DatasetCache interface {
	Save(ctx context.Context, dataset *ProcessedDataset) error
	Load(ctx context.Context) (*ProcessedDataset, error)
	Clear(ctx context.Context) error
}

// InventoryQuality is an externally supplied quality assessment for one
// (exchange, app) traffic source.
type InventoryQuality struct {
	Score     float64
	FraudRate float64
}

// QualityScorer rates inventory traffic sources. Returning nil marks the
// source as not scored; the aggregator never invents a score on its own.
type QualityScorer interface {
	Score(exchange, appID string, totals Totals) *InventoryQuality
}
