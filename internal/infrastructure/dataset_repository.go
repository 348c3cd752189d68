package infrastructure

import (
	"context"
	"sync"
	"time"

	"adpulse/internal/domain"
	"adpulse/pkg/logger"
)

// DatasetRepository holds the current dataset in memory. Replacement is
// wholesale; readers get the pointer that was current when they asked and
// must not mutate it.
type DatasetRepository struct {
	current *domain.ProcessedDataset
	mutex   sync.RWMutex
	logger  *logger.Logger
}

func NewDatasetRepository(logger *logger.Logger) *DatasetRepository {
	return &DatasetRepository{logger: logger}
}

func (r *DatasetRepository) Replace(ctx context.Context, dataset *domain.ProcessedDataset) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.current = dataset
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"campaigns": dataset.Summary.CampaignCount,
		"records":   dataset.Summary.RecordCount,
	}).Info("Replaced current dataset")
	return nil
}

func (r *DatasetRepository) Current(ctx context.Context) (*domain.ProcessedDataset, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.current == nil {
		return domain.EmptyDataset(time.Now().Format("2006-01-02")), nil
	}
	return r.current, nil
}

func (r *DatasetRepository) Clear(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.current = nil
	r.logger.WithContext(ctx).Info("Cleared current dataset")
	return nil
}
