package usecase

import (
	"context"
	"fmt"
	"time"

	"adpulse/internal/domain"
	"adpulse/internal/ingest"
	"adpulse/pkg/logger"
	"adpulse/pkg/metrics"
)

// UploadFile is one file of an upload batch, already read into memory.
type UploadFile struct {
	Name    string
	Content []byte
}

// ProcessService runs upload batches through the ingestion pipeline and
// owns dataset replacement. Files are processed one at a time in the order
// given; a failing file is reported in its own FileResult and never
// discards what earlier files contributed.
type ProcessService struct {
	processor *ingest.FileProcessor
	datasets  domain.DatasetRepository
	cache     domain.DatasetCache
	scorer    domain.QualityScorer
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewProcessService(
	processor *ingest.FileProcessor,
	datasets domain.DatasetRepository,
	cache domain.DatasetCache,
	scorer domain.QualityScorer,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ProcessService {
	return &ProcessService{
		processor: processor,
		datasets:  datasets,
		cache:     cache,
		scorer:    scorer,
		logger:    logger,
		metrics:   metrics,
	}
}

// ProcessBatch ingests a batch of files into one new dataset. Per-file
// record lists are concatenated and the union is aggregated once, so files
// contributing to the same campaign sum into one bucket. The previous
// dataset is replaced wholesale on success.
func (s *ProcessService) ProcessBatch(ctx context.Context, files []UploadFile) (*domain.ProcessedDataset, []domain.FileResult, error) {
	start := time.Now()
	s.metrics.IncBatchesInProgress()
	defer s.metrics.DecBatchesInProgress()

	log := s.logger.WithContext(ctx)
	log.WithField("files", len(files)).Info("Starting upload batch")

	var (
		results   []domain.FileResult
		campaigns []domain.CampaignRecord
		creatives []domain.CreativeRecord
	)

	for _, file := range files {
		out := s.processor.Process(file.Content)
		v := out.Validation

		result := domain.FileResult{
			Filename:        file.Name,
			Valid:           v.IsValid,
			FileType:        v.FileType,
			Errors:          v.Errors,
			Warnings:        out.Warnings,
			RowCount:        v.RowCount,
			CampaignRecords: len(out.Campaigns),
			CreativeRecords: len(out.Creatives),
		}
		results = append(results, result)

		status := "success"
		if !v.IsValid {
			status = "failed"
		}
		s.metrics.RecordFile(string(v.FileType), status)
		s.metrics.RecordRows(string(v.FileType), v.RowCount)
		s.metrics.RecordRecords("campaign", len(out.Campaigns))
		s.metrics.RecordRecords("creative", len(out.Creatives))

		if !v.IsValid {
			log.WithFields(map[string]any{
				"file":   file.Name,
				"errors": v.Errors,
			}).Warn("File rejected, continuing with batch")
			continue
		}

		campaigns = append(campaigns, out.Campaigns...)
		creatives = append(creatives, out.Creatives...)

		log.WithFields(map[string]any{
			"file":             file.Name,
			"file_type":        v.FileType,
			"rows":             v.RowCount,
			"campaign_records": len(out.Campaigns),
			"creative_records": len(out.Creatives),
			"warnings":         len(out.Warnings),
		}).Info("File processed")
	}

	agg := ingest.NewAggregator(s.scorer)
	for _, rec := range campaigns {
		agg.AddCampaign(rec)
	}
	for _, rec := range creatives {
		agg.AddCreative(rec)
	}
	dataset := agg.Finalize(s.processor.Now())

	if err := s.datasets.Replace(ctx, dataset); err != nil {
		return nil, results, fmt.Errorf("failed to replace dataset: %w", err)
	}
	s.metrics.RecordDatasetReplacement()
	s.saveCache(ctx, dataset)

	duration := time.Since(start)
	s.metrics.RecordBatch(duration)

	log.WithFields(map[string]any{
		"duration":    duration,
		"files":       len(files),
		"campaigns":   dataset.Summary.CampaignCount,
		"creatives":   dataset.Summary.CreativeCount,
		"total_spend": dataset.Summary.TotalSpend,
	}).Info("Upload batch completed")

	return dataset, results, nil
}

// ValidateFile inspects a single file without touching the dataset.
func (s *ProcessService) ValidateFile(ctx context.Context, file UploadFile) *domain.ValidationResult {
	res := s.processor.Validate(file.Content)

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"file":      file.Name,
		"valid":     res.IsValid,
		"file_type": res.FileType,
		"rows":      res.RowCount,
	}).Info("File validated")

	return res
}

// Clear replaces the current dataset with an empty one and drops the cache
// entry.
func (s *ProcessService) Clear(ctx context.Context) error {
	log := s.logger.WithContext(ctx)

	if err := s.datasets.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear dataset: %w", err)
	}
	s.metrics.RecordDatasetReplacement()

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.metrics.RecordCacheOperation("clear", "failed")
			log.WithError(err).Warn("Failed to clear dataset cache")
		} else {
			s.metrics.RecordCacheOperation("clear", "success")
		}
	}

	log.Info("Dataset cleared")
	return nil
}

// Restore loads the cached dataset, if any, into the repository. Called
// once at startup; a missing or unreadable cache is not an error.
func (s *ProcessService) Restore(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	log := s.logger.WithContext(ctx)

	dataset, err := s.cache.Load(ctx)
	if err != nil {
		s.metrics.RecordCacheOperation("load", "failed")
		log.WithError(err).Warn("Failed to load dataset cache, starting empty")
		return nil
	}
	if dataset == nil {
		s.metrics.RecordCacheOperation("load", "miss")
		return nil
	}
	s.metrics.RecordCacheOperation("load", "success")

	if err := s.datasets.Replace(ctx, dataset); err != nil {
		return fmt.Errorf("failed to restore cached dataset: %w", err)
	}

	log.WithFields(map[string]any{
		"campaigns": dataset.Summary.CampaignCount,
		"records":   dataset.Summary.RecordCount,
	}).Info("Restored dataset from cache")
	return nil
}

// saveCache persists the dataset opportunistically; a write failure only
// logs, it never fails the batch.
func (s *ProcessService) saveCache(ctx context.Context, dataset *domain.ProcessedDataset) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, dataset); err != nil {
		s.metrics.RecordCacheOperation("save", "failed")
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to persist dataset cache")
		return
	}
	s.metrics.RecordCacheOperation("save", "success")
}
