package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/domain"
	"adpulse/internal/infrastructure"
	"adpulse/internal/ingest"
	"adpulse/pkg/logger"
	"adpulse/pkg/metrics"
)

// Prometheus collectors register globally, so the whole package shares one
// Metrics instance.
var (
	testMetrics = metrics.New()
	testLogger  = logger.New("error")
	testNow     = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
)

func newTestProcessService(cache domain.DatasetCache) (*ProcessService, *infrastructure.DatasetRepository) {
	processor := ingest.NewFileProcessor()
	processor.Now = func() time.Time { return testNow }
	repo := infrastructure.NewDatasetRepository(testLogger)
	svc := NewProcessService(processor, repo, cache, nil, testLogger, testMetrics)
	return svc, repo
}

func TestProcessBatchMergesFilesIntoOneBucket(t *testing.T) {
	svc, _ := newTestProcessService(nil)

	files := []UploadFile{
		{Name: "jan.csv", Content: []byte("Date,Campaign Name,Spend,Installs\n2025-01-01,Summer Sale,100.00,20\n")},
		{Name: "feb.csv", Content: []byte("Date,Campaign Name,Spend,Installs\n2025-02-01,Summer Sale,50.00,10\n")},
	}

	ds, results, err := svc.ProcessBatch(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.True(t, results[1].Valid)
	assert.Equal(t, 1, results[0].CampaignRecords)

	require.Len(t, ds.Campaigns, 1)
	assert.Equal(t, 150.0, ds.Campaigns[0].TotalSpend)
	assert.Equal(t, 30, ds.Campaigns[0].TotalInstalls)
	assert.Equal(t, 5.0, ds.Campaigns[0].AvgCPI)
	assert.Equal(t, domain.DateRange{Start: "2025-01-01", End: "2025-02-01"}, ds.DateRange)
}

func TestProcessBatchIsolatesFailingFile(t *testing.T) {
	svc, repo := newTestProcessService(nil)

	files := []UploadFile{
		{Name: "good.csv", Content: []byte("Date,Campaign Name,Spend,Installs\n2025-01-01,Summer Sale,100.00,20\n")},
		{Name: "bad.csv", Content: []byte("foo,bar\n1,2\n")},
	}

	ds, results, err := svc.ProcessBatch(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.NotEmpty(t, results[1].Errors)

	require.Len(t, ds.Campaigns, 1)

	current, err := repo.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ds, current)
}

func TestProcessBatchReplacesWholesale(t *testing.T) {
	svc, repo := newTestProcessService(nil)
	ctx := context.Background()

	_, _, err := svc.ProcessBatch(ctx, []UploadFile{
		{Name: "a.csv", Content: []byte("Date,Campaign Name,Spend,Installs\n2025-01-01,Alpha,10,1\n")},
	})
	require.NoError(t, err)

	_, _, err = svc.ProcessBatch(ctx, []UploadFile{
		{Name: "b.csv", Content: []byte("Date,Campaign Name,Spend,Installs\n2025-01-01,Beta,20,2\n")},
	})
	require.NoError(t, err)

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	require.Len(t, current.Campaigns, 1)
	assert.Equal(t, "Beta", current.Campaigns[0].Name)
}

func TestClearEmptiesDataset(t *testing.T) {
	svc, repo := newTestProcessService(nil)
	ctx := context.Background()

	_, _, err := svc.ProcessBatch(ctx, []UploadFile{
		{Name: "a.csv", Content: []byte("Date,Campaign Name,Spend,Installs\n2025-01-01,Alpha,10,1\n")},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Campaigns)
	assert.Zero(t, current.Summary.TotalSpend)
}

func TestValidateFileDoesNotTouchDataset(t *testing.T) {
	svc, repo := newTestProcessService(nil)
	ctx := context.Background()

	res := svc.ValidateFile(ctx, UploadFile{
		Name:    "a.csv",
		Content: []byte("Date,Campaign Name,Spend,Installs\n2025-01-01,Alpha,10,1\n"),
	})
	assert.True(t, res.IsValid)

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Campaigns)
}

func TestCacheRoundTripAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := infrastructure.NewSQLiteDatasetCache(path, testLogger)
	require.NoError(t, err)

	svc, _ := newTestProcessService(cache)
	ds, _, err := svc.ProcessBatch(ctx, []UploadFile{
		{Name: "a.csv", Content: []byte("Date,Campaign Name,Exchange,Country,Spend,Installs,Impressions,Clicks\n" +
			"2025-01-01,Summer Sale,AppLovin,\"US, CA\",100.00,20,1000,50\n")},
	})
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	// Simulate a restart: fresh cache handle, fresh repository.
	cache, err = infrastructure.NewSQLiteDatasetCache(path, testLogger)
	require.NoError(t, err)
	defer cache.Close()

	svc2, repo2 := newTestProcessService(cache)
	require.NoError(t, svc2.Restore(ctx))

	restored, err := repo2.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds, restored)
}

func TestRestoreWithoutCacheIsNoop(t *testing.T) {
	svc, repo := newTestProcessService(nil)
	ctx := context.Background()

	require.NoError(t, svc.Restore(ctx))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Campaigns)
}

func TestRestoreEmptyCacheStartsEmpty(t *testing.T) {
	ctx := context.Background()
	cache, err := infrastructure.NewSQLiteDatasetCache(filepath.Join(t.TempDir(), "cache.db"), testLogger)
	require.NoError(t, err)
	defer cache.Close()

	svc, repo := newTestProcessService(cache)
	require.NoError(t, svc.Restore(ctx))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Campaigns)
}
