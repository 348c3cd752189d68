package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"adpulse/internal/domain"
	"adpulse/pkg/logger"
	"adpulse/pkg/metrics"
)

const defaultPageSize = 50

// QueryService serves read-only filter/sort/page queries against the
// current dataset. Queries never mutate the dataset; sorting works on a
// copied slice.
type QueryService struct {
	datasets domain.DatasetRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewQueryService(datasets domain.DatasetRepository, logger *logger.Logger, metrics *metrics.Metrics) *QueryService {
	return &QueryService{
		datasets: datasets,
		logger:   logger,
		metrics:  metrics,
	}
}

// Summary returns the current dataset's top-level rollup together with the
// observed dimension values and date range.
func (s *QueryService) Summary(ctx context.Context) (*domain.ProcessedDataset, error) {
	ds, err := s.datasets.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	s.metrics.RecordQuery("summary")

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"campaigns": ds.Summary.CampaignCount,
		"records":   ds.Summary.RecordCount,
	}).Debug("Serving dataset summary")
	return ds, nil
}

// Campaigns queries the campaign collection.
func (s *QueryService) Campaigns(ctx context.Context, filter domain.Filter) (*domain.PageResult[domain.CampaignAggregate], error) {
	ds, err := s.datasets.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	s.metrics.RecordQuery("campaigns")

	matched := filterSlice(ds.Campaigns, func(c domain.CampaignAggregate) bool {
		return matchesSearch(filter.Search, c.Name, c.ExternalID, c.TargetApp) &&
			matchesExchange(filter.Exchange, c.Exchanges) &&
			matchesValue(filter.Country, c.Countries) &&
			matchesValue(filter.OS, c.OSes) &&
			matchesEquals(filter.App, c.TargetApp) &&
			matchesSpend(filter, c.TotalSpend)
	})
	sortSlice(matched, filter, campaignSortKeys)
	return paginate(matched, filter), nil
}

// Creatives queries the creative collection.
func (s *QueryService) Creatives(ctx context.Context, filter domain.Filter) (*domain.PageResult[domain.CreativeAggregate], error) {
	ds, err := s.datasets.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	s.metrics.RecordQuery("creatives")

	matched := filterSlice(ds.Creatives, func(c domain.CreativeAggregate) bool {
		return matchesSearch(filter.Search, c.Name, c.CampaignName, c.TargetApp) &&
			matchesExchange(filter.Exchange, c.Exchanges) &&
			matchesEquals(filter.App, c.TargetApp) &&
			matchesSpend(filter, c.TotalSpend)
	})
	sortSlice(matched, filter, creativeSortKeys)
	return paginate(matched, filter), nil
}

// Apps queries the app collection.
func (s *QueryService) Apps(ctx context.Context, filter domain.Filter) (*domain.PageResult[domain.AppAggregate], error) {
	ds, err := s.datasets.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	s.metrics.RecordQuery("apps")

	matched := filterSlice(ds.Apps, func(a domain.AppAggregate) bool {
		return matchesSearch(filter.Search, a.AppName, a.AppID) &&
			matchesExchange(filter.Exchange, a.Exchanges) &&
			matchesValue(filter.Country, a.Countries) &&
			matchesSpend(filter, a.TotalSpend)
	})
	sortSlice(matched, filter, appSortKeys)
	return paginate(matched, filter), nil
}

// Exchanges queries the exchange collection.
func (s *QueryService) Exchanges(ctx context.Context, filter domain.Filter) (*domain.PageResult[domain.ExchangeAggregate], error) {
	ds, err := s.datasets.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	s.metrics.RecordQuery("exchanges")

	matched := filterSlice(ds.Exchanges, func(e domain.ExchangeAggregate) bool {
		return matchesSearch(filter.Search, e.Name) &&
			matchesEquals(filter.Exchange, e.Name) &&
			matchesSpend(filter, e.TotalSpend)
	})
	sortSlice(matched, filter, exchangeSortKeys)
	return paginate(matched, filter), nil
}

// Inventory queries the inventory collection.
func (s *QueryService) Inventory(ctx context.Context, filter domain.Filter) (*domain.PageResult[domain.InventoryAggregate], error) {
	ds, err := s.datasets.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	s.metrics.RecordQuery("inventory")

	matched := filterSlice(ds.Inventory, func(i domain.InventoryAggregate) bool {
		return matchesSearch(filter.Search, i.Exchange, i.AppName, i.AppID) &&
			matchesEquals(filter.Exchange, i.Exchange) &&
			matchesEquals(filter.App, i.AppName) &&
			matchesSpend(filter, i.TotalSpend)
	})
	sortSlice(matched, filter, inventorySortKeys)
	return paginate(matched, filter), nil
}

// sortKey extracts a comparable value from an aggregate for one sort field.
type sortKey[T any] struct {
	str func(T) string
	num func(T) float64
}

var campaignSortKeys = map[string]sortKey[domain.CampaignAggregate]{
	"name":        {str: func(c domain.CampaignAggregate) string { return c.Name }},
	"spend":       {num: func(c domain.CampaignAggregate) float64 { return c.TotalSpend }},
	"installs":    {num: func(c domain.CampaignAggregate) float64 { return float64(c.TotalInstalls) }},
	"impressions": {num: func(c domain.CampaignAggregate) float64 { return float64(c.TotalImpressions) }},
	"clicks":      {num: func(c domain.CampaignAggregate) float64 { return float64(c.TotalClicks) }},
	"cpi":         {num: func(c domain.CampaignAggregate) float64 { return c.AvgCPI }},
	"ctr":         {num: func(c domain.CampaignAggregate) float64 { return c.AvgCTR }},
	"cpc":         {num: func(c domain.CampaignAggregate) float64 { return c.AvgCPC }},
	"ipm":         {num: func(c domain.CampaignAggregate) float64 { return c.AvgIPM }},
}

var creativeSortKeys = map[string]sortKey[domain.CreativeAggregate]{
	"name":     {str: func(c domain.CreativeAggregate) string { return c.Name }},
	"campaign": {str: func(c domain.CreativeAggregate) string { return c.CampaignName }},
	"spend":    {num: func(c domain.CreativeAggregate) float64 { return c.TotalSpend }},
	"installs": {num: func(c domain.CreativeAggregate) float64 { return float64(c.TotalInstalls) }},
	"cpi":      {num: func(c domain.CreativeAggregate) float64 { return c.AvgCPI }},
	"ctr":      {num: func(c domain.CreativeAggregate) float64 { return c.AvgCTR }},
}

var appSortKeys = map[string]sortKey[domain.AppAggregate]{
	"name":     {str: func(a domain.AppAggregate) string { return a.AppName }},
	"spend":    {num: func(a domain.AppAggregate) float64 { return a.TotalSpend }},
	"installs": {num: func(a domain.AppAggregate) float64 { return float64(a.TotalInstalls) }},
	"cpi":      {num: func(a domain.AppAggregate) float64 { return a.AvgCPI }},
}

var exchangeSortKeys = map[string]sortKey[domain.ExchangeAggregate]{
	"name":     {str: func(e domain.ExchangeAggregate) string { return e.Name }},
	"spend":    {num: func(e domain.ExchangeAggregate) float64 { return e.TotalSpend }},
	"installs": {num: func(e domain.ExchangeAggregate) float64 { return float64(e.TotalInstalls) }},
}

var inventorySortKeys = map[string]sortKey[domain.InventoryAggregate]{
	"exchange":    {str: func(i domain.InventoryAggregate) string { return i.Exchange }},
	"app":         {str: func(i domain.InventoryAggregate) string { return i.AppName }},
	"spend":       {num: func(i domain.InventoryAggregate) float64 { return i.TotalSpend }},
	"impressions": {num: func(i domain.InventoryAggregate) float64 { return float64(i.TotalImpressions) }},
	"ipm":         {num: func(i domain.InventoryAggregate) float64 { return i.AvgIPM }},
}

func filterSlice[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// sortSlice orders items by the filter's sort key. The sort is stable, so
// ties keep their insertion order; an unknown or empty key leaves the
// insertion order untouched.
func sortSlice[T any](items []T, filter domain.Filter, keys map[string]sortKey[T]) {
	key, ok := keys[filter.SortBy]
	if !ok {
		return
	}
	desc := filter.SortDir == domain.SortDesc
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		if key.str != nil {
			less = key.str(items[i]) < key.str(items[j])
		} else {
			less = key.num(items[i]) < key.num(items[j])
		}
		if desc {
			return !less && !equalKey(key, items[i], items[j])
		}
		return less
	})
}

func equalKey[T any](key sortKey[T], a, b T) bool {
	if key.str != nil {
		return key.str(a) == key.str(b)
	}
	return key.num(a) == key.num(b)
}

// paginate slices one 1-based page out of the filtered, sorted items. Pages
// past the end come back empty.
func paginate[T any](items []T, filter domain.Filter) *domain.PageResult[T] {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = defaultPageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &domain.PageResult[T]{
		Data:       items[start:end],
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
}

func matchesSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func matchesEquals(want, have string) bool {
	return want == "" || want == have
}

func matchesValue(want string, values []string) bool {
	if want == "" {
		return true
	}
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func matchesExchange(want string, details []domain.ExchangeDetail) bool {
	if want == "" {
		return true
	}
	for _, d := range details {
		if d.Exchange == want {
			return true
		}
	}
	return false
}

func matchesSpend(filter domain.Filter, spend float64) bool {
	if filter.MinSpend != nil && spend < *filter.MinSpend {
		return false
	}
	if filter.MaxSpend != nil && spend > *filter.MaxSpend {
		return false
	}
	return true
}
