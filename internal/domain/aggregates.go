package domain

// Totals holds the running sums of an aggregate bucket. Sums only grow
// during an aggregation pass; derived ratios live in DerivedMetrics and are
// computed once, after all records have been folded in.
type Totals struct {
	TotalSpend       float64 `json:"total_spend"`
	TotalInstalls    int     `json:"total_installs"`
	TotalImpressions int     `json:"total_impressions"`
	TotalClicks      int     `json:"total_clicks"`
	TotalActions     int     `json:"total_actions"`
}

// Add folds one record's metrics into the running sums.
func (t *Totals) Add(spend float64, installs, impressions, clicks, actions int) {
	t.TotalSpend += spend
	t.TotalInstalls += installs
	t.TotalImpressions += impressions
	t.TotalClicks += clicks
	t.TotalActions += actions
}

// DerivedMetrics are the second-order ratios of a bucket. Each depends only
// on the bucket's own totals, so finalization order never matters.
type DerivedMetrics struct {
	AvgCPI float64 `json:"avg_cpi"`
	AvgCTR float64 `json:"avg_ctr"`
	AvgCPC float64 `json:"avg_cpc"`
	AvgIPM float64 `json:"avg_ipm"`
}

// Derive computes the ratio metrics for a set of totals, guarding every
// division by zero with a zero result.
func (t Totals) Derive() DerivedMetrics {
	var d DerivedMetrics
	if t.TotalInstalls > 0 {
		d.AvgCPI = t.TotalSpend / float64(t.TotalInstalls)
	}
	if t.TotalImpressions > 0 {
		d.AvgCTR = float64(t.TotalClicks) / float64(t.TotalImpressions) * 100
		d.AvgIPM = float64(t.TotalInstalls) / float64(t.TotalImpressions) * 1000
	}
	if t.TotalClicks > 0 {
		d.AvgCPC = t.TotalSpend / float64(t.TotalClicks)
	}
	return d
}

// ExchangeDetail is the per-exchange breakout nested inside campaign, app
// and creative aggregates.
type ExchangeDetail struct {
	Exchange string `json:"exchange"`
	Totals
}

// AppDetail is the per-app breakout nested inside exchange aggregates.
type AppDetail struct {
	AppID   string `json:"app_id"`
	AppName string `json:"app_name"`
	Totals
}

// CampaignAggregate is one row of the campaigns collection, keyed by
// name + external ID.
type CampaignAggregate struct {
	Name       string   `json:"name"`
	ExternalID string   `json:"external_id"`
	TargetApp  string   `json:"target_app"`
	Countries  []string `json:"countries"`
	OSes       []string `json:"oses"`
	Totals
	DerivedMetrics
	Exchanges []ExchangeDetail `json:"exchanges"`
}

// Key returns the bucket identity of the aggregate.
func (a CampaignAggregate) Key() string { return CampaignKey(a.Name, a.ExternalID) }

// CreativeAggregate is one row of the creatives collection, keyed by
// name + external ID and linked to its campaign by composite key.
type CreativeAggregate struct {
	Name         string `json:"name"`
	ExternalID   string `json:"external_id"`
	CampaignName string `json:"campaign_name"`
	CampaignID   string `json:"campaign_id"`
	CampaignKey  string `json:"campaign_key"`
	TargetApp    string `json:"target_app"`
	Totals
	DerivedMetrics
	Exchanges []ExchangeDetail `json:"exchanges"`
}

// AppAggregate is one row of the apps collection, keyed by the external app
// identifier.
type AppAggregate struct {
	AppID     string   `json:"app_id"`
	AppName   string   `json:"app_name"`
	Countries []string `json:"countries"`
	Campaigns []string `json:"campaigns"`
	Totals
	DerivedMetrics
	Exchanges []ExchangeDetail `json:"exchanges"`
}

// ExchangeAggregate is one row of the exchanges collection, keyed by the
// exchange name.
type ExchangeAggregate struct {
	Name string `json:"name"`
	Totals
	DerivedMetrics
	Apps []AppDetail `json:"apps"`
}

// InventoryAggregate is one row of the inventory collection: a specific
// (exchange, app) traffic source. QualityScore and FraudRate are populated
// only when a QualityScorer supplies them; nil means "not computed".
type InventoryAggregate struct {
	Exchange string `json:"exchange"`
	AppID    string `json:"app_id"`
	AppName  string `json:"app_name"`
	Totals
	DerivedMetrics
	QualityScore *float64 `json:"quality_score,omitempty"`
	FraudRate    *float64 `json:"fraud_rate,omitempty"`
}

// Key returns the composite (exchange, app) identity of the traffic source.
func (a InventoryAggregate) Key() string { return a.Exchange + "|" + a.AppID }

// Summary is the single top-level rollup of a dataset. Its totals are summed
// from the campaign collection's bucket totals, never re-summed from raw
// records.
type Summary struct {
	Totals
	DerivedMetrics
	CampaignCount  int `json:"campaign_count"`
	CreativeCount  int `json:"creative_count"`
	AppCount       int `json:"app_count"`
	ExchangeCount  int `json:"exchange_count"`
	InventoryCount int `json:"inventory_count"`
	RecordCount    int `json:"record_count"`
}

// DateRange is the min/max record date of a dataset in YYYY-MM-DD form.
// Both ends default to the processing date when the dataset is empty.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ProcessedDataset is the owned result of one processing run. It is replaced
// wholesale on every upload or clear, never patched in place.
type ProcessedDataset struct {
	Campaigns []CampaignAggregate  `json:"campaigns"`
	Creatives []CreativeAggregate  `json:"creatives"`
	Apps      []AppAggregate       `json:"apps"`
	Exchanges []ExchangeAggregate  `json:"exchanges"`
	Inventory []InventoryAggregate `json:"inventory"`

	Countries     []string `json:"countries"`
	AppNames      []string `json:"app_names"`
	ExchangeNames []string `json:"exchange_names"`
	OSes          []string `json:"oses"`

	DateRange DateRange `json:"date_range"`
	Summary   Summary   `json:"summary"`
}

// EmptyDataset returns a dataset with no aggregates and a date range pinned
// to the given day.
func EmptyDataset(day string) *ProcessedDataset {
	return &ProcessedDataset{
		Campaigns: []CampaignAggregate{},
		Creatives: []CreativeAggregate{},
		Apps:      []AppAggregate{},
		Exchanges: []ExchangeAggregate{},
		Inventory: []InventoryAggregate{},

		Countries:     []string{},
		AppNames:      []string{},
		ExchangeNames: []string{},
		OSes:          []string{},

		DateRange: DateRange{Start: day, End: day},
	}
}
