package ingest

import (
	"sort"
	"time"

	"adpulse/internal/domain"
)

// Aggregator folds a record stream into the five denormalized collections.
// Buckets accumulate running sums only; every derived ratio is computed once
// in Finalize, after the last record has been added, so accumulation order
// can never shift the rounding.
type Aggregator struct {
	campaigns map[string]*campaignBucket
	creatives map[string]*creativeBucket
	apps      map[string]*appBucket
	exchanges map[string]*exchangeBucket
	inventory map[string]*inventoryBucket

	campaignOrder  []string
	creativeOrder  []string
	appOrder       []string
	exchangeOrder  []string
	inventoryOrder []string

	countries map[string]bool
	appNames  map[string]bool
	exchSet   map[string]bool
	oses      map[string]bool

	minDate, maxDate string
	recordCount      int

	scorer domain.QualityScorer
}

type campaignBucket struct {
	name, externalID, targetApp string
	countries, oses             map[string]bool
	totals                      domain.Totals
	byExchange                  map[string]*domain.Totals
	exchangeOrder               []string
}

type creativeBucket struct {
	name, externalID                   string
	campaignName, campaignID, targetApp string
	totals                             domain.Totals
	byExchange                         map[string]*domain.Totals
	exchangeOrder                      []string
}

type appBucket struct {
	appID, appName string
	countries      map[string]bool
	campaigns      map[string]bool
	campaignOrder  []string
	totals         domain.Totals
	byExchange     map[string]*domain.Totals
	exchangeOrder  []string
}

type exchangeBucket struct {
	name     string
	totals   domain.Totals
	byApp    map[string]*domain.AppDetail
	appOrder []string
}

type inventoryBucket struct {
	exchange, appID, appName string
	totals                   domain.Totals
}

// NewAggregator returns an empty aggregator. The scorer may be nil, in
// which case inventory quality fields stay unset.
func NewAggregator(scorer domain.QualityScorer) *Aggregator {
	return &Aggregator{
		campaigns: make(map[string]*campaignBucket),
		creatives: make(map[string]*creativeBucket),
		apps:      make(map[string]*appBucket),
		exchanges: make(map[string]*exchangeBucket),
		inventory: make(map[string]*inventoryBucket),
		countries: make(map[string]bool),
		appNames:  make(map[string]bool),
		exchSet:   make(map[string]bool),
		oses:      make(map[string]bool),
		scorer:    scorer,
	}
}

// AddCampaign folds one campaign record into the campaign, app, exchange
// and inventory collections.
func (a *Aggregator) AddCampaign(rec domain.CampaignRecord) {
	a.recordCount++
	a.trackDate(rec.Date)
	for _, c := range rec.Countries {
		a.countries[c] = true
	}
	if rec.OS != "" {
		a.oses[rec.OS] = true
	}
	if rec.TargetApp != "" {
		a.appNames[rec.TargetApp] = true
	}
	if rec.Exchange != "" {
		a.exchSet[rec.Exchange] = true
	}

	key := domain.CampaignKey(rec.Name, rec.ExternalID)
	cb, ok := a.campaigns[key]
	if !ok {
		cb = &campaignBucket{
			name:       rec.Name,
			externalID: rec.ExternalID,
			targetApp:  rec.TargetApp,
			countries:  make(map[string]bool),
			oses:       make(map[string]bool),
			byExchange: make(map[string]*domain.Totals),
		}
		a.campaigns[key] = cb
		a.campaignOrder = append(a.campaignOrder, key)
	}
	if cb.targetApp == "" {
		cb.targetApp = rec.TargetApp
	}
	cb.totals.Add(rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)
	for _, c := range rec.Countries {
		cb.countries[c] = true
	}
	if rec.OS != "" {
		cb.oses[rec.OS] = true
	}
	addExchangeDetail(cb.byExchange, &cb.exchangeOrder, rec.Exchange, rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)

	a.addApp(rec)
	a.addExchange(rec)
	a.addInventory(rec)
}

// AddCreative folds one creative record into the creatives collection. The
// campaign side of the same input row arrives separately via AddCampaign.
func (a *Aggregator) AddCreative(rec domain.CreativeRecord) {
	key := domain.CampaignKey(rec.Name, rec.ExternalID)
	cb, ok := a.creatives[key]
	if !ok {
		cb = &creativeBucket{
			name:         rec.Name,
			externalID:   rec.ExternalID,
			campaignName: rec.CampaignName,
			campaignID:   rec.CampaignID,
			targetApp:    rec.TargetApp,
			byExchange:   make(map[string]*domain.Totals),
		}
		a.creatives[key] = cb
		a.creativeOrder = append(a.creativeOrder, key)
	}
	cb.totals.Add(rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)
	addExchangeDetail(cb.byExchange, &cb.exchangeOrder, rec.Exchange, rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)
}

func (a *Aggregator) addApp(rec domain.CampaignRecord) {
	appID := appIdentity(rec)
	if appID == "" {
		return
	}
	ab, ok := a.apps[appID]
	if !ok {
		ab = &appBucket{
			appID:      appID,
			appName:    rec.TargetApp,
			countries:  make(map[string]bool),
			campaigns:  make(map[string]bool),
			byExchange: make(map[string]*domain.Totals),
		}
		a.apps[appID] = ab
		a.appOrder = append(a.appOrder, appID)
	}
	if ab.appName == "" {
		ab.appName = rec.TargetApp
	}
	ab.totals.Add(rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)
	for _, c := range rec.Countries {
		ab.countries[c] = true
	}
	if !ab.campaigns[rec.Name] {
		ab.campaigns[rec.Name] = true
		ab.campaignOrder = append(ab.campaignOrder, rec.Name)
	}
	addExchangeDetail(ab.byExchange, &ab.exchangeOrder, rec.Exchange, rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)
}

func (a *Aggregator) addExchange(rec domain.CampaignRecord) {
	if rec.Exchange == "" {
		return
	}
	eb, ok := a.exchanges[rec.Exchange]
	if !ok {
		eb = &exchangeBucket{
			name:  rec.Exchange,
			byApp: make(map[string]*domain.AppDetail),
		}
		a.exchanges[rec.Exchange] = eb
		a.exchangeOrder = append(a.exchangeOrder, rec.Exchange)
	}
	eb.totals.Add(rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)

	appID := appIdentity(rec)
	if appID == "" {
		return
	}
	detail, ok := eb.byApp[appID]
	if !ok {
		detail = &domain.AppDetail{AppID: appID, AppName: rec.TargetApp}
		eb.byApp[appID] = detail
		eb.appOrder = append(eb.appOrder, appID)
	}
	if detail.AppName == "" {
		detail.AppName = rec.TargetApp
	}
	detail.Add(rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)
}

func (a *Aggregator) addInventory(rec domain.CampaignRecord) {
	appID := appIdentity(rec)
	if rec.Exchange == "" || appID == "" {
		return
	}
	key := rec.Exchange + "|" + appID
	ib, ok := a.inventory[key]
	if !ok {
		ib = &inventoryBucket{exchange: rec.Exchange, appID: appID, appName: rec.TargetApp}
		a.inventory[key] = ib
		a.inventoryOrder = append(a.inventoryOrder, key)
	}
	if ib.appName == "" {
		ib.appName = rec.TargetApp
	}
	ib.totals.Add(rec.Spend, rec.Installs, rec.Impressions, rec.Clicks, rec.Actions)
}

// Finalize computes every bucket's derived metrics, assembles the dataset
// and resolves the observed dimension sets and date range. The aggregator
// must not be fed further records afterwards.
func (a *Aggregator) Finalize(now time.Time) *domain.ProcessedDataset {
	day := now.Format(dayFormat)
	ds := domain.EmptyDataset(day)

	for _, key := range a.campaignOrder {
		cb := a.campaigns[key]
		agg := domain.CampaignAggregate{
			Name:       cb.name,
			ExternalID: cb.externalID,
			TargetApp:  cb.targetApp,
			Countries:  sortedKeys(cb.countries),
			OSes:       sortedKeys(cb.oses),
			Totals:     cb.totals,
			Exchanges:  exchangeDetails(cb.byExchange, cb.exchangeOrder),
		}
		agg.DerivedMetrics = cb.totals.Derive()
		ds.Campaigns = append(ds.Campaigns, agg)
	}

	for _, key := range a.creativeOrder {
		cb := a.creatives[key]
		agg := domain.CreativeAggregate{
			Name:         cb.name,
			ExternalID:   cb.externalID,
			CampaignName: cb.campaignName,
			CampaignID:   cb.campaignID,
			CampaignKey:  domain.CampaignKey(cb.campaignName, cb.campaignID),
			TargetApp:    cb.targetApp,
			Totals:       cb.totals,
			Exchanges:    exchangeDetails(cb.byExchange, cb.exchangeOrder),
		}
		agg.DerivedMetrics = cb.totals.Derive()
		ds.Creatives = append(ds.Creatives, agg)
	}

	for _, key := range a.appOrder {
		ab := a.apps[key]
		agg := domain.AppAggregate{
			AppID:     ab.appID,
			AppName:   ab.appName,
			Countries: sortedKeys(ab.countries),
			Campaigns: append([]string(nil), ab.campaignOrder...),
			Totals:    ab.totals,
			Exchanges: exchangeDetails(ab.byExchange, ab.exchangeOrder),
		}
		agg.DerivedMetrics = ab.totals.Derive()
		ds.Apps = append(ds.Apps, agg)
	}

	for _, key := range a.exchangeOrder {
		eb := a.exchanges[key]
		agg := domain.ExchangeAggregate{
			Name:   eb.name,
			Totals: eb.totals,
			Apps:   make([]domain.AppDetail, 0, len(eb.appOrder)),
		}
		for _, appID := range eb.appOrder {
			agg.Apps = append(agg.Apps, *eb.byApp[appID])
		}
		agg.DerivedMetrics = eb.totals.Derive()
		ds.Exchanges = append(ds.Exchanges, agg)
	}

	for _, key := range a.inventoryOrder {
		ib := a.inventory[key]
		agg := domain.InventoryAggregate{
			Exchange: ib.exchange,
			AppID:    ib.appID,
			AppName:  ib.appName,
			Totals:   ib.totals,
		}
		agg.DerivedMetrics = ib.totals.Derive()
		if a.scorer != nil {
			if q := a.scorer.Score(ib.exchange, ib.appID, ib.totals); q != nil {
				score, fraud := q.Score, q.FraudRate
				agg.QualityScore = &score
				agg.FraudRate = &fraud
			}
		}
		ds.Inventory = append(ds.Inventory, agg)
	}

	ds.Countries = sortedKeys(a.countries)
	ds.AppNames = sortedKeys(a.appNames)
	ds.ExchangeNames = sortedKeys(a.exchSet)
	ds.OSes = sortedKeys(a.oses)

	if a.minDate != "" {
		ds.DateRange = domain.DateRange{Start: a.minDate, End: a.maxDate}
	}

	ds.Summary = a.summarize(ds)
	return ds
}

// summarize sums the campaign collection's bucket totals into the grand
// total; records already folded into buckets are never re-counted.
func (a *Aggregator) summarize(ds *domain.ProcessedDataset) domain.Summary {
	s := domain.Summary{
		CampaignCount:  len(ds.Campaigns),
		CreativeCount:  len(ds.Creatives),
		AppCount:       len(ds.Apps),
		ExchangeCount:  len(ds.Exchanges),
		InventoryCount: len(ds.Inventory),
		RecordCount:    a.recordCount,
	}
	for _, c := range ds.Campaigns {
		s.TotalSpend += c.TotalSpend
		s.TotalInstalls += c.TotalInstalls
		s.TotalImpressions += c.TotalImpressions
		s.TotalClicks += c.TotalClicks
		s.TotalActions += c.TotalActions
	}
	s.DerivedMetrics = s.Totals.Derive()
	return s
}

func (a *Aggregator) trackDate(date string) {
	if date == "" {
		return
	}
	if a.minDate == "" || date < a.minDate {
		a.minDate = date
	}
	if a.maxDate == "" || date > a.maxDate {
		a.maxDate = date
	}
}

// appIdentity keys the app and inventory collections by the external app
// identifier, falling back to the display name when no ID column mapped.
// Records with neither contribute to no app-keyed collection.
func appIdentity(rec domain.CampaignRecord) string {
	if rec.AppID != "" {
		return rec.AppID
	}
	return rec.TargetApp
}

func addExchangeDetail(byExchange map[string]*domain.Totals, order *[]string, exchange string, spend float64, installs, impressions, clicks, actions int) {
	if exchange == "" {
		return
	}
	t, ok := byExchange[exchange]
	if !ok {
		t = &domain.Totals{}
		byExchange[exchange] = t
		*order = append(*order, exchange)
	}
	t.Add(spend, installs, impressions, clicks, actions)
}

func exchangeDetails(byExchange map[string]*domain.Totals, order []string) []domain.ExchangeDetail {
	details := make([]domain.ExchangeDetail, 0, len(order))
	for _, name := range order {
		details = append(details, domain.ExchangeDetail{Exchange: name, Totals: *byExchange[name]})
	}
	return details
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
