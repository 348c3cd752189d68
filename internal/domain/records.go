package domain

// CampaignRecord is one fact-granularity row built from a report line.
// CPI and CTR are always recomputed from spend/installs and
// clicks/impressions so they stay consistent with the sums even when the
// source file carries its own (possibly stale) ratio columns.
type CampaignRecord struct {
	Date        string   `json:"date"`
	Name        string   `json:"name"`
	ExternalID  string   `json:"external_id"`
	TargetApp   string   `json:"target_app"`
	AppID       string   `json:"app_id"`
	Countries   []string `json:"countries"`
	OS          string   `json:"os"`
	Exchange    string   `json:"exchange"`
	Spend       float64  `json:"spend"`
	Installs    int      `json:"installs"`
	Actions     int      `json:"actions"`
	Impressions int      `json:"impressions"`
	Clicks      int      `json:"clicks"`
	CPI         float64  `json:"cpi"`
	CTR         float64  `json:"ctr"`
}

// CreativeRecord is one creative-level row. Creative reports repeat the
// campaign context per line, so a single input row can yield both a
// CampaignRecord and a CreativeRecord.
type CreativeRecord struct {
	Date         string  `json:"date"`
	Name         string  `json:"name"`
	ExternalID   string  `json:"external_id"`
	CampaignName string  `json:"campaign_name"`
	CampaignID   string  `json:"campaign_id"`
	TargetApp    string  `json:"target_app"`
	Exchange     string  `json:"exchange"`
	Spend        float64 `json:"spend"`
	Installs     int     `json:"installs"`
	Actions      int     `json:"actions"`
	Impressions  int     `json:"impressions"`
	Clicks       int     `json:"clicks"`
	CPI          float64 `json:"cpi"`
	CTR          float64 `json:"ctr"`
}

// CampaignKey is the canonical composite identity for a campaign. Distinct
// external IDs with identical names are distinct campaigns, and creative
// aggregates link back to campaigns through this key only.
func CampaignKey(name, externalID string) string {
	return name + "|" + externalID
}
