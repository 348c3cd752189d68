package ingest

import (
	"fmt"
	"strings"
	"time"

	"adpulse/internal/domain"
)

// sourcePatterns maps campaign-name keywords to an inferred traffic source,
// used only when no exchange-like column mapped. Advisory metadata, not
// ground truth.
var sourcePatterns = []struct {
	keywords []string
	source   string
}{
	{[]string{"meta", "facebook", "instagram"}, "Meta Ads"},
	{[]string{"google", "adwords"}, "Google Ads"},
	{[]string{"tiktok"}, "TikTok Ads"},
	{[]string{"unity"}, "Unity Ads"},
	{[]string{"snapchat"}, "Snapchat Ads"},
}

const unknownSource = "Unknown Source"

// InferSource guesses the buying source from keywords in a campaign name.
func InferSource(name string) string {
	lower := strings.ToLower(name)
	for _, p := range sourcePatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.source
			}
		}
	}
	return unknownSource
}

// BuildRecords turns one data row into at most one CampaignRecord and, for
// creative-bearing reports, at most one CreativeRecord. A record is emitted
// only when the row names something and carries at least one positive
// metric; anything else is dropped without a warning as deliberate noise
// filtering. Returned warnings cover tolerated cell failures, not drops.
func BuildRecords(row []string, cm ColumnMap, fileType domain.FileType, now time.Time) (*domain.CampaignRecord, *domain.CreativeRecord, []string) {
	var warnings []string

	money := func(f Field) float64 {
		raw := cm.Cell(row, f)
		v, ok := ParseMoney(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unparseable %s value %q, using 0", f, raw))
		}
		return v
	}
	count := func(f Field) int {
		raw := cm.Cell(row, f)
		v, ok := ParseCount(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unparseable %s value %q, using 0", f, raw))
		}
		return v
	}

	name := strings.TrimSpace(cm.Cell(row, FieldCampaignName))
	if name == "" && isInventory(fileType) {
		// Inventory reports are app-level; the app stands in as the name.
		name = strings.TrimSpace(cm.Cell(row, FieldAppName))
	}

	spend := money(FieldSpend)
	installs := count(FieldInstalls)
	impressions := count(FieldImpressions)
	if impressions == 0 && isInventory(fileType) && cm.Has(FieldTraffic) {
		// Inventory reports carry their bought volume in the traffic column.
		impressions = count(FieldTraffic)
	}
	clicks := count(FieldClicks)
	actions := count(FieldActions)

	if name == "" || (spend <= 0 && installs <= 0 && impressions <= 0) {
		return nil, nil, warnings
	}

	date := now.Format(dayFormat)
	if rawDate := strings.TrimSpace(cm.Cell(row, FieldDate)); rawDate != "" {
		var ok bool
		date, ok = ParseDate(rawDate, now)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unparseable date %q, using %s", rawDate, date))
		}
	}

	exchange := strings.TrimSpace(cm.Cell(row, FieldExchange))
	if exchange == "" {
		exchange = InferSource(name)
	}

	campaign := &domain.CampaignRecord{
		Date:        date,
		Name:        name,
		ExternalID:  strings.TrimSpace(cm.Cell(row, FieldCampaignID)),
		TargetApp:   strings.TrimSpace(cm.Cell(row, FieldAppName)),
		AppID:       strings.TrimSpace(cm.Cell(row, FieldAppID)),
		Countries:   splitList(cm.Cell(row, FieldCountry)),
		OS:          strings.TrimSpace(cm.Cell(row, FieldOS)),
		Exchange:    exchange,
		Spend:       spend,
		Installs:    installs,
		Actions:     actions,
		Impressions: impressions,
		Clicks:      clicks,
	}
	if campaign.TargetApp == "" {
		// No display name; the identifier stands in for it.
		campaign.TargetApp = campaign.AppID
	}
	campaign.CPI, campaign.CTR = rowRatios(spend, installs, clicks, impressions)

	var creative *domain.CreativeRecord
	if fileType == domain.FileTypeCreative {
		creativeName := strings.TrimSpace(cm.Cell(row, FieldCreativeName))
		if creativeName != "" {
			creative = &domain.CreativeRecord{
				Date:         date,
				Name:         creativeName,
				ExternalID:   strings.TrimSpace(cm.Cell(row, FieldCreativeID)),
				CampaignName: campaign.Name,
				CampaignID:   campaign.ExternalID,
				TargetApp:    campaign.TargetApp,
				Exchange:     exchange,
				Spend:        spend,
				Installs:     installs,
				Actions:      actions,
				Impressions:  impressions,
				Clicks:       clicks,
			}
			creative.CPI, creative.CTR = campaign.CPI, campaign.CTR
		}
	}

	return campaign, creative, warnings
}

func isInventory(ft domain.FileType) bool {
	return ft == domain.FileTypeInventoryDaily || ft == domain.FileTypeInventoryOverall
}

// rowRatios computes first-order per-row metrics, always from the row's own
// spend and counts.
func rowRatios(spend float64, installs, clicks, impressions int) (cpi, ctr float64) {
	if installs > 0 {
		cpi = spend / float64(installs)
	}
	if impressions > 0 {
		ctr = float64(clicks) / float64(impressions) * 100
	}
	return cpi, ctr
}

// splitList splits a multi-valued cell (e.g. "US, GB") into trimmed parts.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(ch rune) bool {
		return ch == ',' || ch == ';' || ch == '|'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
