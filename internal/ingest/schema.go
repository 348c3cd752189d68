package ingest

import (
	"strings"

	"adpulse/internal/domain"
)

// Field is a canonical semantic field a report column can map onto.
type Field string

const (
	FieldDate         Field = "date"
	FieldSpend        Field = "spend"
	FieldInstalls     Field = "installs"
	FieldImpressions  Field = "impressions"
	FieldClicks       Field = "clicks"
	FieldActions      Field = "actions"
	FieldCampaignID   Field = "campaign_id"
	FieldCampaignName Field = "campaign_name"
	FieldCreativeID   Field = "creative_id"
	FieldCreativeName Field = "creative_name"
	FieldAppID        Field = "app_id"
	FieldAppName      Field = "app_name"
	FieldCountry      Field = "country"
	FieldOS           Field = "os"
	FieldExchange     Field = "exchange"
	FieldTraffic      Field = "traffic"
)

// ColumnMap maps canonical fields to zero-based column indexes of one
// file's header. An unmapped field is simply absent; consumers read absence
// as "use the default", never as an error.
type ColumnMap map[Field]int

// Has reports whether the field matched any header.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Cell returns the row's value for a field, or "" when the field is
// unmapped or the row is too short.
func (m ColumnMap) Cell(row []string, f Field) string {
	idx, ok := m[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// fieldAliases lists acceptable header substrings per field in priority
// order. The first alias that matches any header wins the field.
var fieldAliases = map[Field][]string{
	FieldDate:         {"date", "day"},
	FieldSpend:        {"spend", "cost", "amount", "revenue"},
	FieldInstalls:     {"install", "conversion"},
	FieldImpressions:  {"impression", "imps"},
	FieldClicks:       {"click"},
	FieldActions:      {"action", "event"},
	FieldCampaignID:   {"campaignid", "campaignexternalid", "externalid", "cid"},
	FieldCampaignName: {"campaignname", "campaigntitle", "campaign"},
	FieldCreativeID:   {"creativeid", "adid"},
	FieldCreativeName: {"creativename", "creative", "adname"},
	FieldAppID:        {"appid", "bundleid", "packagename", "storeid"},
	FieldAppName:      {"appname", "apptitle", "app", "application"},
	FieldCountry:      {"country", "geo", "region"},
	FieldOS:           {"os", "platform", "devicetype"},
	FieldExchange:     {"exchange", "source", "network", "channel"},
	FieldTraffic:      {"inventorytraffic", "traffic"},
}

// sniffOrder fixes the order fields claim headers in, so specific fields
// (creative_id, app_id) win their columns before looser aliases get a turn.
var sniffOrder = []Field{
	FieldDate, FieldSpend, FieldInstalls, FieldImpressions, FieldClicks,
	FieldActions, FieldTraffic, FieldCreativeID, FieldCreativeName,
	FieldAppID, FieldAppName, FieldCampaignID, FieldCampaignName,
	FieldCountry, FieldOS, FieldExchange,
}

// NormalizeHeader lowercases a header cell, replaces spaces with
// underscores and strips everything that is not a letter, digit or
// underscore.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	for _, ch := range h {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '_':
			b.WriteRune(ch)
		case ch == ' ' || ch == '-':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Sniff classifies a header row and maps canonical fields onto column
// indexes. Matching is tolerant: a header matches an alias when it contains
// the alias as a substring after underscores are stripped from both sides.
// Each header column is claimed by at most one field.
func Sniff(headers []string) (domain.FileType, ColumnMap) {
	bare := make([]string, len(headers))
	for i, h := range headers {
		bare[i] = strings.ReplaceAll(NormalizeHeader(h), "_", "")
	}

	cm := make(ColumnMap)
	claimed := make(map[int]bool)
	for _, field := range sniffOrder {
		for _, alias := range fieldAliases[field] {
			found := -1
			for i, h := range bare {
				if !claimed[i] && h != "" && strings.Contains(h, alias) {
					found = i
					break
				}
			}
			if found >= 0 {
				cm[field] = found
				claimed[found] = true
				break
			}
		}
	}

	return detectType(cm), cm
}

// detectType decides the report shape from which fields mapped. An
// inventory-traffic column marks an inventory report, split daily/overall
// by the presence of a date column. A campaign name plus at least one
// metric column marks a campaign report, creative-bearing when a creative
// name also mapped. Anything else is unknown.
func detectType(cm ColumnMap) domain.FileType {
	if cm.Has(FieldTraffic) {
		if cm.Has(FieldDate) {
			return domain.FileTypeInventoryDaily
		}
		return domain.FileTypeInventoryOverall
	}

	hasMetric := cm.Has(FieldSpend) || cm.Has(FieldInstalls) || cm.Has(FieldImpressions)
	if cm.Has(FieldCampaignName) && hasMetric {
		if cm.Has(FieldCreativeName) {
			return domain.FileTypeCreative
		}
		return domain.FileTypeCampaign
	}

	return domain.FileTypeUnknown
}
