package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/domain"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "campaign_name", NormalizeHeader("Campaign Name"))
	assert.Equal(t, "spend_usd", NormalizeHeader("  Spend (USD) "))
	assert.Equal(t, "install_rate", NormalizeHeader("Install-Rate"))
	assert.Equal(t, "os", NormalizeHeader("OS"))
}

func TestSniffCampaignReport(t *testing.T) {
	headers := []string{"date", "campaign_name", "app_name", "country", "spend", "installs"}
	fileType, cm := Sniff(headers)

	require.Equal(t, domain.FileTypeCampaign, fileType)
	assert.Equal(t, 0, cm[FieldDate])
	assert.Equal(t, 1, cm[FieldCampaignName])
	assert.Equal(t, 2, cm[FieldAppName])
	assert.Equal(t, 3, cm[FieldCountry])
	assert.Equal(t, 4, cm[FieldSpend])
	assert.Equal(t, 5, cm[FieldInstalls])
	assert.False(t, cm.Has(FieldExchange))
	assert.False(t, cm.Has(FieldImpressions))
}

func TestSniffAliasPriority(t *testing.T) {
	// "Cost" only maps to spend when nothing matches the "spend" alias.
	_, cm := Sniff([]string{"campaign", "cost", "installs"})
	assert.Equal(t, 1, cm[FieldSpend])

	_, cm = Sniff([]string{"campaign", "cost", "spend"})
	assert.Equal(t, 2, cm[FieldSpend])
}

func TestSniffClaimsColumnsOnce(t *testing.T) {
	_, cm := Sniff([]string{"campaign_id", "campaign_name"})
	assert.Equal(t, 0, cm[FieldCampaignID])
	assert.Equal(t, 1, cm[FieldCampaignName])
}

func TestSniffCreativeReport(t *testing.T) {
	fileType, cm := Sniff([]string{"date", "campaign_name", "creative_name", "spend", "impressions", "clicks"})
	require.Equal(t, domain.FileTypeCreative, fileType)
	assert.Equal(t, 2, cm[FieldCreativeName])
}

func TestSniffInventoryReports(t *testing.T) {
	fileType, cm := Sniff([]string{"Exchange", "App Name", "Inventory Traffic"})
	assert.Equal(t, domain.FileTypeInventoryOverall, fileType)
	assert.Equal(t, 2, cm[FieldTraffic])

	fileType, _ = Sniff([]string{"Date", "Exchange", "App Name", "Inventory Traffic"})
	assert.Equal(t, domain.FileTypeInventoryDaily, fileType)
}

func TestSniffUnknownShape(t *testing.T) {
	fileType, _ := Sniff([]string{"notes"})
	assert.Equal(t, domain.FileTypeUnknown, fileType)

	// Metrics without a campaign column are not a campaign report.
	fileType, _ = Sniff([]string{"spend", "installs"})
	assert.Equal(t, domain.FileTypeUnknown, fileType)
}

func TestColumnMapCell(t *testing.T) {
	cm := ColumnMap{FieldSpend: 1, FieldInstalls: 5}
	row := []string{"x", "10.5"}

	assert.Equal(t, "10.5", cm.Cell(row, FieldSpend))
	// Mapped but past the end of a ragged row.
	assert.Equal(t, "", cm.Cell(row, FieldInstalls))
	// Never mapped.
	assert.Equal(t, "", cm.Cell(row, FieldClicks))
}
