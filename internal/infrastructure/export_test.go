package infrastructure

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/domain"
)

func exportDataset() *domain.ProcessedDataset {
	ds := domain.EmptyDataset("2025-01-01")
	agg := domain.CampaignAggregate{
		Name:       `Summer "Mega" Sale`,
		ExternalID: "c-1",
		TargetApp:  "MyApp",
		Countries:  []string{"CA", "US"},
		OSes:       []string{"iOS"},
		Totals: domain.Totals{
			TotalSpend:       150,
			TotalInstalls:    30,
			TotalImpressions: 1000,
			TotalClicks:      50,
		},
		Exchanges: []domain.ExchangeDetail{},
	}
	agg.DerivedMetrics = agg.Totals.Derive()
	ds.Campaigns = append(ds.Campaigns, agg)
	ds.Summary.CampaignCount = 1
	return ds
}

func TestCampaignsCSVHeaderAndOrder(t *testing.T) {
	out := string(NewExporter().CampaignsCSV(exportDataset()))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t,
		`"Campaign Name","Campaign ID","Target App","Countries","OS","Spend","Installs","CPI","CTR","Impressions","Clicks"`,
		lines[0])
	assert.Equal(t,
		`"Summer ""Mega"" Sale","c-1","MyApp","CA,US","iOS","150.00","30","5.00","5.00","1000","50"`,
		lines[1])
}

func TestCampaignsCSVEmptyDataset(t *testing.T) {
	out := string(NewExporter().CampaignsCSV(domain.EmptyDataset("2025-01-01")))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], `"Campaign Name"`))
}

func TestDatasetJSONRoundTrips(t *testing.T) {
	ds := exportDataset()

	payload, err := NewExporter().DatasetJSON(ds)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "{\n  "))

	var back domain.ProcessedDataset
	require.NoError(t, json.Unmarshal(payload, &back))
	assert.Equal(t, ds, &back)
}
