package infrastructure

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"adpulse/internal/domain"
)

// campaignExportColumns is the fixed column order of the campaign CSV
// export. Consumers depend on it; do not reorder.
var campaignExportColumns = []string{
	"Campaign Name", "Campaign ID", "Target App", "Countries", "OS",
	"Spend", "Installs", "CPI", "CTR", "Impressions", "Clicks",
}

// Exporter renders datasets for download. Every CSV cell is quote-wrapped
// and list-valued fields are comma-joined inside their cell.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// CampaignsCSV renders the campaign collection in the fixed export order.
func (e *Exporter) CampaignsCSV(dataset *domain.ProcessedDataset) []byte {
	var b strings.Builder
	writeCSVRow(&b, campaignExportColumns)

	for _, c := range dataset.Campaigns {
		writeCSVRow(&b, []string{
			c.Name,
			c.ExternalID,
			c.TargetApp,
			strings.Join(c.Countries, ","),
			strings.Join(c.OSes, ","),
			formatFloat(c.TotalSpend),
			strconv.Itoa(c.TotalInstalls),
			formatFloat(c.AvgCPI),
			formatFloat(c.AvgCTR),
			strconv.Itoa(c.TotalImpressions),
			strconv.Itoa(c.TotalClicks),
		})
	}

	return []byte(b.String())
}

// DatasetJSON renders the full dataset with two-space indentation. The
// output is the same shape the cache persists, so it re-imports cleanly.
func (e *Exporter) DatasetJSON(dataset *domain.ProcessedDataset) ([]byte, error) {
	payload, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}
	return payload, nil
}

// writeCSVRow quotes every cell unconditionally, escaping embedded quotes
// by doubling them.
func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
