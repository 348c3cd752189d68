package ingest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/domain"
)

func pinnedProcessor() *FileProcessor {
	p := NewFileProcessor()
	p.Now = func() time.Time { return testNow }
	return p
}

func TestValidateCampaignFile(t *testing.T) {
	content := []byte("Date,Campaign Name,Spend,Installs\n" +
		"2025-01-01,Summer Sale,100.00,20\n" +
		"2025-01-02,Summer Sale,50.00,10\n")

	res := pinnedProcessor().Validate(content)
	assert.True(t, res.IsValid)
	assert.Equal(t, domain.FileTypeCampaign, res.FileType)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, 4, res.ColumnCount)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Preview, 3)
	assert.Equal(t, []string{"Date", "Campaign Name", "Spend", "Installs"}, res.Preview[0])
}

func TestValidateEmptyFile(t *testing.T) {
	for _, content := range [][]byte{nil, []byte(""), []byte("   \n\n  ")} {
		res := pinnedProcessor().Validate(content)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Errors, "file is empty")
	}
}

func TestValidateBinaryFile(t *testing.T) {
	res := pinnedProcessor().Validate([]byte{0xff, 0xfe, 0x00, 0x41})
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, "file is not valid UTF-8 text")
}

func TestValidateHeaderOnlyFile(t *testing.T) {
	res := pinnedProcessor().Validate([]byte("campaign_name,spend,installs\n"))
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, "file has no data rows")
	assert.Equal(t, 0, res.RowCount)
}

func TestValidateUnknownShape(t *testing.T) {
	res := pinnedProcessor().Validate([]byte("foo,bar,baz\n1,2,3\n"))
	assert.False(t, res.IsValid)
	assert.Equal(t, domain.FileTypeUnknown, res.FileType)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "unrecognized report shape, headers: foo, bar, baz", res.Errors[0])
}

func TestValidatePreviewCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("campaign_name,spend,installs\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Campaign %d,1.00,1\n", i)
	}

	res := pinnedProcessor().Validate([]byte(b.String()))
	assert.True(t, res.IsValid)
	assert.Len(t, res.Preview, previewRows)
}

func TestValidateLargeFileWarning(t *testing.T) {
	p := pinnedProcessor()
	p.LargeFileRows = 3
	p.HugeFileRows = 100

	var b strings.Builder
	b.WriteString("campaign_name,spend,installs\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "Campaign %d,1.00,1\n", i)
	}

	res := p.Validate([]byte(b.String()))
	assert.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "large file (5 rows)", res.Warnings[0])

	p.HugeFileRows = 3
	res = p.Validate([]byte(b.String()))
	assert.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "very large file (5 rows), processing may be slow", res.Warnings[0])
}

func TestProcessBuildsRecords(t *testing.T) {
	content := []byte("Date,Campaign Name,Exchange,Spend,Installs\n" +
		"2025-01-01,Summer Sale,AppLovin,100.00,20\n" +
		"2025-01-02,Summer Sale,AppLovin,50.00,10\n")

	out := pinnedProcessor().Process(content)
	assert.True(t, out.Validation.IsValid)
	assert.Empty(t, out.Warnings)
	require.Len(t, out.Campaigns, 2)
	assert.Empty(t, out.Creatives)
	assert.Equal(t, "Summer Sale", out.Campaigns[0].Name)
	assert.Equal(t, 100.0, out.Campaigns[0].Spend)
}

func TestProcessBadDateWarnsAndKeepsRow(t *testing.T) {
	content := []byte("Date,Campaign Name,Spend,Installs\n" +
		"not-a-date,Summer Sale,100.00,20\n")

	out := pinnedProcessor().Process(content)
	require.Len(t, out.Campaigns, 1)
	assert.Equal(t, "2025-06-15", out.Campaigns[0].Date)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, `row 1: unparseable date "not-a-date", using 2025-06-15`, out.Warnings[0])
}

func TestProcessRaggedRowWarns(t *testing.T) {
	content := []byte("Date,Campaign Name,Spend,Installs\n" +
		"2025-01-01,Summer Sale,100.00,20\n" +
		"2025-01-02,Summer Sale,50.00\n")

	out := pinnedProcessor().Process(content)
	require.Len(t, out.Campaigns, 2)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, "row 2: expected 4 columns, got 3", out.Warnings[0])
}

func TestProcessDropsNoiseRowsSilently(t *testing.T) {
	content := []byte("Date,Campaign Name,Spend,Installs\n" +
		"2025-01-01,Summer Sale,100.00,20\n" +
		"2025-01-01,,50.00,10\n" +
		"2025-01-01,Totals,0,0\n")

	out := pinnedProcessor().Process(content)
	require.Len(t, out.Campaigns, 1)
	assert.Empty(t, out.Warnings)
}

func TestProcessInvalidFileProducesNoRecords(t *testing.T) {
	out := pinnedProcessor().Process([]byte("foo,bar\n1,2\n"))
	assert.False(t, out.Validation.IsValid)
	assert.Empty(t, out.Campaigns)
	assert.Empty(t, out.Creatives)
}

func TestProcessCreativeFile(t *testing.T) {
	content := []byte("Date,Campaign Name,Creative Name,Spend,Installs\n" +
		"2025-01-01,Summer Sale,video_30s,25.00,5\n")

	out := pinnedProcessor().Process(content)
	assert.Equal(t, domain.FileTypeCreative, out.Validation.FileType)
	require.Len(t, out.Campaigns, 1)
	require.Len(t, out.Creatives, 1)
	assert.Equal(t, "video_30s", out.Creatives[0].Name)
	assert.Equal(t, "Summer Sale", out.Creatives[0].CampaignName)
}
