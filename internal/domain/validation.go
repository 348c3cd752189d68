package domain

// FileType classifies a report file by its header shape.
type FileType string

const (
	FileTypeCampaign         FileType = "campaign"
	FileTypeCreative         FileType = "creative"
	FileTypeInventoryDaily   FileType = "inventory_daily"
	FileTypeInventoryOverall FileType = "inventory_overall"
	FileTypeUnknown          FileType = "unknown"
)

// ValidationResult describes a single file before processing. Hard errors
// abort the file; warnings are advisory and the file is still processed.
type ValidationResult struct {
	IsValid     bool       `json:"is_valid"`
	FileType    FileType   `json:"file_type"`
	Errors      []string   `json:"errors"`
	Warnings    []string   `json:"warnings"`
	RowCount    int        `json:"row_count"`
	ColumnCount int        `json:"column_count"`
	Preview     [][]string `json:"preview"`
}

// FileResult is the per-file outcome of a batch. One file failing never
// discards the results of the files before it.
type FileResult struct {
	Filename        string   `json:"filename"`
	Valid           bool     `json:"valid"`
	FileType        FileType `json:"file_type"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	RowCount        int      `json:"row_count"`
	CampaignRecords int      `json:"campaign_records"`
	CreativeRecords int      `json:"creative_records"`
}
