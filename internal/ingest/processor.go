package ingest

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"adpulse/internal/domain"
)

const previewRows = 5

// FileProcessor runs the per-file pipeline: tokenize, sniff, validate,
// build records. It holds no state between files; every call starts clean.
type FileProcessor struct {
	// Advisory row-count thresholds. Crossing one adds a warning; nothing
	// is ever truncated or rejected for size.
	LargeFileRows int
	HugeFileRows  int

	// Now supplies the processing time for date fallbacks; tests pin it.
	Now func() time.Time
}

// FileOutput is everything one file contributed: its validation outcome,
// the records it produced and the per-row warnings collected on the way.
type FileOutput struct {
	Validation *domain.ValidationResult
	Campaigns  []domain.CampaignRecord
	Creatives  []domain.CreativeRecord
	Warnings   []string
}

// NewFileProcessor returns a processor with the default advisory
// thresholds.
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		LargeFileRows: 10000,
		HugeFileRows:  50000,
		Now:           time.Now,
	}
}

// Validate inspects a file without building records. Hard errors (empty
// file, no data rows, undecodable text, unrecognized header shape) mark the
// result invalid; the caller decides whether to proceed with the rest of
// its batch.
func (p *FileProcessor) Validate(content []byte) *domain.ValidationResult {
	res := &domain.ValidationResult{
		FileType: domain.FileTypeUnknown,
		Errors:   []string{},
		Warnings: []string{},
		Preview:  [][]string{},
	}

	if len(content) == 0 || strings.TrimSpace(string(content)) == "" {
		res.Errors = append(res.Errors, "file is empty")
		return res
	}
	if !utf8.Valid(content) {
		res.Errors = append(res.Errors, "file is not valid UTF-8 text")
		return res
	}

	rows := ParseRows(string(content))
	if len(rows) == 0 {
		res.Errors = append(res.Errors, "file is empty")
		return res
	}

	res.ColumnCount = len(rows[0])
	res.RowCount = len(rows) - 1
	for i := 0; i < len(rows) && i < previewRows; i++ {
		res.Preview = append(res.Preview, rows[i])
	}

	if res.RowCount == 0 {
		res.Errors = append(res.Errors, "file has no data rows")
		return res
	}

	fileType, _ := Sniff(rows[0])
	res.FileType = fileType
	if fileType == domain.FileTypeUnknown {
		res.Errors = append(res.Errors,
			fmt.Sprintf("unrecognized report shape, headers: %s", strings.Join(rows[0], ", ")))
		return res
	}

	if res.RowCount > p.HugeFileRows {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("very large file (%d rows), processing may be slow", res.RowCount))
	} else if res.RowCount > p.LargeFileRows {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("large file (%d rows)", res.RowCount))
	}

	res.IsValid = true
	return res
}

// Process validates a file and, when valid, builds its records. Rows that
// fail the name-and-metric acceptance rule are dropped without a warning;
// tolerated cell failures and column-count mismatches are collected as
// warnings with their 1-based data row number.
func (p *FileProcessor) Process(content []byte) *FileOutput {
	out := &FileOutput{Validation: p.Validate(content)}
	out.Warnings = append(out.Warnings, out.Validation.Warnings...)
	if !out.Validation.IsValid {
		return out
	}

	rows := ParseRows(string(content))
	header := rows[0]
	fileType, cm := Sniff(header)
	now := p.Now()

	for i, row := range rows[1:] {
		rowNum := i + 1
		if len(row) != len(header) {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("row %d: expected %d columns, got %d", rowNum, len(header), len(row)))
		}

		campaign, creative, warnings := BuildRecords(row, cm, fileType, now)
		for _, w := range warnings {
			out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: %s", rowNum, w))
		}
		if campaign != nil {
			out.Campaigns = append(out.Campaigns, *campaign)
		}
		if creative != nil {
			out.Creatives = append(out.Creatives, *creative)
		}
	}

	return out
}
