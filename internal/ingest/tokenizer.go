package ingest

import "strings"

// ParseRows splits a raw text blob into rows of trimmed cells. A double
// quote toggles quoted mode, a doubled quote inside quoted content is a
// literal quote, and a comma only separates cells outside quotes. Lines that
// are blank after trimming produce no row. Ragged rows are kept as-is; the
// processor reports the mismatch as a warning.
func ParseRows(text string) [][]string {
	var (
		rows     [][]string
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)

	flushCell := func() {
		cells = append(cells, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	flushRow := func() {
		flushCell()
		if !blankRow(cells) {
			rows = append(rows, cells)
		}
		cells = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cell.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			flushCell()
		case ch == '\n' && !inQuotes:
			flushRow()
		case ch == '\r':
			// dropped; \r\n line endings collapse to \n
		default:
			cell.WriteRune(ch)
		}
	}
	if cell.Len() > 0 || len(cells) > 0 {
		flushRow()
	}

	return rows
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
