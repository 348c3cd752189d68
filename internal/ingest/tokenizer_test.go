package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "plain rows",
			input: "a,b,c\n1,2,3\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:  "quoted comma is literal",
			input: "name,countries\nSummer,\"US, GB\"\n",
			want:  [][]string{{"name", "countries"}, {"Summer", "US, GB"}},
		},
		{
			name:  "doubled quote escapes",
			input: "\"he said \"\"hi\"\"\",x\n",
			want:  [][]string{{`he said "hi"`, "x"}},
		},
		{
			name:  "cells trimmed",
			input: " a , b \n",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "blank lines skipped",
			input: "a,b\n\n   \n1,2\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "crlf line endings",
			input: "a,b\r\n1,2\r\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "no trailing newline",
			input: "a,b\n1,2",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "ragged row kept",
			input: "a,b,c\n1,2\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2"}},
		},
		{
			name:  "missing cells are empty strings",
			input: "a,,c\n",
			want:  [][]string{{"a", "", "c"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRows(tt.input))
		})
	}
}

func TestParseRowsQuotedNewline(t *testing.T) {
	rows := ParseRows("a,b\n\"line1\nline2\",x\n")
	require.Len(t, rows, 2)
	assert.Equal(t, "line1\nline2", rows[1][0])
}
