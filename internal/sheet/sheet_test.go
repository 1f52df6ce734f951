package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/at-ishikawa/pobcards/internal/deck"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, axis, &row))
	}

	path := filepath.Join(t.TempDir(), "cards.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCards_Excel(t *testing.T) {
	tests := []struct {
		name        string
		sheet       string
		rows        [][]any
		opts        Options
		wantCards   []deck.Card
		wantSkipped []SkippedRow
	}{
		{
			name:  "header skipped and empty rows dropped",
			sheet: "Sheet1",
			rows: [][]any{
				{"Term", "Definition"},
				{"femur", "thigh bone"},
				{"", ""},
				{" tibia ", "shin bone"},
			},
			opts: DefaultOptions(),
			wantCards: []deck.Card{
				{Term: "femur", Definition: "thigh bone"},
				{Term: "tibia", Definition: "shin bone"},
			},
		},
		{
			name:  "half-filled row is reported",
			sheet: "Sheet1",
			rows: [][]any{
				{"Term", "Definition"},
				{"femur", ""},
				{"tibia", "shin bone"},
			},
			opts:        DefaultOptions(),
			wantCards:   []deck.Card{{Term: "tibia", Definition: "shin bone"}},
			wantSkipped: []SkippedRow{{Row: 2, Reason: "Add both a term and definition before saving."}},
		},
		{
			name:  "custom columns and named sheet without header",
			sheet: "Bones",
			rows: [][]any{
				{"1", "thigh bone", "femur"},
			},
			opts: Options{
				SheetName:        "Bones",
				TermColumn:       "C",
				DefinitionColumn: "B",
			},
			wantCards: []deck.Card{{Term: "femur", Definition: "thigh bone"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, tt.sheet, tt.rows)

			got, err := ReadCards(path, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCards, got.Cards)
			assert.Equal(t, tt.wantSkipped, got.Skipped)
		})
	}
}

func TestReadCards_CSV(t *testing.T) {
	long := strings.Repeat("x", deck.MaxFieldLength+1)
	path := writeFile(t, "cards.csv", "term,definition\nfemur,thigh bone\n\"radius, ulna\",forearm bones\n"+long+",too long\n")

	got, err := ReadCards(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []deck.Card{
		{Term: "femur", Definition: "thigh bone"},
		{Term: "radius, ulna", Definition: "forearm bones"},
	}, got.Cards)
	assert.Equal(t, []SkippedRow{{Row: 4, Reason: "Term must be 500 characters or less."}}, got.Skipped)
}

func TestReadCards_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		opts    Options
		wantErr string
	}{
		{
			name:    "unsupported extension",
			path:    func(t *testing.T) string { return writeFile(t, "cards.txt", "a,b") },
			opts:    DefaultOptions(),
			wantErr: "unsupported file type",
		},
		{
			name:    "invalid column",
			path:    func(t *testing.T) string { return writeFile(t, "cards.csv", "a,b") },
			opts:    Options{TermColumn: "1", DefinitionColumn: "B"},
			wantErr: "ColumnNameToNumber",
		},
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.xlsx") },
			opts:    DefaultOptions(),
			wantErr: "excelize.OpenFile",
		},
		{
			name: "missing sheet",
			path: func(t *testing.T) string {
				return writeWorkbook(t, "Sheet1", [][]any{{"a", "b"}})
			},
			opts:    Options{SheetName: "Nope", TermColumn: "A", DefinitionColumn: "B"},
			wantErr: "f.GetRows(Nope)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCards(tt.path(t), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
