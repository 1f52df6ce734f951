// Package sheet reads flashcards from spreadsheets.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/at-ishikawa/pobcards/internal/deck"
)

// Options select where the cards are in the sheet.
type Options struct {
	// SheetName defaults to the first sheet. Ignored for CSV.
	SheetName        string
	TermColumn       string
	DefinitionColumn string
	SkipHeader       bool
}

// DefaultOptions reads terms from column A and definitions from column B below a header row.
func DefaultOptions() Options {
	return Options{
		TermColumn:       "A",
		DefinitionColumn: "B",
		SkipHeader:       true,
	}
}

// SkippedRow is a non-empty row that did not make a valid card.
type SkippedRow struct {
	Row    int
	Reason string
}

// Result holds the cards read in row order.
type Result struct {
	Cards   []deck.Card
	Skipped []SkippedRow
}

// ReadCards reads cards from an .xlsx or .csv file.
// Fully empty rows are dropped silently; rows missing a side or exceeding the field limit are skipped.
func ReadCards(path string, opts Options) (*Result, error) {
	termIdx, err := columnIndex(opts.TermColumn)
	if err != nil {
		return nil, err
	}
	definitionIdx, err := columnIndex(opts.DefinitionColumn)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(path, opts.SheetName)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .xlsx or .csv", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Cards: []deck.Card{}}
	for i, row := range rows {
		if i == 0 && opts.SkipHeader {
			continue
		}
		term := strings.TrimSpace(cell(row, termIdx))
		definition := strings.TrimSpace(cell(row, definitionIdx))
		if term == "" && definition == "" {
			continue
		}

		card := deck.Card{Term: term, Definition: definition}
		if err := deck.ValidateCard(card); err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Row: i + 1, Reason: err.Error()})
			continue
		}
		result.Cards = append(result.Cards, card)
	}
	return result, nil
}

func readExcel(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenFile(%s) > %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("f.GetRows(%s) > %w", sheetName, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reader.Read() > %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnIndex(column string) (int, error) {
	n, err := excelize.ColumnNameToNumber(column)
	if err != nil {
		return 0, fmt.Errorf("excelize.ColumnNameToNumber(%q) > %w", column, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
