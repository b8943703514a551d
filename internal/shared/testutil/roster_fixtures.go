package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// FixtureSheet describes one sheet of a generated roster workbook. Rows are
// written from A1; nil entries leave the cell blank.
type FixtureSheet struct {
	Name    string
	Rows    [][]any
	Hidden  bool
	// Merges are cell ranges such as {"C1", "D1"}
	Merges  [][2]string
	// NumFmts applies a builtin number format id to a cell, keyed by cell name
	NumFmts map[string]int
}

// WeekRoster is a two-section roster for 2-4 April and 8-9 April with
// Emilie, Sam and Jo rostered across the week
func WeekRoster(name string) FixtureSheet {
	return FixtureSheet{
		Name: name,
		Rows: [][]any{
			{"Week", nil, "2nd April", "3rd April", "4th April", nil, nil, "8th April", "9th April"},
			{nil, "Open 07:00-15:00", "Emilie", "Sam", nil, nil, "Open 06:00-14:00", "Sam"},
			{nil, "09:00-17:00", "Sam", "Emilie (10:00-14:00)", "Emilie", nil, "10:00-18:00", "Emilie", "Emilie"},
			{nil, "Close 15:00-23:00", "Jo", nil, "Sam"},
		},
	}
}

// RosterXLSX builds an xlsx workbook in memory and returns its bytes
func RosterXLSX(t testing.TB, sheets ...FixtureSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}

		for cell, id := range sheet.NumFmts {
			style, err := f.NewStyle(&excelize.Style{NumFmt: id})
			if err != nil {
				t.Fatalf("number format %d: %v", id, err)
			}
			if err := f.SetCellStyle(sheet.Name, cell, cell, style); err != nil {
				t.Fatalf("style %s!%s: %v", sheet.Name, cell, err)
			}
		}

		for _, merge := range sheet.Merges {
			if err := f.MergeCell(sheet.Name, merge[0], merge[1]); err != nil {
				t.Fatalf("merge %s:%s: %v", merge[0], merge[1], err)
			}
		}
	}

	// hide after all sheets exist so the active sheet stays visible
	for _, sheet := range sheets {
		if sheet.Hidden {
			if err := f.SetSheetVisible(sheet.Name, false); err != nil {
				t.Fatalf("hide %q: %v", sheet.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteRosterXLSX saves a generated workbook under t.TempDir and returns its path
func WriteRosterXLSX(t testing.TB, name string, sheets ...FixtureSheet) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, RosterXLSX(t, sheets...), 0o644); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
