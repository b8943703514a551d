package workbook

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"shiftcal/pkg/contracts/domain"
)

// quotedOrBracketed removes literals and locale/colour sections from custom
// number formats before looking for date tokens
var quotedOrBracketed = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// numFmtKind is how a number format presents a serial value
type numFmtKind int

const (
	fmtNumber numFmtKind = iota
	fmtDate
	fmtTime
)

type xlsxReader struct {
	file     *excelize.File
	date1904 bool
	// styles caches the number format kind of a style index
	styles map[int]numFmtKind
}

func loadXLSX(data []byte, opts Options) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrEmptyWorkbook
	}

	r := &xlsxReader{file: f, styles: make(map[int]numFmtKind)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	wb := &Workbook{Format: "xlsx"}
	for _, name := range names {
		visible, err := f.GetSheetVisible(name)
		if err != nil {
			wb.Skipped = append(wb.Skipped, &SourceReadError{Sheet: name, Err: err})
			continue
		}
		if !visible && !opts.IncludeHidden {
			wb.Hidden = append(wb.Hidden, name)
			continue
		}

		grid, err := r.grid(name)
		if err != nil {
			wb.Skipped = append(wb.Skipped, &SourceReadError{Sheet: name, Err: err})
			continue
		}
		wb.Sheets = append(wb.Sheets, domain.Sheet{Title: opts.title(name), Grid: grid})
	}
	return wb, nil
}

func (r *xlsxReader) grid(sheet string) (domain.Grid, error) {
	rows, err := r.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make(domain.Grid, len(rows))
	for i, row := range rows {
		grid[i] = make([]domain.Cell, len(row))
		for j, value := range row {
			if strings.TrimSpace(value) == "" {
				continue
			}
			cell, err := r.cell(sheet, j+1, i+1, value)
			if err != nil {
				return nil, err
			}
			grid[i][j] = cell
		}
	}

	if err := r.fanOutMerges(sheet, &grid); err != nil {
		return nil, err
	}
	return grid, nil
}

// cell types a raw value; col and row are 1-based
func (r *xlsxReader) cell(sheet string, col, row int, value string) (domain.Cell, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.Cell{}, err
	}

	typ, err := r.file.GetCellType(sheet, name)
	if err != nil {
		return domain.Cell{}, err
	}

	switch typ {
	case excelize.CellTypeDate:
		if t, ok := parseISOTime(value); ok {
			return domain.DateCell(t), nil
		}
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			break
		}
		kind, err := r.styleKind(sheet, name)
		if err != nil {
			return domain.Cell{}, err
		}
		switch kind {
		case fmtDate:
			if t, err := excelize.ExcelDateToTime(n, r.date1904); err == nil {
				return domain.DateCell(t), nil
			}
		case fmtTime:
			return domain.TextCell(clockText(n)), nil
		}
		return domain.NumberCell(n), nil
	}
	return trimCell(domain.TextCell(value)), nil
}

func (r *xlsxReader) styleKind(sheet, cell string) (numFmtKind, error) {
	idx, err := r.file.GetCellStyle(sheet, cell)
	if err != nil {
		return fmtNumber, err
	}
	if cached, ok := r.styles[idx]; ok {
		return cached, nil
	}

	style, err := r.file.GetStyle(idx)
	if err != nil {
		return fmtNumber, err
	}
	kind := fmtNumber
	switch {
	case isDateNumFmt(style.NumFmt, style.CustomNumFmt):
		kind = fmtDate
	case isTimeNumFmt(style.NumFmt, style.CustomNumFmt):
		kind = fmtTime
	}
	r.styles[idx] = kind
	return kind, nil
}

// isDateNumFmt reports whether a number format renders a calendar date.
// Builtin ids 14-17 are dates and 22 is date and time; custom formats count
// when they contain a day or year token.
func isDateNumFmt(id int, custom *string) bool {
	if f, ok := customFmt(custom); ok {
		return strings.ContainsAny(f, "dy")
	}
	return (id >= 14 && id <= 17) || id == 22
}

// isTimeNumFmt reports whether a number format renders only a clock time
// or an elapsed duration (builtin 18-21 and 45-47)
func isTimeNumFmt(id int, custom *string) bool {
	if f, ok := customFmt(custom); ok {
		return !strings.ContainsAny(f, "dy") && strings.ContainsAny(f, "hs")
	}
	return (id >= 18 && id <= 21) || (id >= 45 && id <= 47)
}

func customFmt(custom *string) (string, bool) {
	if custom == nil || *custom == "" {
		return "", false
	}
	return strings.ToLower(quotedOrBracketed.ReplaceAllString(*custom, "")), true
}

// clockText renders a day fraction as HH:MM; whole days add to the hours
func clockText(serial float64) string {
	minutes := int(math.Round(serial * 24 * 60))
	if minutes < 0 {
		minutes = -minutes
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// fanOutMerges copies the top-left value of every merged range into each
// covered cell, growing the grid when the range extends past it
func (r *xlsxReader) fanOutMerges(sheet string, grid *domain.Grid) error {
	merges, err := r.file.GetMergeCells(sheet)
	if err != nil {
		return err
	}

	g := *grid
	for _, merge := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(merge.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(merge.GetEndAxis())
		if err != nil {
			continue
		}

		value := g.At(startRow-1, startCol-1)
		if value.IsEmpty() {
			continue
		}
		for row := startRow - 1; row < endRow; row++ {
			for len(g) <= row {
				g = append(g, nil)
			}
			if len(g[row]) < endCol {
				widened := make([]domain.Cell, endCol)
				copy(widened, g[row])
				g[row] = widened
			}
			for col := startCol - 1; col < endCol; col++ {
				g[row][col] = value
			}
		}
	}
	*grid = g
	return nil
}

func parseISOTime(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
