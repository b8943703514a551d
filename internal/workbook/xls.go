package workbook

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"shiftcal/pkg/contracts/domain"
)

func loadXLS(data []byte, opts Options) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), opts.Charset)
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	if book.NumSheets() == 0 {
		return nil, ErrEmptyWorkbook
	}

	wb := &Workbook{Format: "xls"}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			wb.Skipped = append(wb.Skipped, &SourceReadError{Sheet: fmt.Sprintf("#%d", i), Err: fmt.Errorf("sheet %d not readable", i)})
			continue
		}
		if xlsHidden(sheet) && !opts.IncludeHidden {
			wb.Hidden = append(wb.Hidden, sheet.Name)
			continue
		}
		wb.Sheets = append(wb.Sheets, domain.Sheet{Title: opts.title(sheet.Name), Grid: xlsGrid(sheet)})
	}
	return wb, nil
}

// xlsHidden covers both hidden and very hidden sheets
func xlsHidden(sheet *xls.WorkSheet) bool {
	return sheet.Visibility != xls.WorkSheetVisible
}

func xlsGrid(sheet *xls.WorkSheet) domain.Grid {
	grid := make(domain.Grid, int(sheet.MaxRow)+1)
	for i := range grid {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		last := row.LastCol()
		if last <= 0 {
			continue
		}
		cells := make([]domain.Cell, last)
		for j := row.FirstCol(); j < last; j++ {
			cells[j] = trimCell(domain.TextCell(row.Col(j)))
		}
		grid[i] = cells
	}
	return grid
}
