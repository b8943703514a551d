package shiftscan

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"shiftcal/pkg/contracts/domain"
)

// FindDateHeaderPositions returns the date cells of the header band. Only
// the first HeaderRowDepth rows are searched and the search stops at the
// first row that holds any date.
func (e *Engine) FindDateHeaderPositions(grid domain.Grid, ref time.Time) []domain.DatePosition {
	return e.findDateHeaders(grid, ref, "", NopSink{})
}

func (e *Engine) findDateHeaders(grid domain.Grid, ref time.Time, sheet string, sink EventSink) []domain.DatePosition {
	depth := e.params.HeaderRowDepth
	if depth > grid.Rows() {
		depth = grid.Rows()
	}

	for row := 0; row < depth; row++ {
		var found []domain.DatePosition
		for col, cell := range grid[row] {
			if cell.IsEmpty() {
				continue
			}
			raw := strings.TrimSpace(cell.String())
			if bareTimePattern.MatchString(raw) {
				continue
			}
			date, err := e.dates.Normalize(raw, ref)
			if err != nil {
				if hasDigit(raw) {
					sink.Emit(Event{Kind: EventFormatError, Sheet: sheet, Row: row, Col: col, Detail: raw, Err: err})
				}
				continue
			}
			found = append(found, domain.DatePosition{Row: row, Col: col, Raw: raw, Date: date})
		}
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

// GroupIntoSections splits date positions into runs of nearby columns. A new
// section starts whenever the gap to the previous column exceeds maxGap.
// Repeated columns are dropped so columns inside a section strictly increase.
func GroupIntoSections(positions []domain.DatePosition, maxGap int) []domain.DateSection {
	if len(positions) == 0 {
		return nil
	}

	sorted := make([]domain.DatePosition, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Col < sorted[j].Col })

	var sections []domain.DateSection
	current := domain.DateSection{sorted[0]}
	for _, pos := range sorted[1:] {
		prev := current[len(current)-1]
		switch gap := pos.Col - prev.Col; {
		case gap == 0:
			continue
		case gap > maxGap:
			sections = append(sections, current)
			current = domain.DateSection{pos}
		default:
			current = append(current, pos)
		}
	}
	return append(sections, current)
}

// FindShiftTimePositions returns every shift-time label in the label columns
// of a section, ordered by row then column. The label columns are the
// LabelColumnSpan columns left of startCol plus startCol itself.
func (e *Engine) FindShiftTimePositions(grid domain.Grid, startCol int) []domain.ShiftTimePosition {
	first := startCol - e.params.LabelColumnSpan
	if first < 0 {
		first = 0
	}

	var positions []domain.ShiftTimePosition
	for row := range grid {
		for col := first; col <= startCol; col++ {
			cell := grid.At(row, col)
			if cell.IsEmpty() {
				continue
			}
			raw := strings.TrimSpace(cell.String())
			if !e.times.isLabel(raw) {
				continue
			}
			st, ok := e.times.extract(raw)
			if !ok {
				continue
			}
			positions = append(positions, domain.ShiftTimePosition{
				Row:           row,
				Col:           col,
				Raw:           raw,
				Start:         st.Start,
				DurationHours: st.DurationHours,
			})
		}
	}
	return positions
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
