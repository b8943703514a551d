package shiftscan

import (
	"strings"

	"shiftcal/pkg/contracts/domain"
)

// nameAnchored finds name cells first and derives the date from the nearest
// date cell above and the time from the cell itself or the nearest label to
// the left. It covers sheets without a header band.
func (s *sheetScan) nameAnchored() {
	grid := s.sheet.Grid
	params := s.engine.params

	rows := grid.Rows()
	if rows > params.NameWindowRows {
		rows = params.NameWindowRows
	}

	for row := 0; row < rows; row++ {
		cols := len(grid[row])
		if cols > params.NameWindowCols {
			cols = params.NameWindowCols
		}
		for col := 0; col < cols; col++ {
			text := strings.TrimSpace(grid.At(row, col).String())
			if text == "" {
				continue
			}
			folded := strings.ToLower(text)

			var hits []searchName
			for _, n := range s.names {
				if strings.Contains(folded, n.folded) {
					hits = append(hits, n)
				}
			}
			if len(hits) == 0 {
				continue
			}

			date, ok := s.dateAbove(row, col)
			if !ok {
				continue
			}
			if IsPast(date, s.ref, params.PastPolicy) {
				s.emit(Event{Kind: EventDateSkippedPast, Row: row, Col: col, Detail: date.String()})
				continue
			}
			st, raw, ok := s.timeLeftOf(row, col, text)
			if !ok {
				continue
			}

			for _, n := range hits {
				if s.seen[seenKey(n, date)] {
					continue
				}
				s.record(0, row, col, date, n, text, st, raw, domain.SourceNameAnchored)
			}
		}
	}
}

func (s *sheetScan) dateAbove(row, col int) (domain.Date, bool) {
	for r := row - 1; r >= 0; r-- {
		cell := s.sheet.Grid.At(r, col)
		if cell.IsEmpty() {
			continue
		}
		if date, ok := s.engine.dates.IsDateLike(cell.String(), s.ref); ok {
			return date, true
		}
	}
	return domain.Date{}, false
}

func (s *sheetScan) timeLeftOf(row, col int, text string) (ShiftTime, string, bool) {
	if st, raw, ok := EmbeddedShiftTime(text); ok {
		return st, raw, true
	}
	for c := col - 1; c >= 0; c-- {
		raw := strings.TrimSpace(s.sheet.Grid.At(row, c).String())
		if raw == "" || !s.engine.times.isLabel(raw) {
			continue
		}
		if st, ok := s.engine.times.extract(raw); ok {
			return st, raw, true
		}
	}
	return ShiftTime{}, "", false
}
