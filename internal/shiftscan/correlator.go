package shiftscan

import (
	"fmt"
	"strings"
	"time"

	"shiftcal/pkg/contracts/domain"
)

// searchName is a searched employee with its lowercase form for matching
type searchName struct {
	display string
	folded  string
}

// sheetScan holds the state of one sheet pass. seen enforces one record per
// employee and date across all sections of the sheet.
type sheetScan struct {
	engine *Engine
	sheet  domain.Sheet
	names  []searchName
	ref    time.Time
	sink   EventSink

	seen    map[string]bool
	records []domain.ShiftRecord
}

func newSheetScan(e *Engine, sheet domain.Sheet, names []searchName, ref time.Time, sink EventSink) *sheetScan {
	return &sheetScan{
		engine: e,
		sheet:  sheet,
		names:  names,
		ref:    ref,
		sink:   sink,
		seen:   make(map[string]bool),
	}
}

func (s *sheetScan) emit(e Event) {
	e.Sheet = s.sheet.Title
	s.sink.Emit(e)
}

// dateAnchored runs the canonical strategy. It reports false when the sheet
// has no header dates at all.
func (s *sheetScan) dateAnchored() bool {
	grid := s.sheet.Grid
	dates := s.engine.findDateHeaders(grid, s.ref, s.sheet.Title, s.sink)
	if len(dates) == 0 {
		return false
	}

	for i, section := range GroupIntoSections(dates, s.engine.params.SectionColumnGap) {
		shifts := s.engine.FindShiftTimePositions(grid, section.StartCol())
		if len(shifts) == 0 {
			s.emit(Event{
				Kind:    EventSectionSkipped,
				Section: i,
				Row:     section[0].Row,
				Col:     section.StartCol(),
				Err:     ErrNoShiftTimes,
			})
			continue
		}

		for _, pos := range section {
			if IsPast(pos.Date, s.ref, s.engine.params.PastPolicy) {
				s.emit(Event{Kind: EventDateSkippedPast, Section: i, Row: pos.Row, Col: pos.Col, Detail: pos.Date.String()})
				continue
			}
			s.correlateDate(i, pos, shifts)
		}
	}
	return true
}

// correlateDate matches names for one date column in two phases: the primary
// row directly below the date, then every shift row below the date.
func (s *sheetScan) correlateDate(section int, pos domain.DatePosition, shifts []domain.ShiftTimePosition) {
	grid := s.sheet.Grid
	satisfied := make([]bool, len(s.names))
	remaining := len(s.names)
	for i, n := range s.names {
		if s.seen[seenKey(n, pos.Date)] {
			satisfied[i] = true
			remaining--
		}
	}
	if remaining == 0 {
		return
	}

	primaryRow := pos.Row + s.engine.params.PrimaryRowOffset
	primaryText := strings.TrimSpace(grid.At(primaryRow, pos.Col).String())
	st, raw, ok := resolveTime(primaryText, shiftOnRow(shifts, primaryRow))
	matched := 0
	if ok && primaryText != "" {
		matched = s.matchCell(section, pos, primaryRow, primaryText, st, raw, domain.SourcePrimary, satisfied)
		remaining -= matched
	}
	if matched == 0 {
		s.emit(Event{Kind: EventPrimaryMiss, Section: section, Row: primaryRow, Col: pos.Col, Detail: primaryMissReason(primaryText, ok)})
	}

	for i := range shifts {
		if remaining == 0 {
			return
		}
		shift := shifts[i]
		if shift.Row <= pos.Row {
			continue
		}
		text := strings.TrimSpace(grid.At(shift.Row, pos.Col).String())
		if text == "" {
			continue
		}
		st, raw, ok := resolveTime(text, &shift)
		if !ok {
			continue
		}
		remaining -= s.matchCell(section, pos, shift.Row, text, st, raw, domain.SourceShiftRow, satisfied)
	}
}

// matchCell records every unsatisfied name contained in text and returns how
// many were recorded
func (s *sheetScan) matchCell(section int, pos domain.DatePosition, row int, text string, st ShiftTime, raw string, source domain.MatchSource, satisfied []bool) int {
	folded := strings.ToLower(text)
	matched := 0
	for i, n := range s.names {
		if satisfied[i] || !strings.Contains(folded, n.folded) {
			continue
		}
		satisfied[i] = true
		matched++
		s.record(section, row, pos.Col, pos.Date, n, text, st, raw, source)
	}
	return matched
}

func (s *sheetScan) record(section, row, col int, date domain.Date, n searchName, text string, st ShiftTime, raw string, source domain.MatchSource) {
	s.seen[seenKey(n, date)] = true
	s.records = append(s.records, domain.ShiftRecord{
		SheetTitle:    s.sheet.Title,
		Date:          date,
		ShiftTimeText: raw,
		StartTime:     st.Start,
		DurationHours: st.DurationHours,
		Employee:      n.display,
		CellText:      text,
		Source:        source,
	})
	s.emit(Event{
		Kind:    EventRecord,
		Section: section,
		Row:     row,
		Col:     col,
		Detail:  fmt.Sprintf("%s %s %s", n.display, date, st.Start),
	})
}

// resolveTime prefers a time embedded in the cell over the row's label
func resolveTime(text string, label *domain.ShiftTimePosition) (ShiftTime, string, bool) {
	if st, raw, ok := EmbeddedShiftTime(text); ok {
		return st, raw, true
	}
	if label == nil {
		return ShiftTime{}, "", false
	}
	return ShiftTime{Start: label.Start, DurationHours: label.DurationHours}, label.Raw, true
}

func shiftOnRow(shifts []domain.ShiftTimePosition, row int) *domain.ShiftTimePosition {
	for i := range shifts {
		if shifts[i].Row == row {
			return &shifts[i]
		}
	}
	return nil
}

func primaryMissReason(text string, timed bool) string {
	switch {
	case text == "":
		return "empty primary cell"
	case !timed:
		return "no shift time on primary row"
	default:
		return "no searched name on primary row"
	}
}

func seenKey(n searchName, date domain.Date) string {
	return n.folded + "\x00" + date.String()
}
