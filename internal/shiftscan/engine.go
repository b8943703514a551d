package shiftscan

import (
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shiftcal/pkg/contracts/domain"
)

// Engine scans roster sheets for employee shifts. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	params Params
	dates  DateNormalizer
	times  shiftParser
}

// ScanRequest is one scan invocation
type ScanRequest struct {
	Sheets []domain.Sheet
	// Names are matched case-insensitively as substrings of cell text
	Names []string
	// Reference is the instant used for year inference and past filtering
	Reference time.Time
	// Events receives diagnostics; nil discards them
	Events EventSink
}

// NewEngine validates params and creates an engine
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		params: params,
		dates:  NewDateNormalizer(params.SpecialDates),
		times:  newShiftParser(params.RolePrefixes),
	}, nil
}

// Params returns the engine heuristics
func (e *Engine) Params() Params {
	return e.params
}

// Scan extracts shift records from every sheet. Records are sorted by date;
// records on the same date keep their discovery order (sheet order, then
// section, date column and phase).
func (e *Engine) Scan(req ScanRequest) []domain.ShiftRecord {
	names := prepareNames(req.Names)
	if len(names) == 0 || len(req.Sheets) == 0 {
		return nil
	}
	sink := sinkOrNop(req.Events)

	perSheet := make([][]domain.ShiftRecord, len(req.Sheets))
	if e.params.Parallel && len(req.Sheets) > 1 {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range req.Sheets {
			g.Go(func() error {
				perSheet[i] = e.scanSheet(req.Sheets[i], names, req.Reference, sink)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, sheet := range req.Sheets {
			perSheet[i] = e.scanSheet(sheet, names, req.Reference, sink)
		}
	}

	records := mergeSheets(perSheet)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records
}

// mergeSheets concatenates per-sheet records in workbook order, keeping the
// first record for each employee and date
func mergeSheets(perSheet [][]domain.ShiftRecord) []domain.ShiftRecord {
	var records []domain.ShiftRecord
	seen := make(map[string]bool)
	for _, rs := range perSheet {
		for _, r := range rs {
			key := strings.ToLower(r.Employee) + "\x00" + r.Date.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, r)
		}
	}
	return records
}

func (e *Engine) scanSheet(sheet domain.Sheet, names []searchName, ref time.Time, sink EventSink) []domain.ShiftRecord {
	s := newSheetScan(e, sheet, names, ref, sink)

	switch e.params.Strategy {
	case StrategyNameAnchored:
		s.nameAnchored()
	case StrategyAuto:
		if !s.dateAnchored() {
			s.emit(Event{Kind: EventStrategyFallback, Detail: string(StrategyNameAnchored), Err: ErrNoDateHeaders})
			s.nameAnchored()
		}
	default:
		if !s.dateAnchored() {
			s.emit(Event{Kind: EventSheetSkipped, Err: ErrNoDateHeaders})
		}
	}
	return s.records
}

// prepareNames trims names, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling
func prepareNames(names []string) []searchName {
	out := make([]searchName, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		folded := strings.ToLower(name)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, searchName{display: name, folded: folded})
	}
	return out
}
