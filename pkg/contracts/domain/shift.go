package domain

// DatePosition is a header cell that parsed as a date
type DatePosition struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Raw  string `json:"raw"`
	Date Date   `json:"date"`
}

// DateSection is a run of date columns forming one scheduling block.
// Columns are strictly increasing.
type DateSection []DatePosition

// StartCol returns the first column of the section, or -1 when empty
func (s DateSection) StartCol() int {
	if len(s) == 0 {
		return -1
	}
	return s[0].Col
}

// ShiftTimePosition is a cell holding a shift-time label
type ShiftTimePosition struct {
	Row           int     `json:"row"`
	Col           int     `json:"col"`
	Raw           string  `json:"raw"`
	Start         string  `json:"start"`
	DurationHours float64 `json:"duration_hours"`
}

// MatchSource names the scan phase that produced a record
type MatchSource string

const (
	// SourcePrimary is a match on the designated row directly below the dates
	SourcePrimary MatchSource = "primary"
	// SourceShiftRow is a match on a generic shift-time row
	SourceShiftRow MatchSource = "shift_row"
	// SourceNameAnchored is a match found by the name-anchored fallback
	SourceNameAnchored MatchSource = "name_anchored"
)

// ShiftRecord is one extracted shift for one employee
type ShiftRecord struct {
	SheetTitle    string      `json:"sheet"`
	Date          Date        `json:"date"`
	ShiftTimeText string      `json:"shift_time"`
	StartTime     string      `json:"start_time"`
	DurationHours float64     `json:"duration"`
	Employee      string      `json:"employee"`
	CellText      string      `json:"title"`
	Source        MatchSource `json:"source"`
}
