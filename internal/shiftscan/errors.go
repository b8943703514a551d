package shiftscan

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDateHeaders means a sheet has no date cells in its header band
	ErrNoDateHeaders = errors.New("no date headers found")
	// ErrNoShiftTimes means a date section has no shift-time labels
	ErrNoShiftTimes = errors.New("no shift times found")
)

// FormatError reports a token that is not a recognizable date or shift time.
// Scans recover from it locally; the cell simply carries no signal.
type FormatError struct {
	Kind   string // "date" or "shift_time"
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Token, e.Reason)
}

func dateFormatError(token, reason string) *FormatError {
	return &FormatError{Kind: "date", Token: token, Reason: reason}
}
