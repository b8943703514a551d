package shiftscan

import (
	"fmt"
	"strings"
	"time"
)

// PastPolicy decides which dates count as already past
type PastPolicy string

const (
	// PastStrict drops dates strictly before the reference day
	PastStrict PastPolicy = "strict"
	// PastInclusive also drops the reference day itself
	PastInclusive PastPolicy = "inclusive"
)

// Strategy selects how a sheet is scanned
type Strategy string

const (
	StrategyDateAnchored Strategy = "date_anchored"
	StrategyNameAnchored Strategy = "name_anchored"
	// StrategyAuto scans date-anchored and falls back to name-anchored for
	// sheets that have no header dates at all
	StrategyAuto Strategy = "auto"
)

// MonthDay is a fixed (month, day) used for special date labels
type MonthDay struct {
	Month time.Month
	Day   int
}

// Params holds the scanning heuristics
type Params struct {
	// RolePrefixes are stripped from the start of shift-time labels
	RolePrefixes []string
	// HeaderRowDepth is how many top rows are searched for dates
	HeaderRowDepth int
	// PrimaryRowOffset is the distance from the date row to the lead row
	PrimaryRowOffset int
	// SectionColumnGap is the largest column gap inside one date section
	SectionColumnGap int
	// LabelColumnSpan is how many columns left of a section hold labels
	LabelColumnSpan int
	PastPolicy      PastPolicy
	Strategy        Strategy
	// NameWindowRows and NameWindowCols bound the name-anchored scan
	NameWindowRows int
	NameWindowCols int
	// SpecialDates maps literal header labels to a day of the reference year
	SpecialDates map[string]MonthDay
	// Parallel scans sheets concurrently. Output order is unchanged.
	Parallel bool
}

// DefaultParams returns the heuristics that match common roster layouts
func DefaultParams() Params {
	return Params{
		RolePrefixes:     []string{"open", "close", "flex", "dm support"},
		HeaderRowDepth:   5,
		PrimaryRowOffset: 1,
		SectionColumnGap: 1,
		LabelColumnSpan:  1,
		PastPolicy:       PastStrict,
		Strategy:         StrategyDateAnchored,
		NameWindowRows:   200,
		NameWindowCols:   60,
		SpecialDates: map[string]MonthDay{
			"APRIL FOOLS!": {Month: time.April, Day: 1},
		},
	}
}

// Validate checks that the heuristics are usable
func (p Params) Validate() error {
	if p.HeaderRowDepth <= 0 {
		return fmt.Errorf("header row depth must be positive, got %d", p.HeaderRowDepth)
	}
	if p.PrimaryRowOffset <= 0 {
		return fmt.Errorf("primary row offset must be positive, got %d", p.PrimaryRowOffset)
	}
	if p.SectionColumnGap < 1 {
		return fmt.Errorf("section column gap must be at least 1, got %d", p.SectionColumnGap)
	}
	if p.LabelColumnSpan < 0 {
		return fmt.Errorf("label column span must not be negative, got %d", p.LabelColumnSpan)
	}
	switch p.PastPolicy {
	case PastStrict, PastInclusive:
	default:
		return fmt.Errorf("unknown past policy %q", p.PastPolicy)
	}
	switch p.Strategy {
	case StrategyDateAnchored, StrategyNameAnchored, StrategyAuto:
	default:
		return fmt.Errorf("unknown strategy %q", p.Strategy)
	}
	if p.Strategy != StrategyDateAnchored && (p.NameWindowRows <= 0 || p.NameWindowCols <= 0) {
		return fmt.Errorf("name window must be positive, got %dx%d", p.NameWindowRows, p.NameWindowCols)
	}
	return nil
}

// normalizedPrefixes returns lowercase prefixes, longest first
func normalizedPrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	// insertion sort keeps equal-length prefixes in configured order
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
