package shiftscan

import (
	"regexp"
	"strings"
	"time"
)

var (
	shiftTimePattern    = regexp.MustCompile(`^(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	embeddedTimePattern = regexp.MustCompile(`\(\s*(\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2})\s*\)`)
)

// ShiftTime is a parsed shift label
type ShiftTime struct {
	Start         string // HH:MM
	DurationHours float64
}

// ExtractShiftDetails parses a shift-time token such as "Open 09:00-17:00".
// An embedded parenthetical range wins over the rest of the token. It never
// fails loudly: unrecognized text yields false.
func ExtractShiftDetails(token string, prefixes []string) (ShiftTime, bool) {
	return newShiftParser(prefixes).extract(token)
}

// IsShiftTimeLike reports whether value looks like a shift-time label
func IsShiftTimeLike(value string, prefixes []string) bool {
	return newShiftParser(prefixes).isLabel(value)
}

// EmbeddedShiftTime finds a personal time written in parentheses, as in
// "Emilie (10:00-14:00)". It returns the parsed time and the matched text.
func EmbeddedShiftTime(token string) (ShiftTime, string, bool) {
	m := embeddedTimePattern.FindStringSubmatchIndex(token)
	if m == nil {
		return ShiftTime{}, "", false
	}
	st, ok := parseRange(strings.ToLower(token[m[2]:m[3]]))
	if !ok {
		return ShiftTime{}, "", false
	}
	return st, token[m[2]:m[3]], true
}

type shiftParser struct {
	prefixes []string
}

func newShiftParser(prefixes []string) shiftParser {
	return shiftParser{prefixes: normalizedPrefixes(prefixes)}
}

func (p shiftParser) extract(token string) (ShiftTime, bool) {
	if st, _, ok := EmbeddedShiftTime(token); ok {
		return st, true
	}
	return parseRange(p.strip(token))
}

func (p shiftParser) isLabel(value string) bool {
	return shiftTimePattern.MatchString(p.strip(value))
}

// strip lowercases the token and removes one leading role prefix
func (p shiftParser) strip(token string) string {
	s := strings.ToLower(strings.TrimSpace(token))
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimLeft(s[len(prefix):], " :")
		}
	}
	return s
}

func parseRange(s string) (ShiftTime, bool) {
	m := shiftTimePattern.FindStringSubmatch(s)
	if m == nil {
		return ShiftTime{}, false
	}
	start, err := time.Parse("15:04", m[1])
	if err != nil {
		return ShiftTime{}, false
	}
	end, err := time.Parse("15:04", m[2])
	if err != nil {
		return ShiftTime{}, false
	}

	hours := end.Sub(start).Hours()
	if hours < 0 {
		hours += 24
	}
	return ShiftTime{Start: start.Format("15:04"), DurationHours: hours}, true
}
