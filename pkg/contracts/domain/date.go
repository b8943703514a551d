package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical textual form of a roster date
const DateLayout = "02/01/2006"

// Date is a calendar day without time or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, rejecting days that do not exist in the calendar
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("invalid calendar date %04d-%02d-%02d", year, int(month), day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses the canonical dd/mm/yyyy form
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In returns midnight of the date in loc
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// String formats the date as dd/mm/yyyy
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// MarshalJSON encodes the date in its canonical form
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the canonical form
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
