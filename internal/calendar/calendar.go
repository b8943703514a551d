// Package calendar renders shift records as an iCalendar document.
package calendar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"shiftcal/pkg/contracts/domain"
)

const (
	// DefaultTimeZone is where roster times are local to
	DefaultTimeZone = "Australia/Sydney"
	// DefaultProductID identifies the generator in PRODID
	DefaultProductID = "-//shiftcal//roster shifts//EN"
)

// Options controls rendering
type Options struct {
	Location  *time.Location
	ProductID string
	// Stamp is written as DTSTAMP; zero means now
	Stamp time.Time
}

// Summary is the event title for a record
func Summary(r domain.ShiftRecord) string {
	return fmt.Sprintf("shift [%s]", r.CellText)
}

// UID derives a stable event id from the employee and the date, so a
// re-exported calendar updates events instead of duplicating them
func UID(r domain.ShiftRecord) string {
	sum := sha256.Sum256([]byte(strings.ToLower(r.Employee) + "_" + r.Date.String()))
	return "shift_" + hex.EncodeToString(sum[:])[:24]
}

// StartEnd localizes the record's date and start time to loc
func StartEnd(r domain.ShiftRecord, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	clock, err := time.Parse("15:04", r.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time %q: %w", r.StartTime, err)
	}
	if r.DurationHours < 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("negative duration %v", r.DurationHours)
	}

	start := time.Date(r.Date.Year, r.Date.Month, r.Date.Day, clock.Hour(), clock.Minute(), 0, 0, loc)
	end := start.Add(time.Duration(r.DurationHours * float64(time.Hour)))
	return start, end, nil
}

// Render builds a VCALENDAR with one VEVENT per record. Records sharing a
// UID after the first are left out.
func Render(records []domain.ShiftRecord, opts Options) (string, error) {
	if opts.Location == nil {
		loc, err := time.LoadLocation(DefaultTimeZone)
		if err != nil {
			return "", fmt.Errorf("load time zone: %w", err)
		}
		opts.Location = loc
	}
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(opts.ProductID)
	cal.SetXWRTimezone(opts.Location.String())

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		uid := UID(r)
		if seen[uid] {
			continue
		}
		seen[uid] = true

		start, end, err := StartEnd(r, opts.Location)
		if err != nil {
			return "", fmt.Errorf("record %s %s: %w", r.Employee, r.Date, err)
		}

		event := cal.AddEvent(uid)
		event.SetDtStampTime(opts.Stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(Summary(r))
		event.SetDescription(fmt.Sprintf("%s %s (%s)", r.Employee, r.ShiftTimeText, r.SheetTitle))
	}
	return cal.Serialize(), nil
}
