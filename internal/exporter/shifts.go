package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"shiftcal/internal/calendar"
	"shiftcal/pkg/contracts/domain"
)

// Format is an output format for shift records
type Format string

const (
	FormatICS  Format = "ics"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for formats other than ics, json and csv
var ErrUnknownFormat = errors.New("unknown export format")

// ShiftHeaders are the CSV columns of a shift record
var ShiftHeaders = []string{"sheet", "date", "shift_time", "start_time", "duration", "employee", "title", "source"}

// ParseFormat reads a format name, case-insensitively
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatICS, FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Options configures an export
type Options struct {
	// Calendar is used for ics output
	Calendar calendar.Options
	// BOMPrefix prefixes csv output with a UTF-8 BOM
	BOMPrefix bool
}

// ShiftRow renders one record in ShiftHeaders order
func ShiftRow(r domain.ShiftRecord) []string {
	return []string{
		r.SheetTitle,
		r.Date.String(),
		r.ShiftTimeText,
		r.StartTime,
		formatHours(r.DurationHours),
		r.Employee,
		r.CellText,
		string(r.Source),
	}
}

// Export writes records to w in the given format
func Export(w io.Writer, format Format, records []domain.ShiftRecord, opts Options) error {
	switch format {
	case FormatICS:
		ics, err := calendar.Render(records, opts.Calendar)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, ics)
		return err
	case FormatJSON:
		if records == nil {
			records = []domain.ShiftRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatCSV:
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, ShiftRow(r))
		}
		return WriteCSV(w, WriteOptions{
			Headers:   ShiftHeaders,
			Records:   rows,
			BOMPrefix: opts.BOMPrefix,
		})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
