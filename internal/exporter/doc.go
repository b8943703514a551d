// Package exporter writes extracted shift records as iCalendar, JSON or CSV.
//
// CSV output has one row per record in ShiftHeaders order and can carry a
// UTF-8 BOM for Excel. JSON output is the same encoding the HTTP API uses.
//
// Example usage:
//
//	format, err := exporter.ParseFormat("csv")
//	if err != nil {
//	    return err
//	}
//	err = exporter.Export(os.Stdout, format, records, exporter.Options{BOMPrefix: true})
package exporter
