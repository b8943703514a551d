// Package services implements the business logic layer of shiftcal. It sits
// between the HTTP handlers and the roster pipeline so handlers only deal
// with transport concerns.
//
// # Pipeline
//
// ShiftService runs one request end to end:
//
//	fetch.Client.Download  → roster bytes
//	workbook.Load          → visible sheets as grids
//	shiftscan.Engine.Scan  → sorted shift records
//	calendar.Render        → iCalendar document
//	calendarsync.Syncer    → optional upsert into Google Calendar
//
// Each stage runs in its own span and the request is recorded in the
// ScanMetrics instruments.
//
// # Errors
//
// Failures are returned as *errors.AppError wrapping one of the package
// sentinels, so callers can match with errors.Is and the HTTP layer can map
// the AppError type to a status code:
//
//	ErrInvalidInput       → validation (400)
//	ErrDownloadFailed     → network (400)
//	ErrWorkbookUnreadable → parsing (422)
//
// Calendar sync failures never fail the request. They are logged, counted
// and recorded on the span.
package services
