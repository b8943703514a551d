// Package shiftscan extracts employee shift records from roster grids.
//
// Rosters are irregular spreadsheets: a band of date headers near the top,
// shift-time labels in the column left of each block of dates, and employee
// names scattered in the cells between. The scanner locates those three
// signals and correlates them into domain.ShiftRecord values.
//
// # Strategies
//
// The canonical strategy is date-anchored. Dates are found in the header
// band and grouped into sections; for each date the scan runs in two phases:
//
//	1. primary: the row directly below the date row is the designated lead
//	   row. A match there wins for that employee and date.
//	2. shift rows: every shift-time label below the date row is tried in
//	   order until all searched employees are satisfied.
//
// The name-anchored strategy finds names first and walks up to the nearest
// date and left to the nearest shift time. It is a fallback for sheets
// without a header band and is applied to whole sheets, never per cell.
//
// # Determinism
//
// The package does no I/O and never reads the wall clock. Year inference and
// past-date filtering use the reference instant passed in ScanRequest, and
// diagnostics go to the EventSink passed with each scan.
package shiftscan
