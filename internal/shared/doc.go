// Package shared holds helpers used across the shiftcal packages.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A capturing slog handler with assertion helpers
//	- Roster workbook fixtures built with excelize
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    data := testutil.RosterXLSX(t, testutil.WeekRoster("1/4-7/4"))
//	    // load data, then inspect handler.GetRecords()
//	}
//
// Nothing in this package carries business logic.
package shared
