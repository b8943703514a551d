// Package http implements the HTTP handlers of the shiftcal web service.
// Handlers only parse requests and format responses; the roster pipeline
// lives in the services package.
//
// # Endpoints
//
//	POST /api/process      roster link → text/calendar attachment shifts.ics
//	POST /api/shifts       roster link → JSON list of shift records
//	GET  /api/health       scanner and calendar sync status
//	GET  /api/health/live  liveness with runtime details
//	GET  /api/version      build information
//	GET  /metrics          Prometheus scrape endpoint
//
// Both roster endpoints take the same body:
//
//	{
//	    "fileUrl": "https://example.com/roster.xlsx",
//	    "name_to_search": "Emilie",
//	    "names": ["Sam"],
//	    "google_token": "optional access token"
//	}
//
// # Error Handling
//
// Failures are written by errors.ErrorHandler as RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/roster/unreadable",
//	    "title": "Roster Unreadable",
//	    "status": 422,
//	    "detail": "[PARSING] could not read roster workbook: ...",
//	    "instance": "/api/process"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a mocked ShiftServiceInterface.
package http
