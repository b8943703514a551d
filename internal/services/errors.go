package services

import "errors"

var (
	// ErrInvalidInput means the request carries nothing to search for
	ErrInvalidInput = errors.New("invalid input")
	// ErrDownloadFailed means the roster could not be fetched
	ErrDownloadFailed = errors.New("roster download failed")
	// ErrWorkbookUnreadable means the fetched file is not a usable workbook
	ErrWorkbookUnreadable = errors.New("roster workbook unreadable")
)
