package workbook

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat means the file extension is not a known workbook type
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	// ErrEmptyWorkbook means the file has no sheets at all
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)

// SourceReadError reports a sheet that could not be materialized. The rest
// of the workbook is still loaded.
type SourceReadError struct {
	Sheet string
	Err   error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read sheet %q: %v", e.Sheet, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}
