package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// utf8BOM helps Excel recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w. Headers and the BOM are skipped
// when appending.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix && !options.Append {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes to filePath, creating parent directories
func WriteCSVFile(filePath string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filePath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := WriteCSV(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
