package workbook

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shiftcal/pkg/contracts/domain"
)

// Options controls how a workbook is loaded
type Options struct {
	// IncludeHidden also returns hidden sheets
	IncludeHidden bool
	// RawTitles keeps sheet names as they appear in the file
	RawTitles bool
	// Charset is used to decode legacy xls strings
	Charset string
	Logger  *slog.Logger
}

// DefaultOptions returns the options used by the service
func DefaultOptions() Options {
	return Options{Charset: "utf-8"}
}

// Workbook is a loaded roster file
type Workbook struct {
	Format string // "xlsx" or "xls"
	Sheets []domain.Sheet
	// Hidden lists the titles of sheets left out for visibility
	Hidden []string
	// Skipped holds sheets that could not be read
	Skipped []*SourceReadError
}

// Load reads a workbook from memory; filename selects the format
func Load(data []byte, filename string, opts Options) (*Workbook, error) {
	if opts.Charset == "" {
		opts.Charset = "utf-8"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "workbook"), slog.String("file", filepath.Base(filename)))

	var (
		wb  *Workbook
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xls":
		wb, err = loadXLS(data, opts)
	case ".xlsx", ".xlsm", "":
		wb, err = loadXLSX(data, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	for _, skipped := range wb.Skipped {
		logger.Warn("Sheet skipped", slog.String("sheet", skipped.Sheet), slog.String("error", skipped.Err.Error()))
	}
	logger.Info("Workbook loaded",
		slog.String("format", wb.Format),
		slog.Int("sheets", len(wb.Sheets)),
		slog.Int("hidden", len(wb.Hidden)),
		slog.Int("skipped", len(wb.Skipped)))
	return wb, nil
}

// LoadFile reads a workbook from disk
func LoadFile(path string, opts Options) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return Load(data, path, opts)
}

func (o Options) title(raw string) string {
	if o.RawTitles {
		return strings.TrimSpace(raw)
	}
	return NormalizeTitle(raw)
}

// trimCell trims text cells and drops ones that become blank
func trimCell(c domain.Cell) domain.Cell {
	if c.Kind != domain.CellText {
		return c
	}
	return domain.TextCell(strings.TrimSpace(c.Text))
}
