// Package validation checks roster and output paths before a scan touches them.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotRoster means the path is not an .xlsx or .xls workbook
	ErrNotRoster = errors.New("not a roster workbook")
	// ErrTempFile means the path is an Office lock file such as ~$roster.xlsx
	ErrTempFile = errors.New("temporary office file")
)

// FileValidator validates the files the CLI reads and writes
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateFile checks that path exists, is a regular file and can be opened
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateRoster checks that path is a readable .xlsx or .xls workbook
func (v *FileValidator) ValidateRoster(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xls" {
		v.logger.Error("File is not a roster workbook",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %s (extension %q)", ErrNotRoster, path, ext)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary Excel file",
			slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTempFile, path)
	}
	return nil
}

// ValidateOutput ensures the directory of an output file exists and is
// writable. An empty path means stdout and always passes.
func (v *FileValidator) ValidateOutput(path string) error {
	if path == "" {
		return nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output %s is a directory", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
