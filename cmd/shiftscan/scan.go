package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shiftcal/internal/calendar"
	"shiftcal/internal/config"
	"shiftcal/internal/exporter"
	"shiftcal/internal/infrastructure"
	"shiftcal/internal/shiftscan"
	"shiftcal/internal/validation"
	"shiftcal/internal/workbook"
)

type scanOptions struct {
	names         []string
	format        string
	output        string
	reference     string
	strategy      string
	timeZone      string
	inclusivePast bool
	parallel      bool
	includeHidden bool
	logLevel      string
}

func newScanCmd() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan <roster.xlsx|roster.xls>",
		Short: "Extract shifts from a roster workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.names, "name", "n", nil, "Employee name to search (repeatable)")
	f.StringVarP(&opts.format, "format", "f", "ics", "Output format: ics, json, csv")
	f.StringVarP(&opts.output, "output", "o", "", "Output file path (default: stdout)")
	f.StringVar(&opts.reference, "reference", "", "Reference date as 2006-01-02 (default: today)")
	f.StringVar(&opts.strategy, "strategy", "", "Scan strategy: date_anchored, name_anchored, auto")
	f.StringVar(&opts.timeZone, "time-zone", "", "Roster time zone (default from config)")
	f.BoolVar(&opts.inclusivePast, "inclusive-past", false, "Also drop shifts on the reference date")
	f.BoolVar(&opts.parallel, "parallel", false, "Scan sheets concurrently")
	f.BoolVar(&opts.includeHidden, "include-hidden", false, "Also scan hidden sheets")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runScan(cmd *cobra.Command, path string, opts *scanOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cfg.Logging.Level = opts.logLevel
	cfg.Logging.Output = "console"
	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	files := validation.NewFileValidator(logger)
	if err := files.ValidateRoster(path); err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	if err := files.ValidateOutput(opts.output); err != nil {
		return err
	}

	if opts.timeZone != "" {
		cfg.Calendar.TimeZone = opts.timeZone
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ref, err := referenceDate(opts.reference, loc)
	if err != nil {
		return err
	}

	params := cfg.EngineParams()
	if opts.strategy != "" {
		params.Strategy = shiftscan.Strategy(opts.strategy)
	}
	if opts.inclusivePast {
		params.PastPolicy = shiftscan.PastInclusive
	}
	if opts.parallel {
		params.Parallel = true
	}
	engine, err := shiftscan.NewEngine(params)
	if err != nil {
		return err
	}

	wbOpts := workbook.DefaultOptions()
	wbOpts.IncludeHidden = opts.includeHidden || cfg.Scan.IncludeHidden
	wbOpts.Logger = logger
	wb, err := workbook.LoadFile(path, wbOpts)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}

	records := engine.Scan(shiftscan.ScanRequest{
		Sheets:    wb.Sheets,
		Names:     opts.names,
		Reference: ref,
		Events:    shiftscan.NewSlogSink(logger),
	})
	logger.Info("Roster scanned",
		slog.String("file", path),
		slog.Int("sheets", len(wb.Sheets)),
		slog.Int("records", len(records)))

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		out = file
	}

	return exporter.Export(out, format, records, exporter.Options{
		Calendar: calendar.Options{
			Location:  loc,
			ProductID: cfg.Calendar.ProductID,
		},
		BOMPrefix: format == exporter.FormatCSV && opts.output != "",
	})
}

func referenceDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now().In(loc), nil
	}
	ref, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference date %q: %w", value, err)
	}
	return ref, nil
}
