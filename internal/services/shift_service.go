package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shiftcal/internal/calendar"
	"shiftcal/internal/calendarsync"
	apierrors "shiftcal/internal/errors"
	"shiftcal/internal/fetch"
	"shiftcal/internal/infrastructure"
	"shiftcal/internal/shiftscan"
	"shiftcal/internal/workbook"
	api "shiftcal/pkg/contracts/api/v1"
	"shiftcal/pkg/contracts/domain"
)

// Downloader fetches a roster file
type Downloader interface {
	Download(ctx context.Context, rawURL string) (*fetch.Download, error)
}

// StoreFactory opens the calendar of the user owning token
type StoreFactory func(ctx context.Context, token string) (calendarsync.EventStore, error)

// ShiftServiceConfig wires a ShiftService
type ShiftServiceConfig struct {
	Engine     *shiftscan.Engine
	Downloader Downloader
	Workbook   workbook.Options
	// Location is the roster's time zone. It localizes the reference
	// date and the calendar events.
	Location  *time.Location
	ProductID string
	// Stores opens calendars for sync; nil disables sync
	Stores      StoreFactory
	SyncTimeout time.Duration
	Clock       func() time.Time
	Metrics     *infrastructure.ScanMetrics
	Tracer      trace.Tracer
	Logger      *slog.Logger
}

// ShiftService extracts shifts from published rosters
type ShiftService struct {
	engine     *shiftscan.Engine
	downloader Downloader
	wbOpts     workbook.Options
	location   *time.Location
	productID  string
	stores     StoreFactory
	syncWait   time.Duration
	clock      func() time.Time
	metrics    *infrastructure.ScanMetrics
	tracer     trace.Tracer
	events     shiftscan.EventSink
	base       *slog.Logger
	logger     *slog.Logger
}

// Extraction is the outcome of scanning one roster
type Extraction struct {
	Records []domain.ShiftRecord
	Format  string
	Sheets  int
	// Skipped lists sheets that were unreadable or had no date headers
	Skipped []string
	Hidden  []string
}

// NewShiftService validates the wiring and fills defaults
func NewShiftService(cfg ShiftServiceConfig) (*ShiftService, error) {
	if cfg.Engine == nil || cfg.Downloader == nil {
		return nil, fmt.Errorf("shift service needs an engine and a downloader")
	}
	if cfg.Location == nil {
		loc, err := time.LoadLocation(calendar.DefaultTimeZone)
		if err != nil {
			return nil, fmt.Errorf("load default time zone: %w", err)
		}
		cfg.Location = loc
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(infrastructure.MeterName)
	}
	if cfg.Logger == nil {
		cfg.Logger = infrastructure.GetLogger()
	}
	logger := cfg.Logger.With(slog.String("component", "shift_service"))
	cfg.Workbook.Logger = cfg.Logger

	return &ShiftService{
		engine:     cfg.Engine,
		downloader: cfg.Downloader,
		wbOpts:     cfg.Workbook,
		location:   cfg.Location,
		productID:  cfg.ProductID,
		stores:     cfg.Stores,
		syncWait:   cfg.SyncTimeout,
		clock:      cfg.Clock,
		metrics:    cfg.Metrics,
		tracer:     cfg.Tracer,
		events:     shiftscan.NewSlogSink(cfg.Logger),
		base:       cfg.Logger,
		logger:     logger,
	}, nil
}

// Extract downloads the roster and returns the shifts of the requested names
func (s *ShiftService) Extract(ctx context.Context, req api.ProcessRequest) (*Extraction, error) {
	ctx, span := s.tracer.Start(ctx, "shift.extract")
	defer span.End()

	start := time.Now()
	ext, downloaded, err := s.extract(ctx, req)

	obs := infrastructure.ScanObservation{
		Outcome:       outcome(err),
		Strategy:      string(s.engine.Params().Strategy),
		Duration:      time.Since(start),
		DownloadBytes: downloaded,
	}
	if ext != nil {
		obs.Records = len(ext.Records)
		obs.SheetsSkipped = len(ext.Skipped)
		span.SetAttributes(
			attribute.Int("shift.records", len(ext.Records)),
			attribute.Int("shift.sheets", ext.Sheets),
			attribute.String("workbook.format", ext.Format),
		)
	}
	infrastructure.RecordScanMetrics(ctx, s.metrics, obs)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return ext, nil
}

func (s *ShiftService) extract(ctx context.Context, req api.ProcessRequest) (*Extraction, int, error) {
	names := req.SearchNames()
	if !hasName(names) {
		return nil, 0, apierrors.NewAppValidationError("no names to search", ErrInvalidInput)
	}

	dl, err := s.download(ctx, req.FileURL)
	if err != nil {
		return nil, 0, err
	}

	wb, err := s.load(ctx, dl)
	if err != nil {
		return nil, len(dl.Data), err
	}

	ext := &Extraction{
		Format: wb.Format,
		Sheets: len(wb.Sheets),
		Hidden: wb.Hidden,
	}
	for _, sk := range wb.Skipped {
		ext.Skipped = append(ext.Skipped, sk.Sheet)
	}

	ext.Records, ext.Skipped = s.scan(ctx, wb.Sheets, names, ext.Skipped)

	s.logger.InfoContext(ctx, "Roster processed",
		slog.String("format", wb.Format),
		slog.Int("sheets", len(wb.Sheets)),
		slog.Int("skipped", len(ext.Skipped)),
		slog.Int("records", len(ext.Records)),
		slog.Int("names", len(names)))
	return ext, len(dl.Data), nil
}

func (s *ShiftService) download(ctx context.Context, rawURL string) (*fetch.Download, error) {
	ctx, span := s.tracer.Start(ctx, "shift.download")
	defer span.End()

	dl, err := s.downloader.Download(ctx, rawURL)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apierrors.NewNetworkError("could not download roster", fmt.Errorf("%w: %w", ErrDownloadFailed, err)).
			WithContext("file_url", rawURL)
	}
	span.SetAttributes(attribute.Int("download.bytes", len(dl.Data)))
	return dl, nil
}

func (s *ShiftService) load(ctx context.Context, dl *fetch.Download) (*workbook.Workbook, error) {
	ctx, span := s.tracer.Start(ctx, "shift.load")
	defer span.End()

	wb, err := workbook.Load(dl.Data, workbookName(dl), s.wbOpts)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.NewParsingError("could not read roster workbook", fmt.Errorf("%w: %w", ErrWorkbookUnreadable, err))
	}
	for _, sk := range wb.Skipped {
		infrastructure.AddSpanEvent(ctx, "sheet unreadable", map[string]interface{}{
			"sheet": sk.Sheet,
			"error": sk.Err.Error(),
		})
	}
	return wb, nil
}

func (s *ShiftService) scan(ctx context.Context, sheets []domain.Sheet, names, skipped []string) ([]domain.ShiftRecord, []string) {
	ctx, span := s.tracer.Start(ctx, "shift.scan")
	defer span.End()

	var (
		mu        sync.Mutex
		noHeaders = make(map[string]bool)
	)
	sink := shiftscan.SinkFunc(func(e shiftscan.Event) {
		if e.Kind == shiftscan.EventSheetSkipped {
			mu.Lock()
			noHeaders[e.Sheet] = true
			mu.Unlock()
		}
		s.events.Emit(e)
	})

	records := s.engine.Scan(shiftscan.ScanRequest{
		Sheets:    sheets,
		Names:     names,
		Reference: s.clock().In(s.location),
		Events:    sink,
	})

	// Workbook order, not event order, so parallel scans report the same list
	for _, sh := range sheets {
		if noHeaders[sh.Title] {
			skipped = append(skipped, sh.Title)
			infrastructure.AddSpanEvent(ctx, "sheet skipped", map[string]interface{}{"sheet": sh.Title})
		}
	}

	span.SetAttributes(
		attribute.Int("scan.sheets", len(sheets)),
		attribute.Int("scan.sheets_without_dates", len(noHeaders)),
		attribute.Int("scan.records", len(records)),
	)
	return records, skipped
}

// Calendar extracts the shifts and renders them as an iCalendar document.
// When the request carries a Google token the shifts are also synced; sync
// failures are logged and never fail the request.
func (s *ShiftService) Calendar(ctx context.Context, req api.ProcessRequest) ([]byte, error) {
	ext, err := s.Extract(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "shift.render")
	ics, err := calendar.Render(ext.Records, calendar.Options{
		Location:  s.location,
		ProductID: s.productID,
		Stamp:     s.clock(),
	})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		span.End()
		return nil, fmt.Errorf("render calendar: %w", err)
	}
	span.End()

	if req.GoogleToken != "" {
		s.sync(ctx, req.GoogleToken, ext.Records)
	}
	return []byte(ics), nil
}

func (s *ShiftService) sync(ctx context.Context, token string, records []domain.ShiftRecord) {
	ctx, span := s.tracer.Start(ctx, "shift.sync")
	defer span.End()

	if s.stores == nil {
		s.logger.WarnContext(ctx, "Calendar sync requested but not configured")
		return
	}
	if s.syncWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.syncWait)
		defer cancel()
	}

	store, err := s.stores(ctx, token)
	if err != nil {
		err = apierrors.NewCalendarError("could not open calendar", err)
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Calendar sync skipped", slog.String("error", err.Error()))
		return
	}

	res, err := calendarsync.NewSyncer(store, s.location, s.base).Sync(ctx, records)
	infrastructure.RecordSyncMetrics(ctx, s.metrics, res.Inserted, res.Updated, len(res.Failed))
	span.SetAttributes(
		attribute.Int("sync.inserted", res.Inserted),
		attribute.Int("sync.updated", res.Updated),
		attribute.Int("sync.failed", len(res.Failed)),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
}

// workbookName picks the name used to select the workbook reader. Names
// without a spreadsheet extension fall back to the response content type.
func workbookName(dl *fetch.Download) string {
	name := dl.Filename
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xls", ".xlsx", ".xlsm":
		return name
	}
	media, _, _ := mime.ParseMediaType(dl.ContentType)
	if media == "application/vnd.ms-excel" {
		return name + ".xls"
	}
	return name + ".xlsx"
}

func hasName(names []string) bool {
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return true
		}
	}
	return false
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(string(appErr.Type))
	}
	return "error"
}
