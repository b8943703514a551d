package calendarsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shiftcal/internal/calendar"
	"shiftcal/pkg/contracts/domain"
)

// Summary is the remote event title for a record. Existing events on the
// same day with this title are updated in place.
func Summary(r domain.ShiftRecord) string {
	return fmt.Sprintf("Shift - [%s]", r.CellText)
}

// RecordError is a record that failed to sync
type RecordError struct {
	Record domain.ShiftRecord
	Err    error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("sync %s %s: %v", e.Record.Employee, e.Record.Date, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Result summarizes a sync run
type Result struct {
	Inserted int
	Updated  int
	Failed   []RecordError
}

// Syncer upserts records into an EventStore
type Syncer struct {
	store    EventStore
	location *time.Location
	logger   *slog.Logger
}

// NewSyncer creates a syncer; loc is the roster's time zone
func NewSyncer(store EventStore, loc *time.Location, logger *slog.Logger) *Syncer {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		store:    store,
		location: loc,
		logger:   logger.With(slog.String("component", "calendar_sync")),
	}
}

// Sync upserts every record. Failures of single records are collected in
// the result; only context cancellation stops the run early.
func (s *Syncer) Sync(ctx context.Context, records []domain.ShiftRecord) (Result, error) {
	var res Result
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		updated, err := s.upsert(ctx, r)
		if err != nil {
			s.logger.WarnContext(ctx, "Shift sync failed",
				slog.String("employee", r.Employee),
				slog.String("date", r.Date.String()),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, RecordError{Record: r, Err: err})
			continue
		}
		if updated {
			res.Updated++
		} else {
			res.Inserted++
		}
	}

	s.logger.InfoContext(ctx, "Calendar sync finished",
		slog.Int("inserted", res.Inserted),
		slog.Int("updated", res.Updated),
		slog.Int("failed", len(res.Failed)))
	return res, nil
}

func (s *Syncer) upsert(ctx context.Context, r domain.ShiftRecord) (bool, error) {
	start, end, err := calendar.StartEnd(r, s.location)
	if err != nil {
		return false, err
	}

	dayStart := r.Date.In(s.location)
	existing, err := s.store.ListDay(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return false, err
	}

	ev := RemoteEvent{
		Summary:     Summary(r),
		Description: fmt.Sprintf("%s %s (%s)", r.Employee, r.ShiftTimeText, r.SheetTitle),
		Start:       start,
		End:         end,
	}
	for _, e := range existing {
		if e.Summary == ev.Summary {
			ev.ID = e.ID
			_, err := s.store.Update(ctx, ev)
			return true, err
		}
	}
	_, err = s.store.Insert(ctx, ev)
	return false, err
}
