package shiftscan

import (
	"context"
	"log/slog"
)

// EventKind classifies scan diagnostics
type EventKind string

const (
	EventSheetSkipped     EventKind = "sheet_skipped"
	EventSectionSkipped   EventKind = "section_skipped"
	EventDateSkippedPast  EventKind = "date_skipped_past"
	EventFormatError      EventKind = "format_error"
	EventRecord           EventKind = "record"
	EventPrimaryMiss      EventKind = "primary_miss"
	EventStrategyFallback EventKind = "strategy_fallback"
)

// Event is one structured diagnostic emitted during a scan
type Event struct {
	Kind    EventKind
	Sheet   string
	Section int
	Row     int
	Col     int
	Detail  string
	Err     error
}

// EventSink receives scan diagnostics. Sinks used with Params.Parallel must
// be safe for concurrent use.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(Event)

// Emit calls f
func (f SinkFunc) Emit(e Event) {
	f(e)
}

// NopSink discards every event
type NopSink struct{}

// Emit does nothing
func (NopSink) Emit(Event) {}

// SlogSink forwards events to a structured logger. Sheet and section level
// events log at info, per-cell events at debug.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing to logger
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger.With(slog.String("component", "shiftscan"))}
}

// Emit logs the event
func (s *SlogSink) Emit(e Event) {
	level := slog.LevelDebug
	switch e.Kind {
	case EventSheetSkipped, EventSectionSkipped, EventStrategyFallback:
		level = slog.LevelInfo
	}

	attrs := []slog.Attr{
		slog.String("event", string(e.Kind)),
		slog.String("sheet", e.Sheet),
		slog.Int("section", e.Section),
		slog.Int("row", e.Row),
		slog.Int("col", e.Col),
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	s.logger.LogAttrs(context.Background(), level, "scan event", attrs...)
}

func sinkOrNop(s EventSink) EventSink {
	if s == nil {
		return NopSink{}
	}
	return s
}
