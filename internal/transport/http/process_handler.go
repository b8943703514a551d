package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "shiftcal/internal/errors"
	"shiftcal/internal/infrastructure"
	"shiftcal/internal/middleware"
	api "shiftcal/pkg/contracts/api/v1"
	"shiftcal/pkg/contracts/domain"
)

// CalendarFilename is the attachment name of the generated calendar
const CalendarFilename = "shifts.ics"

// ProcessHandler turns roster links into calendars
type ProcessHandler struct {
	service    ShiftServiceInterface
	validation *middleware.ValidationMiddleware
	errors     *apierrors.ErrorHandler
	logger     *slog.Logger
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(service ShiftServiceInterface, validation *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ProcessHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	if validation == nil {
		validation = middleware.NewValidationMiddleware(logger, errorHandler)
	}

	return &ProcessHandler{
		service:    service,
		validation: validation,
		errors:     errorHandler,
		logger:     logger.With(slog.String("handler", "process")),
	}
}

// Routes returns a chi router for the roster endpoints
func (h *ProcessHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/process", h.Process)
	r.Post("/shifts", h.Shifts)
	return r
}

// Process handles POST /api/process
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "process_handler.process", "/api/process")
	defer span.End()
	r = r.WithContext(ctx)

	var req api.ProcessRequest
	if !h.validation.DecodeAndValidate(w, r, &req) {
		span.SetAttributes(attribute.String("error.type", "request_validation"))
		return
	}

	h.logger.InfoContext(ctx, "calendar requested",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.Int("names", len(req.SearchNames())),
		slog.Bool("sync", req.GoogleToken != ""))

	ics, err := h.service.Calendar(ctx, req)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+CalendarFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(ics)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(ics); err != nil {
		h.logger.WarnContext(ctx, "failed to write calendar",
			slog.String("error", err.Error()))
	}
}

// Shifts handles POST /api/shifts
func (h *ProcessHandler) Shifts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "process_handler.shifts", "/api/shifts")
	defer span.End()
	r = r.WithContext(ctx)

	var req api.ProcessRequest
	if !h.validation.DecodeAndValidate(w, r, &req) {
		span.SetAttributes(attribute.String("error.type", "request_validation"))
		return
	}

	ext, err := h.service.Extract(ctx, req)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("shift.records", len(ext.Records)))

	records := ext.Records
	if records == nil {
		records = []domain.ShiftRecord{}
	}
	render.JSON(w, r, api.ShiftsResponse{
		Status:  "success",
		Data:    records,
		Count:   len(ext.Records),
		Skipped: ext.Skipped,
	})
}

func startSpan(r *http.Request, name, route string) (context.Context, trace.Span) {
	return otel.Tracer("process-handler").Start(r.Context(), name,
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.String("request_id", middleware.GetRequestID(r.Context())),
			attribute.String("trace_id", infrastructure.TraceIDFromContext(r.Context())),
		),
	)
}
