package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
)

// Common error types following RFC 7807
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeMethod          = "/errors/method-not-allowed"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"
)

// Domain-specific error types
const (
	TypeDownloadFailed   = "/errors/roster/download-failed"
	TypeRosterUnreadable = "/errors/roster/unreadable"
	TypeCalendarSync     = "/errors/calendar/sync-failed"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if reqID != "" {
		problem.WithExtension("trace_id", reqID)
	}
	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	_ = problem.Write(w)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "INVALID_JSON", "UNSUPPORTED_MEDIA_TYPE":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "PAYLOAD_TOO_LARGE":
		problemType = TypePayloadTooLarge
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	var problem *ProblemDetails
	switch appErr.Type {
	case ErrTypeValidation:
		problem = NewProblemDetails(http.StatusBadRequest, TypeValidation,
			"Validation Failed", appErr.Error(), r.URL.Path)
	case ErrTypeNetwork:
		problem = NewProblemDetails(http.StatusBadRequest, TypeDownloadFailed,
			"Roster Download Failed", appErr.Error(), r.URL.Path)
	case ErrTypeParsing:
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeRosterUnreadable,
			"Roster Unreadable", appErr.Error(), r.URL.Path)
	case ErrTypeCalendar:
		problem = NewProblemDetails(http.StatusBadGateway, TypeCalendarSync,
			"Calendar Sync Failed", appErr.Error(), r.URL.Path)
	default:
		// Config and unknown types never leak their cause.
		problem = NewProblemDetails(http.StatusInternalServerError, TypeInternal,
			"Internal Server Error", "An unexpected error occurred while processing your request", r.URL.Path)
	}

	problem.WithExtension("error_type", string(appErr.Type))
	if problem.Status < http.StatusInternalServerError {
		for k, v := range appErr.Context {
			problem.WithExtension(k, v)
		}
	}
	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	_ = problem.Write(w)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = problem.Write(w)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethod,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = problem.Write(w)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
