package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "shiftcal/internal/errors"
)

// DefaultMaxBodySize bounds JSON request bodies
const DefaultMaxBodySize int64 = 1 << 20

// ValidationMiddleware provides request validation using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()
	_ = v.RegisterValidation("roster_url", isRosterURL)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  DefaultMaxBodySize,
	}
}

// ValidateRequest rejects oversized or malformed JSON bodies before they
// reach a handler.
func (m *ValidationMiddleware) ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > m.maxBodySize {
			m.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size",
				map[string]interface{}{
					"max_size": m.maxBodySize,
					"size":     r.ContentLength,
				},
			))
			return
		}

		if r.Body != nil {
			body, err := io.ReadAll(io.LimitReader(r.Body, m.maxBodySize+1))
			if err != nil {
				m.logger.ErrorContext(r.Context(), "failed to read request body",
					slog.String("error", err.Error()),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}
			if int64(len(body)) > m.maxBodySize {
				m.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
				return
			}
			if len(body) > 0 && !json.Valid(body) {
				m.errorHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					"INVALID_JSON",
					"Request body contains invalid JSON",
				))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		next.ServeHTTP(w, r)
	})
}

// DecodeAndValidate reads a JSON body into dst and validates it. On failure
// the problem response is already written and false is returned.
func (m *ValidationMiddleware) DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("request body is empty")
		}
		m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return false
	}
	if err := m.ValidateStruct(dst); err != nil {
		m.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// ContentTypeValidator ensures requests have proper content type
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			render.Status(r, http.StatusUnsupportedMediaType)
			render.JSON(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "url", "roster_url":
		return fmt.Sprintf("%s must be an http or https URL", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isRosterURL accepts absolute http and https URLs with a host
func isRosterURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
