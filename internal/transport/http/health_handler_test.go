package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/services"
	"shiftcal/internal/shared/testutil"
	"shiftcal/internal/shiftscan"
	"shiftcal/pkg/contracts"
)

type noDownloads struct{ services.Downloader }

func newHealthRouter(t *testing.T, withScanner bool) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	var shifts *services.ShiftService
	if withScanner {
		engine, err := shiftscan.NewEngine(shiftscan.DefaultParams())
		require.NoError(t, err)
		shifts, err = services.NewShiftService(services.ShiftServiceConfig{
			Engine:     engine,
			Downloader: noDownloads{},
			Location:   time.UTC,
			Logger:     logger,
		})
		require.NoError(t, err)
	}

	r := chi.NewRouter()
	r.Route("/api", NewHealthHandler(services.NewHealthService(shifts, logger), logger).RegisterRoutes)
	return r
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		endpoint       string
		withScanner    bool
		expectedStatus int
		checkResponse  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "healthy",
			endpoint:       "/api/health",
			withScanner:    true,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "healthy", body["status"])
				assert.Equal(t, contracts.Version, body["version"])
				assert.Contains(t, body["services"], "scanner")
			},
		},
		{
			name:           "without scanner",
			endpoint:       "/api/health",
			expectedStatus: http.StatusServiceUnavailable,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "unhealthy", body["status"])
			},
		},
		{
			name:           "liveness",
			endpoint:       "/api/health/live",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "alive", body["status"])
				assert.Contains(t, body, "runtime")
			},
		},
		{
			name:           "version",
			endpoint:       "/api/version",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, contracts.Version, body["version"])
				assert.Contains(t, body, "go_version")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.endpoint, nil)
			rec := httptest.NewRecorder()
			newHealthRouter(t, tt.withScanner).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkResponse(t, body)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "disabled")
	})

	t.Run("delegates to exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# HELP shift_process_requests_total\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exporter).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "shift_process_requests_total")
	})
}
