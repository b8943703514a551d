package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"shiftcal/internal/shared/testutil"
)

func TestRecoveryMiddleware(t *testing.T) {
	logger, buf := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	handler := RecoveryMiddleware(h)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("scan exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/process", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotContains(t, body, "panic")
	assert.True(t, buf.ContainsMessage("panic recovered"))
}

func TestRecoveryMiddlewarePassThrough(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := RecoveryMiddleware(NewErrorHandler(logger, true))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecoveryMiddlewareRepanicsAbort(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := RecoveryMiddleware(NewErrorHandler(logger, false))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
