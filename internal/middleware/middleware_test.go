package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sentiment_dashboard/internal/logger"
	"sentiment_dashboard/internal/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware_Generates(t *testing.T) {
	var seen string
	h := middleware.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get(middleware.RequestIDHeader)
	require.Equal(t, id, seen)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestRequestIDMiddleware_KeepsIncoming(t *testing.T) {
	h := middleware.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, "abc123", w.Header().Get(middleware.RequestIDHeader))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithOutput(&buf)

	h := middleware.RequestIDMiddleware(middleware.LoggingMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadRequest)
		}),
	))

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "Request processed", entry["message"])
	require.Equal(t, "POST", entry["method"])
	require.Equal(t, "/upload", entry["path"])
	require.Equal(t, float64(http.StatusBadRequest), entry["status"])
	require.Equal(t, "req-1", entry["request_id"])
}
