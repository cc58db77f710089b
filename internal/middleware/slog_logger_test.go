package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cyclelog/internal/middleware"
)

func TestSlogLogger(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		status    int
		body      string
		wantLevel string
	}{
		{name: "month view", method: http.MethodGet, path: "/api/calendar/2024/1", status: http.StatusOK, body: `{"year":2024}`, wantLevel: "INFO"},
		{name: "declined delete", method: http.MethodDelete, path: "/api/entries/abc", status: http.StatusPreconditionRequired, wantLevel: "WARN"},
		{name: "upstream down", method: http.MethodPatch, path: "/api/entries/abc/bounds", status: http.StatusServiceUnavailable, wantLevel: "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			h := middleware.NewSlogLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			// Stands in for chimiddleware.RequestID earlier in the chain.
			req = req.WithContext(context.WithValue(req.Context(), chimiddleware.RequestIDKey, "req-42"))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, tt.method, line["method"])
			assert.Equal(t, tt.path, line["path"])
			assert.EqualValues(t, tt.status, line["status"])
			assert.EqualValues(t, len(tt.body), line["bytes"])
			assert.Equal(t, "req-42", line["request_id"])
			assert.NotNil(t, line["duration_ms"])
		})
	}
}
