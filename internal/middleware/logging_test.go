package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tc := range tests {
		core, logs := observer.New(zapcore.DebugLevel)
		handler := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/listings/abc", nil))

		completed := logs.FilterMessage("Request completed").All()
		if len(completed) != 1 {
			t.Fatalf("expected one completion log, got %d", len(completed))
		}
		if completed[0].Level != tc.level {
			t.Errorf("status %d: expected level %s, got %s", tc.status, tc.level, completed[0].Level)
		}
		if got := completed[0].ContextMap()["status"]; got != int64(tc.status) {
			t.Errorf("expected status field %d, got %v", tc.status, got)
		}
	}
}
