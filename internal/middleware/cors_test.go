package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		origins []string
		dev     bool
		origin  string
		allowed bool
	}{
		{"configured origin", []string{"https://carmine.example"}, false, "https://carmine.example", true},
		{"foreign origin in production", []string{"https://carmine.example"}, false, "https://evil.example", false},
		{"any origin in development", nil, true, "http://localhost:5173", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := CORSMiddleware(tc.origins, tc.dev)(ok)

			req := httptest.NewRequest("GET", "/api/marketplace/categories", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			got := w.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Errorf("expected origin %q to be reflected, got %q", tc.origin, got)
			}
			if !tc.allowed && got != "" {
				t.Errorf("expected origin to be refused, got %q", got)
			}
			if tc.allowed && w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("credentials must be allowed for the session cookie")
			}
		})
	}
}
