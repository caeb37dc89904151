package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitIP_DisabledPassesThrough(t *testing.T) {
	mw := RateLimitIP(RateLimitConfig{Logger: testLogger(), Enabled: false})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rates", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestRateLimitIP_NoCachePassesThrough(t *testing.T) {
	mw := RateLimitIP(RateLimitConfig{Logger: testLogger(), Enabled: true, Cache: nil})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rates", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestSetRateLimitHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	resetAt := time.Unix(1700000000, 0)

	setRateLimitHeaders(rec, 60, 45, resetAt)

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("X-RateLimit-Limit = %s, want 60", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "45" {
		t.Errorf("X-RateLimit-Remaining = %s, want 45", got)
	}
	if got := rec.Header().Get("X-RateLimit-Reset"); got != "1700000000" {
		t.Errorf("X-RateLimit-Reset = %s, want 1700000000", got)
	}
}

func TestWriteRateLimitError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeRateLimitError(rec, 5*time.Second)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %s", ct)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "remote addr only",
			remote: "10.0.0.1:1234",
			want:   "10.0.0.1:1234",
		},
		{
			name:    "x-forwarded-for single",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5"},
			remote:  "10.0.0.1:1234",
			want:    "203.0.113.5",
		},
		{
			name:    "x-forwarded-for chain takes first",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 70.41.3.18"},
			remote:  "10.0.0.1:1234",
			want:    "203.0.113.5",
		},
		{
			name:    "x-real-ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			remote:  "10.0.0.1:1234",
			want:    "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %s, want %s", got, tt.want)
			}
		})
	}
}
