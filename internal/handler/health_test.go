package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fxrates/fxrates/internal/service"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) Ping(ctx context.Context) error { return s.err }

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler(service.NewRatesService(nil), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		db         HealthChecker
		cache      HealthChecker
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "ready without backends",
			ready:      true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{
				"dataset":  "ok",
				"postgres": "not configured",
				"redis":    "not configured",
			},
		},
		{
			name:       "no dataset loaded",
			ready:      false,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "healthy backends",
			ready:      true,
			db:         &stubChecker{},
			cache:      &stubChecker{},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{
				"dataset":  "ok",
				"postgres": "ok",
				"redis":    "ok",
			},
		},
		{
			name:       "failing backend",
			ready:      true,
			db:         &stubChecker{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewRatesService(nil)
			if tt.ready {
				svc = newTestService(t)
			}

			h := NewHealthHandler(svc, tt.db, tt.cache)

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()

			h.Readyz(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			if tt.wantChecks == nil {
				return
			}
			var response HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			for key, want := range tt.wantChecks {
				if got := response.Checks[key]; got != want {
					t.Errorf("check %q = %q, want %q", key, got, want)
				}
			}
		})
	}
}
