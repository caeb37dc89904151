package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxrates/fxrates/internal/handler/dto"
	"github.com/fxrates/fxrates/internal/metrics"
	"github.com/fxrates/fxrates/internal/model"
	"github.com/fxrates/fxrates/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func newTestService(t *testing.T) *service.RatesService {
	t.Helper()

	day := func(d string, rates map[string]float64) model.Day {
		converted := make(map[string]decimal.Decimal, len(rates))
		for code, rate := range rates {
			converted[code] = decimal.NewFromFloat(rate)
		}
		return model.Day{Date: date(t, d), Rates: converted}
	}

	svc := service.NewRatesService(metrics.NewInMemory())
	svc.Swap(model.NewDataset([]model.Day{
		day("2024-01-03", map[string]float64{"USD": 1.09, "GBP": 0.87}),
		day("2024-01-04", map[string]float64{"USD": 1.10, "GBP": 0.86, "JPY": 158.5}),
		day("2024-01-05", map[string]float64{"USD": 1.12}),
	}, time.Now().UTC()))
	return svc
}

func newRatesHandler(t *testing.T) *RatesHandler {
	return NewRatesHandler(newTestService(t), nil, 0, testLogger(), metrics.NewInMemory())
}

func TestRatesHandler_Index(t *testing.T) {
	h := newRatesHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response dto.IndexResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Currencies) != 4 {
		t.Errorf("expected 4 currencies, got %v", response.Currencies)
	}
	if response.Timeframe[0] != "2024-01-03" || response.Timeframe[1] != "2024-01-05" {
		t.Errorf("unexpected timeframe: %v", response.Timeframe)
	}
}

func TestRatesHandler_Index_NoDataset(t *testing.T) {
	h := NewRatesHandler(service.NewRatesService(nil), nil, 0, testLogger(), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Index(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestRatesHandler_RatesLatest(t *testing.T) {
	h := newRatesHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/rates", nil)
	rec := httptest.NewRecorder()

	h.RatesLatest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response dto.RatesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Date != "2024-01-05" {
		t.Errorf("date = %s, want 2024-01-05", response.Date)
	}
	if response.Rates["EUR"] != 1 {
		t.Errorf("EUR rate = %f, want 1", response.Rates["EUR"])
	}
	if response.Rates["USD"] != 1.12 {
		t.Errorf("USD rate = %f, want 1.12", response.Rates["USD"])
	}
}

func TestRatesHandler_Rates(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name:       "empty body serves latest",
			body:       "",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var r dto.RatesResponse
				if err := json.Unmarshal(body, &r); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if r.Date != "2024-01-05" {
					t.Errorf("date = %s, want 2024-01-05", r.Date)
				}
			},
		},
		{
			name:       "date in a gap falls back",
			body:       `{"date":"2024-01-06"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var r dto.RatesResponse
				if err := json.Unmarshal(body, &r); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if r.Date != "2024-01-05" {
					t.Errorf("date = %s, want 2024-01-05", r.Date)
				}
			},
		},
		{
			name:       "conversion with filter",
			body:       `{"date":"2024-01-04","from":"USD","to":["GBP","EUR"]}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var r dto.RatesResponse
				if err := json.Unmarshal(body, &r); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if len(r.Rates) != 2 {
					t.Errorf("expected 2 rates, got %v", r.Rates)
				}
				want := 0.86 / 1.10
				if diff := r.Rates["GBP"] - want; diff > 1e-9 || diff < -1e-9 {
					t.Errorf("GBP rate = %f, want %f", r.Rates["GBP"], want)
				}
			},
		},
		{
			name:       "unknown currency",
			body:       `{"from":"XXX"}`,
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body []byte) {
				var r dto.CurrenciesNotFoundResponse
				if err := json.Unmarshal(body, &r); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if len(r.CurrenciesNotFound) != 1 || r.CurrenciesNotFound[0] != "XXX" {
					t.Errorf("unexpected currencies: %v", r.CurrenciesNotFound)
				}
			},
		},
		{
			name:       "base missing on resolved day",
			body:       `{"date":"2024-01-05","from":"JPY"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "lowercase code rejected",
			body:       `{"from":"usd"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid date",
			body:       `{"date":"January 5th"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON",
			body:       `{"date":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRatesHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/rates", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Rates(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}

func TestRatesHandler_Timeframe(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFrame  [2]string
		wantDays   int
	}{
		{
			name:       "empty bounds cover everything",
			body:       `{"timeframe":[null,null]}`,
			wantStatus: http.StatusOK,
			wantFrame:  [2]string{"2024-01-03", "2024-01-05"},
			wantDays:   3,
		},
		{
			name:       "bounded",
			body:       `{"timeframe":["2024-01-04","2024-01-05"]}`,
			wantStatus: http.StatusOK,
			wantFrame:  [2]string{"2024-01-04", "2024-01-05"},
			wantDays:   2,
		},
		{
			name:       "base gaps are skipped",
			body:       `{"timeframe":[null,null],"from":"JPY"}`,
			wantStatus: http.StatusOK,
			wantFrame:  [2]string{"2024-01-04", "2024-01-04"},
			wantDays:   1,
		},
		{
			name:       "unknown target",
			body:       `{"timeframe":[null,null],"to":["ZZZ"]}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid bound",
			body:       `{"timeframe":["soon",null]}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRatesHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/rates/timeframe", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Timeframe(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var response dto.TimeframeResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if response.Timeframe != tt.wantFrame {
				t.Errorf("timeframe = %v, want %v", response.Timeframe, tt.wantFrame)
			}
			if len(response.Rates) != tt.wantDays {
				t.Errorf("expected %d days, got %d", tt.wantDays, len(response.Rates))
			}
		})
	}
}
