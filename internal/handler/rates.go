package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fxrates/fxrates/internal/cache"
	"github.com/fxrates/fxrates/internal/handler/dto"
	"github.com/fxrates/fxrates/internal/metrics"
	"github.com/fxrates/fxrates/internal/model"
	"github.com/fxrates/fxrates/internal/service"
)

// RatesHandler serves the conversion endpoints.
type RatesHandler struct {
	svc      *service.RatesService
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewRatesHandler creates a new RatesHandler. cache may be nil, in which
// case responses are computed on every request.
func NewRatesHandler(svc *service.RatesService, c *cache.Cache, cacheTTL time.Duration, logger *slog.Logger, recorder metrics.Recorder) *RatesHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RatesHandler{
		svc:      svc,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
		metrics:  recorder,
	}
}

// Index returns the available currencies and the covered timeframe.
// GET /
func (h *RatesHandler) Index(w http.ResponseWriter, r *http.Request) {
	currencies, first, last, err := h.svc.Overview()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "no rates available"})
		return
	}

	writeJSON(w, http.StatusOK, dto.IndexResponse{
		Currencies: currencies,
		Timeframe: [2]string{
			first.Format(model.DateLayout),
			last.Format(model.DateLayout),
		},
	})
}

// RatesLatest returns the latest day's rates against EUR.
// GET /rates
func (h *RatesHandler) RatesLatest(w http.ResponseWriter, r *http.Request) {
	h.serveRates(w, r, dto.RatesRequest{})
}

// Rates returns the rates for a requested day scoped by an optional
// conversion. An empty body behaves like GET /rates.
// POST /rates
func (h *RatesHandler) Rates(w http.ResponseWriter, r *http.Request) {
	var req dto.RatesRequest
	if ok := decodeBody(w, r, &req); !ok {
		return
	}
	h.serveRates(w, r, req)
}

func (h *RatesHandler) serveRates(w http.ResponseWriter, r *http.Request, req dto.RatesRequest) {
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}

	// Serve out of the response cache when possible. The snapshot ID in
	// the key means a refresh starts a fresh key space.
	var cacheKey string
	if h.cache != nil {
		if ds := h.svc.Dataset(); !ds.IsEmpty() {
			cacheKey = cache.ResponseKey(ds.ID, req.Date, req.From, req.To)
			if body, err := h.cache.GetResponse(r.Context(), cacheKey); err == nil {
				h.metrics.IncResponseCacheHit()
				writeRawJSON(w, http.StatusOK, body)
				return
			}
			h.metrics.IncResponseCacheMiss()
		}
	}

	day, err := h.svc.RatesOn(service.RatesQuery{
		Date: date,
		From: req.From,
		To:   req.To,
	})
	if err != nil {
		h.writeRatesError(w, err)
		return
	}

	response := toRatesResponse(day)

	if cacheKey != "" {
		body, err := json.Marshal(response)
		if err == nil {
			if err := h.cache.SetResponse(r.Context(), cacheKey, body, h.cacheTTL); err != nil {
				h.logger.Warn("response cache write failed", "error", err)
			}
			writeRawJSON(w, http.StatusOK, body)
			return
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// Timeframe returns the rates over a span of days.
// POST /rates/timeframe
func (h *RatesHandler) Timeframe(w http.ResponseWriter, r *http.Request) {
	var req dto.TimeframeRequest
	if ok := decodeBody(w, r, &req); !ok {
		return
	}

	var start, end time.Time
	if req.Timeframe[0] != nil {
		var ok bool
		if start, ok = parseDate(w, *req.Timeframe[0]); !ok {
			return
		}
	}
	if req.Timeframe[1] != nil {
		var ok bool
		if end, ok = parseDate(w, *req.Timeframe[1]); !ok {
			return
		}
	}

	days, err := h.svc.RatesRange(service.TimeframeQuery{
		Start: start,
		End:   end,
		From:  req.From,
		To:    req.To,
	})
	if err != nil {
		h.writeRatesError(w, err)
		return
	}

	rates := make([]dto.RatesResponse, 0, len(days))
	for _, day := range days {
		rates = append(rates, toRatesResponse(day))
	}

	writeJSON(w, http.StatusOK, dto.TimeframeResponse{
		Timeframe: [2]string{rates[0].Date, rates[len(rates)-1].Date},
		Rates:     rates,
	})
}

// writeRatesError maps service errors onto API responses.
func (h *RatesHandler) writeRatesError(w http.ResponseWriter, err error) {
	var notFound *service.CurrenciesNotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, dto.CurrenciesNotFoundResponse{
			CurrenciesNotFound: notFound.Currencies,
		})
		return
	}

	if errors.Is(err, service.ErrNoRates) {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "no rates available"})
		return
	}

	h.logger.Error("rates query failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
}

// decodeBody decodes an optional JSON body. An empty body leaves the
// destination at its zero value. Returns false after writing an error
// response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "failed to read request body"})
		return false
	}
	if len(body) == 0 {
		return true
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON body"})
		return false
	}

	return true
}

// parseDate parses an optional YYYY-MM-DD date. Returns false after
// writing an error response.
func parseDate(w http.ResponseWriter, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}

	date, err := time.Parse(model.DateLayout, s)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}

	return date, true
}

func toRatesResponse(day model.Day) dto.RatesResponse {
	rates := make(map[string]float64, len(day.Rates))
	for code, rate := range day.Rates {
		f, _ := rate.Float64()
		rates[code] = f
	}

	return dto.RatesResponse{
		Date:  day.Date.Format(model.DateLayout),
		Rates: rates,
	}
}
