package handler

import (
	"fmt"
	"net/http"

	"github.com/fxrates/fxrates/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "fxrates_rates_served_total %d\n", snap.RatesServed)
	writeMetric(w, "fxrates_timeframe_served_total %d\n", snap.TimeframeServed)
	writeMetric(w, "fxrates_currencies_not_found_total %d\n", snap.CurrenciesNotFound)

	writeMetric(w, "fxrates_response_cache_hits_total %d\n", snap.ResponseCacheHits)
	writeMetric(w, "fxrates_response_cache_misses_total %d\n", snap.ResponseCacheMisses)

	writeMetric(w, "fxrates_refresh_total{status=\"success\"} %d\n", snap.RefreshSuccesses)
	writeMetric(w, "fxrates_refresh_total{status=\"failure\"} %d\n", snap.RefreshFailures)
	writeMetric(w, "fxrates_refresh_duration_seconds_count %d\n", snap.RefreshDurationCount)
	writeMetric(w, "fxrates_refresh_duration_seconds_sum %.6f\n", float64(snap.RefreshDurationTotalNs)/1e9)

	writeMetric(w, "fxrates_dataset_days %d\n", snap.DatasetDays)
	writeMetric(w, "fxrates_dataset_currencies %d\n", snap.DatasetCurrencies)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
