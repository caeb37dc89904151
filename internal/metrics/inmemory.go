package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RatesServed            uint64
	TimeframeServed        uint64
	CurrenciesNotFound     uint64
	ResponseCacheHits      uint64
	ResponseCacheMisses    uint64
	RefreshSuccesses       uint64
	RefreshFailures        uint64
	RefreshDurationCount   uint64
	RefreshDurationTotalNs int64
	DatasetDays            int64
	DatasetCurrencies      int64
}

// InMemoryRecorder stores metrics in memory using atomic counters.
type InMemoryRecorder struct {
	ratesServed            uint64
	timeframeServed        uint64
	currenciesNotFound     uint64
	responseCacheHits      uint64
	responseCacheMisses    uint64
	refreshSuccesses       uint64
	refreshFailures        uint64
	refreshDurationCount   uint64
	refreshDurationTotalNs int64
	datasetDays            int64
	datasetCurrencies      int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RatesServed:            atomic.LoadUint64(&m.ratesServed),
		TimeframeServed:        atomic.LoadUint64(&m.timeframeServed),
		CurrenciesNotFound:     atomic.LoadUint64(&m.currenciesNotFound),
		ResponseCacheHits:      atomic.LoadUint64(&m.responseCacheHits),
		ResponseCacheMisses:    atomic.LoadUint64(&m.responseCacheMisses),
		RefreshSuccesses:       atomic.LoadUint64(&m.refreshSuccesses),
		RefreshFailures:        atomic.LoadUint64(&m.refreshFailures),
		RefreshDurationCount:   atomic.LoadUint64(&m.refreshDurationCount),
		RefreshDurationTotalNs: atomic.LoadInt64(&m.refreshDurationTotalNs),
		DatasetDays:            atomic.LoadInt64(&m.datasetDays),
		DatasetCurrencies:      atomic.LoadInt64(&m.datasetCurrencies),
	}
}

// IncRatesServed increments the rates query counter.
func (m *InMemoryRecorder) IncRatesServed() {
	atomic.AddUint64(&m.ratesServed, 1)
}

// IncTimeframeServed increments the timeframe query counter.
func (m *InMemoryRecorder) IncTimeframeServed() {
	atomic.AddUint64(&m.timeframeServed, 1)
}

// IncCurrenciesNotFound increments the unknown-currency counter.
func (m *InMemoryRecorder) IncCurrenciesNotFound() {
	atomic.AddUint64(&m.currenciesNotFound, 1)
}

// IncResponseCacheHit increments the response cache hit counter.
func (m *InMemoryRecorder) IncResponseCacheHit() {
	atomic.AddUint64(&m.responseCacheHits, 1)
}

// IncResponseCacheMiss increments the response cache miss counter.
func (m *InMemoryRecorder) IncResponseCacheMiss() {
	atomic.AddUint64(&m.responseCacheMisses, 1)
}

// IncRefreshSuccess increments the successful refresh counter.
func (m *InMemoryRecorder) IncRefreshSuccess() {
	atomic.AddUint64(&m.refreshSuccesses, 1)
}

// IncRefreshFailure increments the failed refresh counter.
func (m *InMemoryRecorder) IncRefreshFailure() {
	atomic.AddUint64(&m.refreshFailures, 1)
}

// ObserveRefreshDuration records a refresh duration.
func (m *InMemoryRecorder) ObserveRefreshDuration(duration time.Duration) {
	atomic.AddUint64(&m.refreshDurationCount, 1)
	atomic.AddInt64(&m.refreshDurationTotalNs, duration.Nanoseconds())
}

// SetDatasetDays records the number of days in the live dataset.
func (m *InMemoryRecorder) SetDatasetDays(days int) {
	atomic.StoreInt64(&m.datasetDays, int64(days))
}

// SetDatasetCurrencies records the number of currencies in the live dataset.
func (m *InMemoryRecorder) SetDatasetCurrencies(currencies int) {
	atomic.StoreInt64(&m.datasetCurrencies, int64(currencies))
}
