package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRatesServed is a no-op.
func (n *NoopRecorder) IncRatesServed() {}

// IncTimeframeServed is a no-op.
func (n *NoopRecorder) IncTimeframeServed() {}

// IncCurrenciesNotFound is a no-op.
func (n *NoopRecorder) IncCurrenciesNotFound() {}

// IncResponseCacheHit is a no-op.
func (n *NoopRecorder) IncResponseCacheHit() {}

// IncResponseCacheMiss is a no-op.
func (n *NoopRecorder) IncResponseCacheMiss() {}

// IncRefreshSuccess is a no-op.
func (n *NoopRecorder) IncRefreshSuccess() {}

// IncRefreshFailure is a no-op.
func (n *NoopRecorder) IncRefreshFailure() {}

// ObserveRefreshDuration is a no-op.
func (n *NoopRecorder) ObserveRefreshDuration(duration time.Duration) {}

// SetDatasetDays is a no-op.
func (n *NoopRecorder) SetDatasetDays(days int) {}

// SetDatasetCurrencies is a no-op.
func (n *NoopRecorder) SetDatasetCurrencies(currencies int) {}
