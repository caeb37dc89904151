// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Query metrics
	IncRatesServed()
	IncTimeframeServed()
	IncCurrenciesNotFound()

	// Response cache metrics
	IncResponseCacheHit()
	IncResponseCacheMiss()

	// Dataset refresh metrics
	IncRefreshSuccess()
	IncRefreshFailure()
	ObserveRefreshDuration(duration time.Duration)
	SetDatasetDays(days int)
	SetDatasetCurrencies(currencies int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
