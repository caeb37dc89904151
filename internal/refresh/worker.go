// Package refresh keeps the live dataset up to date.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxrates/fxrates/internal/ecb"
	"github.com/fxrates/fxrates/internal/metrics"
	"github.com/fxrates/fxrates/internal/model"
	"github.com/fxrates/fxrates/internal/service"
)

// DefaultInterval is the time between scheduled dataset refreshes.
// The ECB publishes reference rates once per working day.
const DefaultInterval = time.Hour

// Archive is an optional durable store for parsed days, used both to
// persist each refresh and to warm the dataset at boot when the on-disk
// snapshot is missing.
type Archive interface {
	SaveDays(ctx context.Context, days []model.Day) error
	LoadDays(ctx context.Context) ([]model.Day, error)
}

// Worker downloads the dataset on a schedule and swaps it into the
// rates service. A failed refresh keeps the last good dataset live.
type Worker struct {
	fetcher  ecb.Fetcher
	snapshot *ecb.Snapshot
	archive  Archive
	svc      *service.RatesService
	logger   *slog.Logger
	metrics  metrics.Recorder
	interval time.Duration
	trigger  chan chan error
	started  bool
}

// NewWorker creates a refresh worker. snapshot and archive may be nil
// (or disabled); the worker then only keeps the in-memory dataset fresh.
func NewWorker(
	fetcher ecb.Fetcher,
	snapshot *ecb.Snapshot,
	archive Archive,
	svc *service.RatesService,
	interval time.Duration,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		fetcher:  fetcher,
		snapshot: snapshot,
		archive:  archive,
		svc:      svc,
		logger:   logger.With("component", "refresh.worker"),
		metrics:  recorder,
		interval: interval,
		trigger:  make(chan chan error),
	}
}

// Bootstrap loads the initial dataset: the on-disk snapshot first, then
// the archive, then a fresh download. Only a download failure with no
// fallback available is fatal.
func (w *Worker) Bootstrap(ctx context.Context) error {
	if days, modTime, err := w.snapshot.Load(); err == nil {
		w.install(days, modTime, "disk")
		return nil
	} else if !errors.Is(err, ecb.ErrNoSnapshot) {
		w.logger.Warn("discarding unreadable snapshot", "error", err)
	}

	if w.archive != nil {
		days, err := w.archive.LoadDays(ctx)
		if err != nil {
			w.logger.Warn("archive load failed", "error", err)
		} else if len(days) > 0 {
			w.install(days, time.Now().UTC(), "archive")
			return nil
		}
	}

	if err := w.refreshOnce(ctx); err != nil {
		return fmt.Errorf("initial dataset load: %w", err)
	}
	return nil
}

// Run starts the refresh loop. Blocks until the context is cancelled.
// If the bootstrapped dataset is already older than the refresh interval
// (a stale cache volume), a refresh runs immediately.
func (w *Worker) Run(ctx context.Context) error {
	if w.started {
		return errors.New("worker already started")
	}
	w.started = true

	w.logger.Info("refresh worker started", "interval", w.interval)

	if ds := w.svc.Dataset(); ds == nil || time.Since(ds.FetchedAt) >= w.interval {
		if err := w.refreshOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("refresh failed", "error", err)
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("refresh worker stopping")
			return ctx.Err()
		case reply := <-w.trigger:
			reply <- w.refreshOnce(ctx)
		case <-ticker.C:
			if err := w.refreshOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("refresh failed", "error", err)
			}
		}
	}
}

// Trigger forces a refresh on the worker goroutine and waits for the
// result. Concurrent triggers queue up behind one another.
func (w *Worker) Trigger(ctx context.Context) error {
	reply := make(chan error, 1)

	select {
	case w.trigger <- reply:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refreshOnce downloads, parses and installs a new dataset snapshot.
func (w *Worker) refreshOnce(ctx context.Context) error {
	start := time.Now()

	days, raw, err := w.fetcher.Fetch(ctx)
	if err != nil {
		w.metrics.IncRefreshFailure()
		return err
	}

	ds := model.NewDataset(days, time.Now().UTC())
	w.svc.Swap(ds)

	w.metrics.IncRefreshSuccess()
	w.metrics.ObserveRefreshDuration(time.Since(start))

	w.logger.Info("dataset refreshed",
		"snapshot_id", ds.ID,
		"days", len(ds.Days),
		"currencies", len(ds.Currencies),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := w.snapshot.Store(raw); err != nil {
		// The cache volume may be missing or read-only; the service
		// keeps working, it just re-downloads on the next restart.
		w.logger.Warn("snapshot write failed", "error", err)
	}

	if w.archive != nil {
		if err := w.archive.SaveDays(ctx, ds.Days); err != nil {
			w.logger.Warn("archive write failed", "error", err)
		}
	}

	return nil
}

// install swaps in a dataset loaded from a cache source.
func (w *Worker) install(days []model.Day, fetchedAt time.Time, source string) {
	ds := model.NewDataset(days, fetchedAt)
	w.svc.Swap(ds)

	w.logger.Info("dataset loaded from cache",
		"source", source,
		"snapshot_id", ds.ID,
		"days", len(ds.Days),
		"currencies", len(ds.Currencies),
		"fetched_at", fetchedAt,
	)
}
