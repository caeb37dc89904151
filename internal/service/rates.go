// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fxrates/fxrates/internal/metrics"
	"github.com/fxrates/fxrates/internal/model"
)

// ErrNoRates is returned when no dataset has been loaded yet, or when a
// query resolves to an empty set of days.
var ErrNoRates = errors.New("no rates available")

// CurrenciesNotFoundError reports the currencies a query named that the
// dataset does not quote.
type CurrenciesNotFoundError struct {
	Currencies []string
}

func (e *CurrenciesNotFoundError) Error() string {
	return fmt.Sprintf("currencies not found: %s", strings.Join(e.Currencies, ", "))
}

// RatesQuery selects the rates for a single day.
// A zero Date means the latest day, an empty From means EUR and an empty
// To returns every currency.
type RatesQuery struct {
	Date time.Time
	From string
	To   []string
}

// TimeframeQuery selects the rates for a span of days.
type TimeframeQuery struct {
	Start time.Time
	End   time.Time
	From  string
	To    []string
}

// RatesService answers conversion queries against the live dataset.
// The dataset itself is immutable; refresh swaps in a new snapshot.
type RatesService struct {
	mu      sync.RWMutex
	dataset *model.Dataset
	metrics metrics.Recorder
}

// NewRatesService creates a RatesService with no dataset loaded.
func NewRatesService(recorder metrics.Recorder) *RatesService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RatesService{metrics: recorder}
}

// Swap replaces the live dataset. Readers never observe a partial swap.
func (s *RatesService) Swap(ds *model.Dataset) {
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	if ds != nil {
		s.metrics.SetDatasetDays(len(ds.Days))
		s.metrics.SetDatasetCurrencies(len(ds.Currencies))
	}
}

// Dataset returns the live dataset snapshot, which may be nil before the
// first load completes.
func (s *RatesService) Dataset() *model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Ready reports whether a dataset is loaded and non-empty.
func (s *RatesService) Ready() bool {
	return !s.Dataset().IsEmpty()
}

// Overview returns the available currencies and the covered timeframe.
func (s *RatesService) Overview() (currencies []string, first, last time.Time, err error) {
	ds := s.Dataset()

	first, last, ok := ds.Timeframe()
	if !ok {
		return nil, time.Time{}, time.Time{}, ErrNoRates
	}

	return ds.Currencies, first, last, nil
}

// RatesOn resolves a single-day query. An unknown date falls back to the
// nearest preceding day; unknown currencies produce a
// CurrenciesNotFoundError, including the case where the base currency is
// not quoted on the resolved day.
func (s *RatesService) RatesOn(q RatesQuery) (model.Day, error) {
	ds := s.Dataset()
	if ds.IsEmpty() {
		return model.Day{}, ErrNoRates
	}

	base, to, err := s.resolveConversion(ds, q.From, q.To)
	if err != nil {
		return model.Day{}, err
	}

	day, ok := ds.DayOn(q.Date)
	if !ok {
		return model.Day{}, ErrNoRates
	}

	rebased, ok := day.Rebase(base)
	if !ok {
		// The base exists somewhere in the dataset but not on this day.
		s.metrics.IncCurrenciesNotFound()
		return model.Day{}, &CurrenciesNotFoundError{Currencies: []string{base}}
	}

	s.metrics.IncRatesServed()
	return rebased.Filter(to), nil
}

// RatesRange resolves a timeframe query. Days where the base currency is
// not quoted are skipped rather than failing the whole span.
func (s *RatesService) RatesRange(q TimeframeQuery) ([]model.Day, error) {
	ds := s.Dataset()
	if ds.IsEmpty() {
		return nil, ErrNoRates
	}

	base, to, err := s.resolveConversion(ds, q.From, q.To)
	if err != nil {
		return nil, err
	}

	span := ds.Range(q.Start, q.End)

	days := make([]model.Day, 0, len(span))
	for _, day := range span {
		rebased, ok := day.Rebase(base)
		if !ok {
			continue
		}
		days = append(days, rebased.Filter(to))
	}

	if len(days) == 0 {
		return nil, ErrNoRates
	}

	s.metrics.IncTimeframeServed()
	return days, nil
}

// resolveConversion validates the base and target currencies against the
// dataset. All unknown targets are reported together.
func (s *RatesService) resolveConversion(ds *model.Dataset, from string, to []string) (string, []string, error) {
	base := from
	if base == "" {
		base = model.EUR
	} else if !model.IsCurrencyCode(base) || !ds.HasCurrency(base) {
		s.metrics.IncCurrenciesNotFound()
		return "", nil, &CurrenciesNotFoundError{Currencies: []string{base}}
	}

	var notFound []string
	for _, code := range to {
		if !model.IsCurrencyCode(code) || !ds.HasCurrency(code) {
			notFound = append(notFound, code)
		}
	}
	if len(notFound) > 0 {
		s.metrics.IncCurrenciesNotFound()
		return "", nil, &CurrenciesNotFoundError{Currencies: notFound}
	}

	return base, to, nil
}
