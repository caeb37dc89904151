// Package model defines domain entities for the application.
package model

import (
	"regexp"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// EUR is the reference currency of the ECB dataset. Every day carries a
// synthetic EUR rate of 1 so conversions and filters treat it like any
// other currency.
const EUR = "EUR"

// DateLayout is the wire format for dataset dates.
const DateLayout = "2006-01-02"

// rebaseScale is the number of decimal places kept when rebasing rates.
const rebaseScale = 12

// currencyCodeRegex matches ISO 4217 style three-letter codes.
var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// IsCurrencyCode reports whether s looks like a currency code.
// Format-invalid codes are rejected before any dataset lookup.
func IsCurrencyCode(s string) bool {
	return currencyCodeRegex.MatchString(s)
}

// Day holds the reference rates quoted on a single calendar date.
// Rates are quoted against EUR.
type Day struct {
	Date  time.Time
	Rates map[string]decimal.Decimal
}

// Rebase re-quotes the day's rates against the given base currency.
// Returns false if the base is not quoted on this day.
func (d Day) Rebase(base string) (Day, bool) {
	baseRate, ok := d.Rates[base]
	if !ok || baseRate.IsZero() {
		return Day{}, false
	}

	if base == EUR {
		return d, true
	}

	rates := make(map[string]decimal.Decimal, len(d.Rates))
	for code, rate := range d.Rates {
		rates[code] = rate.DivRound(baseRate, rebaseScale)
	}

	return Day{Date: d.Date, Rates: rates}, true
}

// Filter returns a copy of the day keeping only the given currencies.
// An empty filter keeps everything.
func (d Day) Filter(to []string) Day {
	if len(to) == 0 {
		return d
	}

	rates := make(map[string]decimal.Decimal, len(to))
	for _, code := range to {
		if rate, ok := d.Rates[code]; ok {
			rates[code] = rate
		}
	}

	return Day{Date: d.Date, Rates: rates}
}

// Dataset is an immutable snapshot of the full rates history.
// Days are sorted ascending by date, currencies sorted ascending by code.
// A Dataset is never mutated after construction; refresh builds a new one.
type Dataset struct {
	ID         string
	Days       []Day
	Currencies []string
	FetchedAt  time.Time
}

// NewDataset builds a snapshot from parsed days. It sorts days ascending,
// injects the synthetic EUR entry and collects the sorted currency list.
func NewDataset(days []Day, fetchedAt time.Time) *Dataset {
	one := decimal.NewFromInt(1)
	symbols := make(map[string]struct{})

	for i := range days {
		if days[i].Rates == nil {
			days[i].Rates = make(map[string]decimal.Decimal, 1)
		}
		days[i].Rates[EUR] = one
		for code := range days[i].Rates {
			symbols[code] = struct{}{}
		}
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	currencies := make([]string, 0, len(symbols))
	for code := range symbols {
		currencies = append(currencies, code)
	}
	sort.Strings(currencies)

	return &Dataset{
		ID:         ulid.Make().String(),
		Days:       days,
		Currencies: currencies,
		FetchedAt:  fetchedAt,
	}
}

// IsEmpty reports whether the dataset has no days.
func (ds *Dataset) IsEmpty() bool {
	return ds == nil || len(ds.Days) == 0
}

// Timeframe returns the first and last dates covered by the dataset.
func (ds *Dataset) Timeframe() (first, last time.Time, ok bool) {
	if ds.IsEmpty() {
		return time.Time{}, time.Time{}, false
	}
	return ds.Days[0].Date, ds.Days[len(ds.Days)-1].Date, true
}

// HasCurrency reports whether the currency is quoted anywhere in the dataset.
func (ds *Dataset) HasCurrency(code string) bool {
	if ds == nil {
		return false
	}
	i := sort.SearchStrings(ds.Currencies, code)
	return i < len(ds.Currencies) && ds.Currencies[i] == code
}

// indexOn resolves a date to a day index. An exact match wins; otherwise
// the nearest preceding day is used, clamped to the first day.
func (ds *Dataset) indexOn(date time.Time) int {
	i := sort.Search(len(ds.Days), func(i int) bool {
		return !ds.Days[i].Date.Before(date)
	})

	if i < len(ds.Days) && ds.Days[i].Date.Equal(date) {
		return i
	}
	if i == 0 {
		return 0
	}
	return i - 1
}

// DayOn returns the day for the given date, falling back to the nearest
// preceding day. The zero date means the latest day.
func (ds *Dataset) DayOn(date time.Time) (Day, bool) {
	if ds.IsEmpty() {
		return Day{}, false
	}
	if date.IsZero() {
		return ds.Days[len(ds.Days)-1], true
	}
	return ds.Days[ds.indexOn(date)], true
}

// Range returns the days between start and end, both inclusive. A zero
// start means the first day and a zero end the latest. A start between
// two days rounds down to the preceding day, an end rounds up.
func (ds *Dataset) Range(start, end time.Time) []Day {
	if ds.IsEmpty() {
		return nil
	}

	lo := 0
	if !start.IsZero() {
		lo = ds.indexOn(start)
	}

	hi := len(ds.Days) - 1
	if !end.IsZero() {
		i := sort.Search(len(ds.Days), func(i int) bool {
			return !ds.Days[i].Date.Before(end)
		})
		if i >= len(ds.Days) {
			hi = len(ds.Days) - 1
		} else {
			hi = i
		}
	}

	if lo > hi {
		return nil
	}
	return ds.Days[lo : hi+1]
}
