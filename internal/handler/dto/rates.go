// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ConversionParams selects the base currency and the target currencies
// of a query. Both are optional: the base defaults to EUR, and an empty
// target list returns every currency.
type ConversionParams struct {
	From string   `json:"from,omitempty"`
	To   []string `json:"to,omitempty"`
}

// RatesRequest is the body of POST /rates. All fields are optional; an
// empty (or absent) body returns the latest day against EUR.
type RatesRequest struct {
	Date string `json:"date,omitempty"`
	ConversionParams
}

// TimeframeRequest is the body of POST /rates/timeframe. A nil start
// means the first day of the dataset, a nil end the latest.
type TimeframeRequest struct {
	Timeframe [2]*string `json:"timeframe"`
	ConversionParams
}

// IndexResponse lists the available currencies and the covered timeframe.
type IndexResponse struct {
	Currencies []string  `json:"currencies"`
	Timeframe  [2]string `json:"timeframe"`
}

// RatesResponse holds the rates of a single day.
type RatesResponse struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// TimeframeResponse holds the rates over a span of days. Timeframe
// reflects the days actually served, not the requested bounds.
type TimeframeResponse struct {
	Timeframe [2]string       `json:"timeframe"`
	Rates     []RatesResponse `json:"rates"`
}

// CurrenciesNotFoundResponse reports requested currencies missing from
// the dataset.
type CurrenciesNotFoundResponse struct {
	CurrenciesNotFound []string `json:"currencies_not_found"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}
