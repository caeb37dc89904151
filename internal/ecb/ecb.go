// Package ecb downloads and parses the ECB eurofxref reference-rate dataset.
package ecb

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxrates/fxrates/internal/model"
)

// DefaultHistURL is the ECB historical dataset covering all days since 1999.
const DefaultHistURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.xml"

type envelope struct {
	Subject string `xml:"subject"`
	Sender  string `xml:"Sender>name"`
	Cubes   []cube `xml:"Cube>Cube"`
}

type cube struct {
	Date      string     `xml:"time,attr"`
	Exchanges []exchange `xml:"Cube"`
}

type exchange struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

// Parse decodes a eurofxref XML document into dataset days.
// Days with an unparseable date or rate are rejected, not skipped: a
// malformed document must never produce a partially loaded dataset.
func Parse(r io.Reader) ([]model.Day, error) {
	var env envelope
	if err := xml.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode eurofxref xml: %w", err)
	}

	days := make([]model.Day, 0, len(env.Cubes))
	for _, c := range env.Cubes {
		date, err := time.Parse(model.DateLayout, c.Date)
		if err != nil {
			return nil, fmt.Errorf("parse day date %q: %w", c.Date, err)
		}

		rates := make(map[string]decimal.Decimal, len(c.Exchanges)+1)
		for _, ex := range c.Exchanges {
			rate, err := decimal.NewFromString(ex.Rate)
			if err != nil {
				return nil, fmt.Errorf("parse rate %s=%q on %s: %w", ex.Currency, ex.Rate, c.Date, err)
			}
			rates[ex.Currency] = rate
		}

		days = append(days, model.Day{Date: date, Rates: rates})
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("eurofxref document contains no days")
	}

	return days, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(raw []byte) ([]model.Day, error) {
	return Parse(bytes.NewReader(raw))
}
