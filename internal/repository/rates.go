package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fxrates/fxrates/internal/model"
)

// SaveDays upserts the given days into the archive. Historical ECB data
// never changes once published, so conflicts simply overwrite in place.
func (r *Repository) SaveDays(ctx context.Context, days []model.Day) error {
	if len(days) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO rates (day, currency, rate)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, currency) DO UPDATE SET rate = EXCLUDED.rate
	`

	for _, day := range days {
		for currency, rate := range day.Rates {
			if currency == model.EUR {
				continue
			}
			batch.Queue(query, day.Date, currency, rate.String())
		}
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save rates: %w", err)
		}
	}

	return nil
}

// LoadDays reads the full archive back as dataset days, ordered by date.
func (r *Repository) LoadDays(ctx context.Context) ([]model.Day, error) {
	query := `
		SELECT day, currency, rate::text
		FROM rates
		ORDER BY day
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	defer rows.Close()

	var days []model.Day
	var current *model.Day

	for rows.Next() {
		var (
			day      time.Time
			currency string
			rate     string
		)
		if err := rows.Scan(&day, &currency, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}

		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("corrupt rate %s=%q on %s: %w", currency, rate, day.Format(model.DateLayout), err)
		}

		if current == nil || !current.Date.Equal(day) {
			days = append(days, model.Day{
				Date:  day,
				Rates: make(map[string]decimal.Decimal),
			})
			current = &days[len(days)-1]
		}
		current.Rates[currency] = parsed
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rates: %w", err)
	}

	return days, nil
}
