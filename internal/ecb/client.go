package ecb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/fxrates/fxrates/internal/model"
)

const (
	// DefaultFetchTimeout bounds a single download attempt.
	DefaultFetchTimeout = 30 * time.Second

	retryBase       = 2 * time.Second
	retryCap        = 30 * time.Second
	maxFetchRetries = 4
)

// Fetcher loads the full rates history from some source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Day, []byte, error)
}

// Client downloads the historical dataset from the ECB.
type Client struct {
	url       string
	client    *http.Client
	retryBase time.Duration
}

// NewClient creates a Client for the given dataset URL.
// An empty url falls back to DefaultHistURL.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultHistURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Client{
		url:       url,
		client:    &http.Client{Timeout: timeout},
		retryBase: retryBase,
	}
}

// Fetch downloads and parses the dataset. Transient failures (network
// errors, 5xx, 429) are retried with capped exponential backoff; the raw
// document is returned alongside the parsed days so callers can persist it.
func (c *Client) Fetch(ctx context.Context) ([]model.Day, []byte, error) {
	backoff := retry.WithCappedDuration(retryCap, retry.NewExponential(c.retryBase))
	backoff = retry.WithMaxRetries(maxFetchRetries, backoff)

	var raw []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		raw, err = c.download(ctx)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch dataset: %w", err)
	}

	days, err := ParseBytes(raw)
	if err != nil {
		return nil, nil, err
	}

	return days, raw, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.url)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("read response: %w", err))
	}

	return raw, nil
}
