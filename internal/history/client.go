package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
	"ticker-alerts/pkg/utils"
)

// ClientConfig holds configuration for the HTTP history client.
type ClientConfig struct {
	ClosingPriceURL string
	RatioURL        string
	Timeout         time.Duration
	MaxRetries      int
}

// Client fetches series from the historical-data service over HTTP.
type Client struct {
	cfg    ClientConfig
	client *http.Client
	retry  utils.RetryConfig
}

// NewClient creates a new history client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	retry := utils.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		retry:  retry,
	}
}

// seriesPoint is the wire shape of one observation.
type seriesPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// CloseSeries implements Provider.
func (c *Client) CloseSeries(ctx context.Context, symbol string) (models.Series, error) {
	return c.fetch(ctx, c.cfg.ClosingPriceURL, "close", symbol)
}

// RatioSeries implements Provider.
func (c *Client) RatioSeries(ctx context.Context, symbol string) (models.Series, error) {
	return c.fetch(ctx, c.cfg.RatioURL, "ratio", symbol)
}

func (c *Client) fetch(ctx context.Context, url, dataType, symbol string) (models.Series, error) {
	body, err := json.Marshal(map[string]string{"ticker": symbol})
	if err != nil {
		return nil, err
	}

	var raw []seriesPoint
	err = utils.Retry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("request failed [%d]: %s", resp.StatusCode, payload)
		}

		raw = raw[:0]
		return json.NewDecoder(resp.Body).Decode(&raw)
	})
	if err != nil {
		return nil, errors.NewDataError(dataType, symbol, "fetch failed", err)
	}

	series := make(models.Series, 0, len(raw))
	for _, p := range raw {
		date, err := time.ParseInLocation("2006-01-02", p.Time, time.Local)
		if err != nil {
			continue
		}
		series = append(series, models.SeriesPoint{Date: date, Value: p.Value})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	if len(series) == 0 {
		return nil, errors.NewDataError(dataType, symbol, "empty series", errors.ErrDataUnavailable)
	}
	return series, nil
}
