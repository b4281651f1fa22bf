// Package cbu fetches the official USD rate published by the Central Bank of
// Uzbekistan.
package cbu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrNoRate is returned when no endpoint produced a usable rate.
var ErrNoRate = errors.New("cbu: no rate available")

// Quote is a single published rate.
type Quote struct {
	Rate   decimal.Decimal
	Date   string
	Source string
}

type rateRow struct {
	Ccy  string `json:"Ccy"`
	Rate string `json:"Rate"`
	Date string `json:"Date"`
}

// Client reads the rate feed directly and, when that fails, through each
// configured proxy prefix in order.
type Client struct {
	httpClient *http.Client
	url        string
	proxies    []string
}

// NewClient creates a rate client. Each proxy is a prefix the escaped feed URL
// is appended to.
func NewClient(feedURL string, proxies []string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        feedURL,
		proxies:    proxies,
	}
}

// FetchUSDRate returns the first rate any endpoint yields.
func (c *Client) FetchUSDRate(ctx context.Context) (*Quote, error) {
	targets := append([]string{c.url}, c.proxyURLs()...)
	var errs []error
	for i, target := range targets {
		q, err := c.fetch(ctx, target)
		if err == nil {
			q.Source = "direct"
			if i > 0 {
				q.Source = "proxy"
			}
			return q, nil
		}
		log.Warn().Err(err).Str("url", target).Msg("Exchange rate fetch failed")
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrNoRate, errors.Join(errs...))
}

func (c *Client) proxyURLs() []string {
	out := make([]string, 0, len(c.proxies))
	escaped := url.QueryEscape(c.url)
	for _, p := range c.proxies {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p+escaped)
		}
	}
	return out
}

func (c *Client) fetch(ctx context.Context, target string) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var rows []rateRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for _, r := range rows {
		if !strings.EqualFold(r.Ccy, "USD") {
			continue
		}
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", r.Rate, err)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("non-positive rate %s", r.Rate)
		}
		return &Quote{Rate: rate, Date: r.Date}, nil
	}
	return nil, errors.New("USD rate missing from response")
}
