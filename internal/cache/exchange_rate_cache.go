package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateEntry is a cached exchange rate and when it was fetched.
type RateEntry struct {
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// ExchangeRateCache keeps the last fetched USD rate.
type ExchangeRateCache struct {
	store Store
	ttl   time.Duration
}

// NewExchangeRateCache creates a cache whose entries live for ttl.
func NewExchangeRateCache(store Store, ttl time.Duration) *ExchangeRateCache {
	return &ExchangeRateCache{store: store, ttl: ttl}
}

func (c *ExchangeRateCache) key(currency string) string {
	return fmt.Sprintf("fx:%s:UZS", currency)
}

// Get returns the cached entry for currency or ErrMiss.
func (c *ExchangeRateCache) Get(ctx context.Context, currency string) (*RateEntry, error) {
	raw, err := c.store.Get(ctx, c.key(currency))
	if err != nil {
		return nil, err
	}
	var e RateEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate entry: %w", err)
	}
	return &e, nil
}

// Set stores entry for currency.
func (c *ExchangeRateCache) Set(ctx context.Context, currency string, entry *RateEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal rate entry: %w", err)
	}
	return c.store.Set(ctx, c.key(currency), string(data), c.ttl)
}
