package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/reseller_portal/internal/cache"
	"github.com/GTDGit/reseller_portal/internal/metrics"
	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// ExchangeRate is the USD price in base currency.
type ExchangeRate struct {
	Base      models.Currency `json:"base"`
	Quote     models.Currency `json:"quote"`
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Fallback  bool            `json:"fallback"`
}

// ExchangeRateService resolves the USD rate from cache, the live feed, or
// the configured fallback, in that order.
type ExchangeRateService struct {
	source   RateSource
	cache    RateCache
	fallback decimal.Decimal
	now      func() time.Time
}

// NewExchangeRateService constructs an ExchangeRateService.
func NewExchangeRateService(source RateSource, cache RateCache, fallback decimal.Decimal) *ExchangeRateService {
	return &ExchangeRateService{source: source, cache: cache, fallback: fallback, now: time.Now}
}

// Rate never fails: feed errors are logged and the fallback rate is served.
func (s *ExchangeRateService) Rate(ctx context.Context) ExchangeRate {
	if entry, err := s.cache.Get(ctx, string(models.CurrencyUSD)); err == nil {
		return toRate(entry, false)
	}

	r, err := s.Refresh(ctx)
	if err == nil {
		return *r
	}

	log.Warn().Err(err).Str("fallback", s.fallback.String()).Msg("Using fallback exchange rate")
	metrics.ExchangeRateFallbacks.Inc()
	return ExchangeRate{
		Base:      models.CurrencyUSD,
		Quote:     models.CurrencyUZS,
		Rate:      s.fallback,
		Source:    "fallback",
		FetchedAt: s.now().UTC(),
		Fallback:  true,
	}
}

// Refresh fetches the live rate and caches it.
func (s *ExchangeRateService) Refresh(ctx context.Context) (*ExchangeRate, error) {
	q, err := s.source.FetchUSDRate(ctx)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("exchange_rate").Inc()
		return nil, fmt.Errorf("%w: fetch rate: %v", utils.ErrProvider, err)
	}
	entry := &cache.RateEntry{Rate: q.Rate, Source: q.Source, FetchedAt: s.now().UTC()}
	if err := s.cache.Set(ctx, string(models.CurrencyUSD), entry); err != nil {
		log.Warn().Err(err).Msg("Failed to cache exchange rate")
	}
	r := toRate(entry, false)
	return &r, nil
}

func toRate(e *cache.RateEntry, fallback bool) ExchangeRate {
	return ExchangeRate{
		Base:      models.CurrencyUSD,
		Quote:     models.CurrencyUZS,
		Rate:      e.Rate,
		Source:    e.Source,
		FetchedAt: e.FetchedAt,
		Fallback:  fallback,
	}
}
