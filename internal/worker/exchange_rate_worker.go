package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/service"
)

// RateRefresher fetches and caches the live rate. Implemented by service.ExchangeRateService.
type RateRefresher interface {
	Refresh(ctx context.Context) (*service.ExchangeRate, error)
}

// ExchangeRateWorker keeps the cached USD rate fresh so requests rarely hit the feed.
type ExchangeRateWorker struct {
	fx       RateRefresher
	interval time.Duration
}

// NewExchangeRateWorker constructs an ExchangeRateWorker.
func NewExchangeRateWorker(fx RateRefresher, interval time.Duration) *ExchangeRateWorker {
	return &ExchangeRateWorker{fx: fx, interval: interval}
}

// Start runs until ctx is cancelled.
func (w *ExchangeRateWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting exchange rate worker")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Exchange rate worker stopped")
			return
		}
	}
}

func (w *ExchangeRateWorker) run(ctx context.Context) {
	r, err := w.fx.Refresh(ctx)
	if err != nil {
		// Requests keep using the cached or fallback rate.
		log.Warn().Err(err).Msg("Exchange rate refresh failed")
		return
	}
	log.Info().Str("rate", r.Rate.String()).Str("source", r.Source).Msg("Exchange rate refreshed")
}
