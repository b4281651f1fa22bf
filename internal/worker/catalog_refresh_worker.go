package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// CatalogRefresher reloads the supplier catalog. Implemented by service.CatalogService.
type CatalogRefresher interface {
	Refresh(ctx context.Context) ([]models.Plan, error)
}

// CatalogRefreshWorker periodically reloads the plan catalog into the cache.
type CatalogRefreshWorker struct {
	catalog  CatalogRefresher
	interval time.Duration
}

// NewCatalogRefreshWorker constructs a CatalogRefreshWorker.
func NewCatalogRefreshWorker(catalog CatalogRefresher, interval time.Duration) *CatalogRefreshWorker {
	return &CatalogRefreshWorker{
		catalog:  catalog,
		interval: interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *CatalogRefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog refresh worker")

	// Warm the cache immediately.
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog refresh worker stopped")
			return
		}
	}
}

func (w *CatalogRefreshWorker) run(ctx context.Context) {
	start := time.Now()
	plans, err := w.catalog.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh catalog")
		return
	}
	log.Info().Int("plans", len(plans)).Dur("duration", time.Since(start)).Msg("Catalog refreshed")
}
