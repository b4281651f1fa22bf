package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/catalog"
	"github.com/GTDGit/reseller_portal/internal/metrics"
	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// CatalogService serves the plan catalog from cache, falling back to the supplier.
type CatalogService struct {
	source PlanSource
	cache  PlanCache
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(source PlanSource, cache PlanCache) *CatalogService {
	return &CatalogService{source: source, cache: cache}
}

// Plans returns the full catalog.
func (s *CatalogService) Plans(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.cache.Get(ctx)
	if err == nil {
		return plans, nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the catalog from the supplier and replaces the cached copy.
func (s *CatalogService) Refresh(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.source.ListPlans(ctx)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("catalog").Inc()
		return nil, fmt.Errorf("%w: list plans: %v", utils.ErrProvider, err)
	}
	if err := s.cache.Set(ctx, plans); err != nil {
		log.Warn().Err(err).Msg("Failed to cache catalog")
	}
	return plans, nil
}

// Search filters, sorts and paginates the catalog.
func (s *CatalogService) Search(ctx context.Context, f catalog.Filter, page, limit int) (catalog.Page, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return catalog.Page{}, err
	}
	return catalog.Paginate(catalog.Apply(plans, f), page, limit), nil
}

// Options returns the values offered by the filter pickers.
func (s *CatalogService) Options(ctx context.Context) (catalog.FilterOptions, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return catalog.FilterOptions{}, err
	}
	return catalog.Options(plans), nil
}

// FindPlan looks a plan up by id.
func (s *CatalogService) FindPlan(ctx context.Context, id string) (*models.Plan, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, utils.ErrPlanNotFound
}
