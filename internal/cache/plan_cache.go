package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/reseller_portal/internal/models"
)

const planKey = "catalog:plans"

// PlanCache holds the last supplier catalog snapshot.
type PlanCache struct {
	store Store
	ttl   time.Duration
}

// NewPlanCache creates a PlanCache with the given TTL.
func NewPlanCache(store Store, ttl time.Duration) *PlanCache {
	return &PlanCache{store: store, ttl: ttl}
}

// Get returns the cached plans or ErrMiss.
func (c *PlanCache) Get(ctx context.Context) ([]models.Plan, error) {
	raw, err := c.store.Get(ctx, planKey)
	if err != nil {
		return nil, err
	}
	var plans []models.Plan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plans: %w", err)
	}
	return plans, nil
}

// Set replaces the cached plans.
func (c *PlanCache) Set(ctx context.Context, plans []models.Plan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("failed to marshal plans: %w", err)
	}
	return c.store.Set(ctx, planKey, string(data), c.ttl)
}
