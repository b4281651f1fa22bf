package service

import (
	"context"

	"github.com/GTDGit/reseller_portal/internal/cache"
	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/pkg/cbu"
	"github.com/GTDGit/reseller_portal/pkg/esimaccess"
)

// PlanSource lists the purchasable plans. Implemented by esimaccess.Client.
type PlanSource interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// PlanCache stores the last catalog snapshot.
type PlanCache interface {
	Get(ctx context.Context) ([]models.Plan, error)
	Set(ctx context.Context, plans []models.Plan) error
}

// RateSource fetches the live USD rate. Implemented by cbu.Client.
type RateSource interface {
	FetchUSDRate(ctx context.Context) (*cbu.Quote, error)
}

// RateCache stores fetched rates per currency.
type RateCache interface {
	Get(ctx context.Context, currency string) (*cache.RateEntry, error)
	Set(ctx context.Context, currency string, entry *cache.RateEntry) error
}

// Supplier places orders and manages issued profiles. Implemented by
// esimaccess.Client.
type Supplier interface {
	Order(ctx context.Context, transactionID, packageCode string, count int) (*esimaccess.OrderResult, error)
	QueryProfiles(ctx context.Context, orderNo string) ([]esimaccess.Profile, error)
	Resend(ctx context.Context, iccid string) error
	Suspend(ctx context.Context, iccid string) error
	Cancel(ctx context.Context, iccid string) error
	Topup(ctx context.Context, iccid, packageCode, transactionID string) error
}

var (
	_ PlanSource = (*esimaccess.Client)(nil)
	_ Supplier   = (*esimaccess.Client)(nil)
	_ RateSource = (*cbu.Client)(nil)
	_ PlanCache  = (*cache.PlanCache)(nil)
	_ RateCache  = (*cache.ExchangeRateCache)(nil)
)
