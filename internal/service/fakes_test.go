package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/reseller_portal/internal/cache"
	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/pkg/cbu"
	"github.com/GTDGit/reseller_portal/pkg/esimaccess"
)

type fakePlanSource struct {
	plans []models.Plan
	err   error
	calls int
}

func (f *fakePlanSource) ListPlans(context.Context) ([]models.Plan, error) {
	f.calls++
	return f.plans, f.err
}

type fakeRateSource struct {
	rate  string
	err   error
	calls int
}

func (f *fakeRateSource) FetchUSDRate(context.Context) (*cbu.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &cbu.Quote{Rate: decimal.RequireFromString(f.rate), Source: "direct"}, nil
}

type fakeSupplier struct {
	mu       sync.Mutex
	order    func(txID, packageCode string, count int) (*esimaccess.OrderResult, error)
	profiles func(orderNo string) ([]esimaccess.Profile, error)
	actions  []string
	err      error
}

func (f *fakeSupplier) Order(_ context.Context, txID, packageCode string, count int) (*esimaccess.OrderResult, error) {
	return f.order(txID, packageCode, count)
}

func (f *fakeSupplier) QueryProfiles(_ context.Context, orderNo string) ([]esimaccess.Profile, error) {
	return f.profiles(orderNo)
}

func (f *fakeSupplier) record(action, iccid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action+":"+iccid)
	return f.err
}

func (f *fakeSupplier) Resend(_ context.Context, iccid string) error {
	return f.record("resend", iccid)
}
func (f *fakeSupplier) Suspend(_ context.Context, iccid string) error {
	return f.record("suspend", iccid)
}
func (f *fakeSupplier) Cancel(_ context.Context, iccid string) error {
	return f.record("cancel", iccid)
}
func (f *fakeSupplier) Topup(_ context.Context, iccid, packageCode, _ string) error {
	return f.record("topup-"+packageCode, iccid)
}

type recordingNotifier struct {
	created []string
	changed []models.OrderStatus
}

func (r *recordingNotifier) NotifyOrderCreated(o *models.Order) { r.created = append(r.created, o.ID) }
func (r *recordingNotifier) NotifyOrderStatusChanged(o *models.Order) {
	r.changed = append(r.changed, o.Status)
}

// blockingPartnerRepo never answers GetByID before ctx ends.
type blockingPartnerRepo struct{}

func (blockingPartnerRepo) GetByEmail(context.Context, string) (*models.Partner, error) {
	return nil, errors.New("not implemented")
}

func (blockingPartnerRepo) GetByID(ctx context.Context, _ int) (*models.Partner, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Minute):
		return nil, errors.New("unreachable")
	}
}

func (blockingPartnerRepo) Create(context.Context, *models.Partner) error { return nil }

func testPlans() []models.Plan {
	return []models.Plan{
		{ID: "TR-3GB", Destination: "Turkey", CountryCode: "TR", DataGB: 3, ValidityDays: 30,
			ResellerPriceUSD: decimal.RequireFromString("2.10"), PackageCode: "TR-3GB"},
		{ID: "AE-10GB", Destination: "UAE", CountryCode: "AE", DataGB: 10, ValidityDays: 15,
			ResellerPriceUSD: decimal.RequireFromString("9.50"), PackageCode: "AE-10GB"},
	}
}

func newTestCatalog(source *fakePlanSource) *CatalogService {
	return NewCatalogService(source, cache.NewPlanCache(cache.NewMemoryStore(), time.Minute))
}

func newTestFX(source *fakeRateSource) *ExchangeRateService {
	return NewExchangeRateService(source, cache.NewExchangeRateCache(cache.NewMemoryStore(), time.Hour), decimal.NewFromInt(12800))
}
