package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/compose"
	"github.com/GTDGit/reseller_portal/internal/metrics"
	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/pricing"
	"github.com/GTDGit/reseller_portal/internal/repository"
	"github.com/GTDGit/reseller_portal/internal/sse"
	"github.com/GTDGit/reseller_portal/internal/utils"
	"github.com/GTDGit/reseller_portal/pkg/esimaccess"
)

// Action is an operation on an issued order.
type Action string

const (
	ActionResend  Action = "resend"
	ActionSuspend Action = "suspend"
	ActionCancel  Action = "cancel"
	ActionTopup   Action = "topup"
)

// allowedFrom lists the statuses each action may start from and the status it leaves.
var allowedFrom = map[Action]struct {
	from []models.OrderStatus
	to   models.OrderStatus
}{
	ActionResend:  {from: []models.OrderStatus{models.OrderReady}, to: models.OrderReady},
	ActionSuspend: {from: []models.OrderStatus{models.OrderReady}, to: models.OrderSuspended},
	ActionCancel:  {from: []models.OrderStatus{models.OrderReady, models.OrderSuspended}, to: models.OrderCancelled},
	ActionTopup:   {from: []models.OrderStatus{models.OrderReady, models.OrderSuspended}, to: models.OrderReady},
}

// OrderRequest is a submitted order composition.
type OrderRequest struct {
	PlanID    string            `json:"planId" binding:"required"`
	Mode      models.OrderMode  `json:"mode" binding:"required"`
	Customers []models.Customer `json:"customers"`
	GroupIDs  []string          `json:"groupIds"`
	Currency  string            `json:"currency"`
}

// ValidationError carries the per-field outcome of a rejected composition.
type ValidationError struct {
	Result compose.Result
	Err    error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// FormattedSummary is a price breakdown rendered in the display currency.
type FormattedSummary struct {
	PackageUnitPrice string `json:"packageUnitPrice"`
	PackageTotal     string `json:"packageTotal"`
	PartnerDiscount  string `json:"partnerDiscount"`
	PartnerProfit    string `json:"partnerProfit"`
	TotalPayment     string `json:"totalPayment"`
}

// Quote is the live price of a composition.
type Quote struct {
	PlanID        string           `json:"planId"`
	Mode          models.OrderMode `json:"mode"`
	Summary       pricing.Summary  `json:"summary"`
	Formatted     FormattedSummary `json:"formatted"`
	Currency      models.Currency  `json:"currency"`
	BaseCurrency  models.Currency  `json:"baseCurrency"`
	ExchangeRate  ExchangeRate     `json:"exchangeRate"`
	CustomerCount int              `json:"customerCount"`
	Validation    compose.Result   `json:"validation"`
}

// OrderService prices, places and manages orders.
type OrderService struct {
	orderRepo repository.OrderRepository
	groupRepo repository.GroupRepository
	catalog   *CatalogService
	fx        *ExchangeRateService
	supplier  Supplier
	notifier  sse.OrderNotifier
}

// NewOrderService constructs an OrderService. A nil notifier disables events.
func NewOrderService(
	orderRepo repository.OrderRepository,
	groupRepo repository.GroupRepository,
	catalog *CatalogService,
	fx *ExchangeRateService,
	supplier Supplier,
	notifier sse.OrderNotifier,
) *OrderService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &OrderService{
		orderRepo: orderRepo,
		groupRepo: groupRepo,
		catalog:   catalog,
		fx:        fx,
		supplier:  supplier,
		notifier:  notifier,
	}
}

type priced struct {
	plan     *models.Plan
	session  *compose.Session
	groups   []models.Group
	rate     ExchangeRate
	summary  pricing.Summary
	currency models.Currency
}

// price resolves plan, groups and rate for req without validating recipients.
func (s *OrderService) price(ctx context.Context, partnerID int, req *OrderRequest) (*priced, error) {
	currency := pricing.BaseCurrency
	if req.Currency != "" {
		c, ok := pricing.ParseCurrency(req.Currency)
		if !ok {
			return nil, utils.ErrInvalidCurrency
		}
		currency = c
	}

	session, err := compose.Restore(req.Mode, req.Customers, req.GroupIDs)
	if err != nil {
		return nil, &ValidationError{Result: compose.Result{FormError: err.Error()}, Err: compose.ErrValidationFailed}
	}

	plan, err := s.catalog.FindPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	var groups []models.Group
	if session.Mode() == models.ModeGroup {
		groups, err = s.groupRepo.GetByIDs(ctx, partnerID, session.SelectedGroups())
		if err != nil {
			return nil, err
		}
	}

	rate := s.fx.Rate(ctx)
	unit := pricing.ConvertUSD(plan.ResellerPriceUSD, rate.Rate)

	return &priced{
		plan:     plan,
		session:  session,
		groups:   groups,
		rate:     rate,
		summary:  pricing.Calculate(unit, session.CustomerCount(groups)),
		currency: currency,
	}, nil
}

// Quote prices a composition and reports its validation state. Invalid
// recipients do not prevent a quote.
func (s *OrderService) Quote(ctx context.Context, partnerID int, req *OrderRequest) (*Quote, error) {
	p, err := s.price(ctx, partnerID, req)
	if err != nil {
		return nil, err
	}

	sum := p.summary
	format := func(v int64) string { return pricing.FormatMoney(v, p.currency, p.rate.Rate) }
	return &Quote{
		PlanID:  p.plan.ID,
		Mode:    p.session.Mode(),
		Summary: sum,
		Formatted: FormattedSummary{
			PackageUnitPrice: format(sum.PackageUnitPrice),
			PackageTotal:     format(sum.PackageTotal),
			PartnerDiscount:  format(sum.PartnerDiscount),
			PartnerProfit:    format(sum.PartnerProfit),
			TotalPayment:     format(sum.TotalPayment),
		},
		Currency:      p.currency,
		BaseCurrency:  pricing.BaseCurrency,
		ExchangeRate:  p.rate,
		CustomerCount: p.session.CustomerCount(p.groups),
		Validation:    p.session.Validate(),
	}, nil
}

// Place validates the composition, prices it and submits it to the supplier.
// A supplier rejection leaves a failed order behind and returns ErrProvider.
func (s *OrderService) Place(ctx context.Context, partnerID int, req *OrderRequest) (*models.Order, error) {
	p, err := s.price(ctx, partnerID, req)
	if err != nil {
		return nil, err
	}

	draft, res, err := p.session.Confirm()
	if err != nil {
		return nil, &ValidationError{Result: res, Err: err}
	}
	if draft.Mode == models.ModeGroup && len(p.groups) != len(draft.GroupIDs) {
		return nil, utils.ErrGroupNotFound
	}

	orderNo, err := s.orderRepo.NextOrderNo(ctx)
	if err != nil {
		return nil, fmt.Errorf("next order number: %w", err)
	}

	sum := p.summary
	order := &models.Order{
		ID:              uuid.NewString(),
		OrderNo:         orderNo,
		PartnerID:       partnerID,
		PlanID:          p.plan.ID,
		PackageCode:     p.plan.PackageCode,
		Destination:     p.plan.Destination,
		Mode:            draft.Mode,
		Recipients:      recipients(draft, p.groups),
		GroupIDs:        draft.GroupIDs,
		Quantity:        sum.CustomerCount,
		Currency:        pricing.BaseCurrency,
		ExchangeRate:    p.rate.Rate.String(),
		UnitPrice:       sum.PackageUnitPrice,
		PackageTotal:    sum.PackageTotal,
		PartnerDiscount: sum.PartnerDiscount,
		PartnerProfit:   sum.PartnerProfit,
		TotalPayment:    sum.TotalPayment,
		Status:          models.OrderProcessing,
	}
	if order.GroupIDs == nil {
		order.GroupIDs = []string{}
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.notifier.NotifyOrderCreated(order)

	placed, err := s.supplier.Order(ctx, order.OrderNo, order.PackageCode, order.Quantity)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("supplier").Inc()
		reason := err.Error()
		order.Status = models.OrderFailed
		order.FailedReason = &reason
		s.saveStatus(ctx, order)
		return order, fmt.Errorf("%w: place order: %v", utils.ErrProvider, err)
	}

	order.SupplierOrderNo = &placed.OrderNo
	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		log.Error().Err(err).Str("order_no", order.OrderNo).Msg("Failed to store supplier order number")
	}
	metrics.OrdersPlaced.WithLabelValues(string(order.Mode)).Inc()
	log.Info().
		Str("order_no", order.OrderNo).
		Int("partner_id", partnerID).
		Int("quantity", order.Quantity).
		Int64("total_payment", order.TotalPayment).
		Msg("Order placed")
	return order, nil
}

// recipients flattens the draft into the stored recipient list.
func recipients(d *compose.Draft, groups []models.Group) models.Members {
	switch d.Mode {
	case models.ModeCustomer:
		return models.Members(d.Customers)
	case models.ModeGroup:
		out := models.Members{}
		for _, g := range groups {
			out = append(out, g.Members...)
		}
		return out
	default:
		return models.Members{}
	}
}

// List returns a page of the partner's orders.
func (s *OrderService) List(ctx context.Context, partnerID int, f repository.OrderFilter) ([]models.Order, int, error) {
	return s.orderRepo.List(ctx, partnerID, f)
}

// Get returns one order with its issued profiles.
func (s *OrderService) Get(ctx context.Context, partnerID int, id string) (*models.OrderDetails, error) {
	order, err := s.orderRepo.Get(ctx, partnerID, id)
	if err != nil {
		return nil, notFound(err, utils.ErrOrderNotFound)
	}
	details := &models.OrderDetails{Order: *order, Profiles: []models.Profile{}}
	if order.SupplierOrderNo == nil {
		return details, nil
	}

	profiles, err := s.supplier.QueryProfiles(ctx, *order.SupplierOrderNo)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("supplier").Inc()
		return nil, fmt.Errorf("%w: query profiles: %v", utils.ErrProvider, err)
	}
	for _, p := range profiles {
		details.Profiles = append(details.Profiles, toProfile(p))
	}
	return details, nil
}

func toProfile(p esimaccess.Profile) models.Profile {
	out := models.Profile{
		ICCID:          p.ICCID,
		ActivationCode: p.AC,
		QRCodeURL:      p.QRCodeURL,
		Status:         p.ESIMStatus,
		DataUsedBytes:  p.OrderUsage,
	}
	if t, err := time.Parse(time.RFC3339, p.ExpiredTime); err == nil {
		out.ExpiresAt = &t
	}
	return out
}

// Perform runs action against every profile of the order. packageCode is
// only used by topup and defaults to the ordered package.
func (s *OrderService) Perform(ctx context.Context, partnerID int, id string, action Action, packageCode string) (*models.Order, error) {
	rule, ok := allowedFrom[action]
	if !ok {
		return nil, utils.ErrOrderActionNotAllowed
	}

	order, err := s.orderRepo.Get(ctx, partnerID, id)
	if err != nil {
		return nil, notFound(err, utils.ErrOrderNotFound)
	}
	if order.SupplierOrderNo == nil || !containsStatus(rule.from, order.Status) {
		return nil, fmt.Errorf("%w: %s on %s order", utils.ErrOrderActionNotAllowed, action, order.Status)
	}

	profiles, err := s.supplier.QueryProfiles(ctx, *order.SupplierOrderNo)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("supplier").Inc()
		return nil, fmt.Errorf("%w: query profiles: %v", utils.ErrProvider, err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: no issued profiles", utils.ErrOrderActionNotAllowed)
	}
	if packageCode == "" {
		packageCode = order.PackageCode
	}

	for i, p := range profiles {
		if err := s.apply(ctx, action, p.ICCID, packageCode, fmt.Sprintf("%s-T%d-%d", order.OrderNo, time.Now().Unix(), i)); err != nil {
			metrics.ProviderErrors.WithLabelValues("supplier").Inc()
			return nil, fmt.Errorf("%w: %s %s: %v", utils.ErrProvider, action, p.ICCID, err)
		}
	}

	if order.Status != rule.to {
		order.Status = rule.to
		s.saveStatus(ctx, order)
	}
	log.Info().Str("order_no", order.OrderNo).Str("action", string(action)).Int("profiles", len(profiles)).Msg("Order action performed")
	return order, nil
}

func (s *OrderService) apply(ctx context.Context, action Action, iccid, packageCode, txID string) error {
	switch action {
	case ActionResend:
		return s.supplier.Resend(ctx, iccid)
	case ActionSuspend:
		return s.supplier.Suspend(ctx, iccid)
	case ActionCancel:
		return s.supplier.Cancel(ctx, iccid)
	case ActionTopup:
		return s.supplier.Topup(ctx, iccid, packageCode, txID)
	default:
		return errors.New("unknown action")
	}
}

// SyncProcessing polls the supplier for recent processing orders and marks
// those whose profiles are allocated as ready. It returns how many changed.
func (s *OrderService) SyncProcessing(ctx context.Context, maxAge time.Duration, limit int) (int, error) {
	orders, err := s.orderRepo.ListByStatus(ctx, models.OrderProcessing, time.Now().Add(-maxAge), limit)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range orders {
		o := &orders[i]
		if o.SupplierOrderNo == nil {
			continue
		}
		profiles, err := s.supplier.QueryProfiles(ctx, *o.SupplierOrderNo)
		if err != nil {
			log.Warn().Err(err).Str("order_no", o.OrderNo).Msg("Profile query failed")
			continue
		}
		if len(profiles) < o.Quantity {
			continue
		}
		o.Status = models.OrderReady
		s.saveStatus(ctx, o)
		changed++
	}
	return changed, nil
}

func (s *OrderService) saveStatus(ctx context.Context, o *models.Order) {
	if err := s.orderRepo.UpdateStatus(ctx, o); err != nil {
		log.Error().Err(err).Str("order_no", o.OrderNo).Str("status", string(o.Status)).Msg("Failed to update order status")
		return
	}
	metrics.OrderStatusChanges.WithLabelValues(string(o.Status)).Inc()
	s.notifier.NotifyOrderStatusChanged(o)
}

func containsStatus(list []models.OrderStatus, st models.OrderStatus) bool {
	for _, v := range list {
		if v == st {
			return true
		}
	}
	return false
}
