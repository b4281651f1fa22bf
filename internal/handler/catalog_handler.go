package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/reseller_portal/internal/catalog"
	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/pricing"
	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// CatalogHandler serves the plan catalog.
type CatalogHandler struct {
	catalogService *service.CatalogService
	fxService      *service.ExchangeRateService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService, fxService *service.ExchangeRateService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, fxService: fxService}
}

// planView is a plan with its prices rendered in the requested currency.
type planView struct {
	models.Plan
	Unlimited     bool   `json:"unlimited"`
	DisplayPrice  string `json:"displayPrice"`
	OriginalPrice string `json:"originalPrice"`
}

type plansQuery struct {
	catalog.Filter
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Currency string `form:"currency"`
}

// ListPlans handles GET /v1/catalog/plans.
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	var q plansQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}
	if q.Page > catalog.MaxPage {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Page number too large")
		return
	}
	if _, ok := catalog.ParseDataBucket(string(q.Data)); q.Data != "" && !ok {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown data filter")
		return
	}
	currency := pricing.BaseCurrency
	if q.Currency != "" {
		cur, ok := pricing.ParseCurrency(q.Currency)
		if !ok {
			handleError(c, utils.ErrInvalidCurrency)
			return
		}
		currency = cur
	}

	ctx := c.Request.Context()
	page, err := h.catalogService.Search(ctx, q.Filter, q.Page, q.Limit)
	if err != nil {
		handleError(c, err)
		return
	}

	rate := h.fxService.Rate(ctx).Rate
	views := make([]planView, 0, len(page.Plans))
	for _, p := range page.Plans {
		views = append(views, planView{
			Plan:          p,
			Unlimited:     p.IsUnlimited(),
			DisplayPrice:  pricing.FormatMoneyFromUSD(p.ResellerPriceUSD, currency, rate),
			OriginalPrice: pricing.FormatMoneyFromUSD(p.OriginalPriceUSD, currency, rate),
		})
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Plans retrieved", views, page.Page, page.Limit, page.TotalItems)
}

// Options handles GET /v1/catalog/options.
func (h *CatalogHandler) Options(c *gin.Context) {
	opts, err := h.catalogService.Options(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Filter options retrieved", opts)
}
