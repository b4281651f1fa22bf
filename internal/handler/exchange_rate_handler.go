package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// ExchangeRateHandler exposes the current USD rate.
type ExchangeRateHandler struct {
	fxService *service.ExchangeRateService
}

// NewExchangeRateHandler creates a new ExchangeRateHandler.
func NewExchangeRateHandler(fxService *service.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{fxService: fxService}
}

// Get handles GET /v1/exchange-rate.
func (h *ExchangeRateHandler) Get(c *gin.Context) {
	utils.Success(c, http.StatusOK, "Exchange rate retrieved", h.fxService.Rate(c.Request.Context()))
}
