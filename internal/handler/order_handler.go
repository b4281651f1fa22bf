package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/reseller_portal/internal/catalog"
	"github.com/GTDGit/reseller_portal/internal/models"
	"github.com/GTDGit/reseller_portal/internal/repository"
	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// OrderHandler places and manages orders.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Quote handles POST /v1/orders/quote.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req service.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	q, err := h.orderService.Quote(c.Request.Context(), partnerID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Quote calculated", q)
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	order, err := h.orderService.Place(c.Request.Context(), partnerID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Order placed", order)
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	var q struct {
		Status string `form:"status"`
		Page   int    `form:"page"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}
	if q.Page > catalog.MaxPage {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Page number too large")
		return
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > catalog.MaxLimit {
		q.Limit = 20
	}

	orders, total, err := h.orderService.List(c.Request.Context(), partnerID(c), repository.OrderFilter{
		Status: models.OrderStatus(q.Status),
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Orders retrieved", orders, q.Page, q.Limit, total)
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	details, err := h.orderService.Get(c.Request.Context(), partnerID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved", details)
}

// Action returns a handler for POST /v1/orders/:id/<action>.
func (h *OrderHandler) Action(action service.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			PackageCode string `json:"packageCode"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
				return
			}
		}
		order, err := h.orderService.Perform(c.Request.Context(), partnerID(c), c.Param("id"), action, body.PackageCode)
		if err != nil {
			handleError(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Order "+string(action)+" completed", order)
	}
}
