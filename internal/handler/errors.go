package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/compose"
	"github.com/GTDGit/reseller_portal/internal/middleware"
	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

// handleError maps service errors onto the response envelope.
func handleError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr) && errors.Is(err, compose.ErrGroupSelectionRequired):
		utils.ErrorWithDetails(c, http.StatusUnprocessableEntity, "GROUP_SELECTION_REQUIRED",
			"Select at least one group", gin.H{"openGroupPicker": true})
	case errors.As(err, &vErr):
		utils.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED",
			"Some recipients need attention", vErr.Result)
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, utils.ErrInvalidToken):
		utils.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	case errors.Is(err, utils.ErrPartnerInactive):
		utils.Error(c, http.StatusForbidden, "PARTNER_INACTIVE", "Account is inactive")
	case errors.Is(err, utils.ErrAuthTimeout):
		utils.Error(c, http.StatusGatewayTimeout, "AUTH_TIMEOUT", "Session check timed out, please sign in again")
	case errors.Is(err, utils.ErrPlanNotFound):
		utils.Error(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found")
	case errors.Is(err, utils.ErrGroupNotFound):
		utils.Error(c, http.StatusNotFound, "GROUP_NOT_FOUND", "Group not found")
	case errors.Is(err, utils.ErrOrderNotFound):
		utils.Error(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, utils.ErrOrderActionNotAllowed):
		utils.Error(c, http.StatusConflict, "ORDER_ACTION_NOT_ALLOWED", err.Error())
	case errors.Is(err, utils.ErrInvalidGroup):
		utils.Error(c, http.StatusBadRequest, "INVALID_GROUP", strings.TrimPrefix(err.Error(), utils.ErrInvalidGroup.Error()+": "))
	case errors.Is(err, utils.ErrInvalidCurrency):
		utils.Error(c, http.StatusBadRequest, "INVALID_CURRENCY", "Currency must be UZS or USD")
	case errors.Is(err, utils.ErrProvider):
		log.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("Provider error")
		utils.Error(c, http.StatusBadGateway, "PROVIDER_ERROR", "Upstream provider is unavailable, please try again")
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Unhandled error")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func partnerID(c *gin.Context) int {
	return c.GetInt(middleware.PartnerIDKey)
}
