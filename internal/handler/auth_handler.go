package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/reseller_portal/internal/middleware"
	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	limiter     *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService *service.AuthService, limiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, partner, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) && h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
			utils.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many failed sign-in attempts")
			return
		}
		handleError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", gin.H{
		"token":   token,
		"partner": partner,
	})
}

// Session handles GET /v1/auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, err := h.authService.Session(c.Request.Context(), partnerID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Session loaded", sess)
}
