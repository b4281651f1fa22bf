package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/reseller_portal/internal/utils"
)

// Context keys set by JWTMiddleware.
const (
	PartnerIDKey = "partner_id"
	EmailKey     = "email"
)

// JWTMiddleware authenticates partners by bearer token. Streaming routes may
// pass the token as ?token= because EventSource cannot set headers.
type JWTMiddleware struct {
	tokens  *utils.TokenIssuer
	limiter *InvalidAuthRateLimiter
}

// NewJWTMiddleware creates the middleware. limiter may be nil.
func NewJWTMiddleware(tokens *utils.TokenIssuer, limiter *InvalidAuthRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{tokens: tokens, limiter: limiter}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			m.reject(c, "UNAUTHORIZED", "Missing or invalid authorization header")
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			m.reject(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(PartnerIDKey, claims.PartnerID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, code, msg string) {
	if m.limiter != nil && !m.limiter.Allow(c.ClientIP()) {
		utils.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.Error(c, http.StatusUnauthorized, code, msg)
	c.Abort()
}

func bearerToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if t := c.Query("token"); t != "" {
		return t, true
	}
	return "", false
}
