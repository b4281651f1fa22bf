package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders  = "Authorization, Content-Type, Accept, Cache-Control, Idempotency-Key, Last-Event-ID"
	corsExposeHeaders = "X-Request-Id, X-Idempotency-Replayed"
	corsAllowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
)

// originHost returns the lower-cased host of an Origin header without a
// default port, or "" when the origin cannot be parsed.
func originHost(origin string) string {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if (u.Scheme == "https" && strings.HasSuffix(host, ":443")) || (u.Scheme == "http" && strings.HasSuffix(host, ":80")) {
		host, _, _ = strings.Cut(host, ":")
	}
	return host
}

// CORSMiddleware lets the portal front-end call the API from the hosts in
// allowed (host[:port]). Preflights from any other origin get 403.
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	hosts := make(map[string]struct{}, len(allowed))
	for _, h := range allowed {
		hosts[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		c.Header("Vary", "Origin")

		_, ok := hosts[originHost(origin)]
		if ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Max-Age", "86400")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
