package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/v1/orders/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/v1/orders/:id", "404"))
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/"+id, nil))
	}
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/v1/orders/:id", "404"))

	assert.Equal(t, 2.0, after-before)
}
