// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_orders_placed_total",
		Help: "Orders accepted by the supplier, by recipient mode",
	}, []string{"mode"})

	OrderStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_order_status_changes_total",
		Help: "Order status transitions by target status",
	}, []string{"status"})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_provider_errors_total",
		Help: "Failed upstream calls by provider",
	}, []string{"provider"})

	ExchangeRateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_exchange_rate_fallback_total",
		Help: "Times the configured fallback rate was served",
	})

	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_events_published_total",
		Help: "Order events written to Kafka",
	})

	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_event_publish_errors_total",
		Help: "Failed order event writes",
	})

	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_sse_clients",
		Help: "Connected order stream clients",
	})
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
