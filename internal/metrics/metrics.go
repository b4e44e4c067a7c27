package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markethub_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "markethub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "markethub_orders_placed_total",
			Help: "Orders committed",
		},
	)

	VouchersMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "markethub_referral_vouchers_minted_total",
			Help: "Referral vouchers created",
		},
	)
)

// RegisterConnectionGauge exposes the number of open notification sockets.
// Call it at most once per registry.
func RegisterConnectionGauge(reg prometheus.Registerer, count func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "markethub_websocket_connections",
			Help: "Open WebSocket notification connections",
		},
		func() float64 { return float64(count()) },
	))
}

// Middleware records one sample per request. Install it outside the request
// logger so handler errors are already rendered when the status is read.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}

		HTTPRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
