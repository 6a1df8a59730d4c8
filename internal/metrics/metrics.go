package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contact notification outcomes.
const (
	ContactDelivered    = "delivered"
	ContactConfirmed    = "confirmed"
	ContactIncomplete   = "incomplete"
	ContactInvalid      = "invalid"
	ContactFailed       = "failed"
	ContactConfirmError = "confirmation_failed"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vitrine",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时分布（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数。",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vitrine",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "当前正在处理的 HTTP 请求数量。",
		},
	)

	contactNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Name:      "contact_notifications_total",
			Help:      "联系表单通知结果计数。",
		},
		[]string{"outcome"},
	)
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, requestsInFlight, contactNotifications)
	})
}

// GinMiddleware 为 Gin 路由注册 Prometheus 指标采集逻辑。
func GinMiddleware() gin.HandlerFunc {
	register()

	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}

// Handler 暴露 Prometheus 文本格式的指标。
func Handler() gin.HandlerFunc {
	register()
	return gin.WrapH(promhttp.Handler())
}

// ObserveContact 记录一次联系表单通知的结果。
func ObserveContact(outcome string) {
	register()
	contactNotifications.WithLabelValues(outcome).Inc()
}
