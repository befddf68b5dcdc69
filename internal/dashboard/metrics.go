package dashboard

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the dashboard's Prometheus collectors.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	computations prometheus.Counter
	failures     prometheus.Counter
	lastMSP      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "odhe",
			Subsystem: "dashboard",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "odhe",
			Subsystem: "dashboard",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		computations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "odhe",
			Subsystem: "msp",
			Name:      "computations_total",
			Help:      "Minimum selling price evaluations, sweep points included.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "odhe",
			Subsystem: "msp",
			Name:      "failures_total",
			Help:      "Minimum selling price evaluations that returned an error.",
		}),
		lastMSP: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "odhe",
			Subsystem: "msp",
			Name:      "last_usd_per_tonne",
			Help:      "Most recent minimum selling price served.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.computations, m.failures, m.lastMSP)
	return m
}

// middleware records request counts and latency per route template.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
