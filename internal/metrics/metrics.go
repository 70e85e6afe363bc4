package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "meetmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	NearbyPresentations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetmap",
		Subsystem: "nearby",
		Name:      "presentations_total",
		Help:      "Nearby roster presentations, by source of the caller's location",
	}, []string{"self_location"})

	NearbyEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetmap",
		Subsystem: "nearby",
		Name:      "entries_total",
		Help:      "Roster entries presented, split by whether a distance was known",
	}, []string{"distance"})

	LocationUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meetmap",
		Subsystem: "location",
		Name:      "updates_total",
		Help:      "Stored user location updates",
	})

	FavoriteChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetmap",
		Subsystem: "favorites",
		Name:      "changes_total",
		Help:      "Favorite add/remove operations that changed state",
	}, []string{"op"})

	ActiveMapSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "meetmap",
		Subsystem: "ws",
		Name:      "map_connections",
		Help:      "Current number of live map WebSocket connections",
	})
)

// Middleware records request metrics using the matched route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
