package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_ws_connections",
		Help: "Current number of live websocket connections",
	})
	WsEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_ws_events_total",
		Help: "Inbound websocket events by type",
	}, []string{"event"})
	WsEventErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_ws_event_errors_total",
		Help: "Rejected websocket events (validation or authorization) by type",
	}, []string{"event"})
	PersistFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_persist_failures_total",
		Help: "Board store write failures on the fire-and-forget paths",
	}, []string{"op"})
	BroadcastDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "board_broadcast_dropped_total",
		Help: "Frames dropped because a client send buffer was full",
	})
	PresenceEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "board_presence_evictions_total",
		Help: "Stale presence entries removed by the cleaner",
	})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		WsConnections, WsEventsTotal, WsEventErrorsTotal,
		PersistFailuresTotal, BroadcastDroppedTotal, PresenceEvictionsTotal,
		HttpRequestsTotal, HttpRequestDuration,
	)
}

// GinMiddleware records request counts and latencies for Prometheus scraping.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
