package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findsync_http_requests_total",
			Help: "Total number of HTTP requests processed by the FindSync API.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "findsync_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "findsync_ws_active_connections",
			Help: "Number of active item feed websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findsync_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	itemsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findsync_items_created_total",
			Help: "Total number of items created.",
		},
		[]string{"post_type"},
	)
	identityResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findsync_identity_resolutions_total",
			Help: "Identity resolutions by outcome.",
		},
		[]string{"outcome"},
	)
	schemaProbeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findsync_schema_probe_total",
			Help: "Item write shape decisions by reporter_name column presence.",
		},
		[]string{"reporter_name"},
	)
	broadcastDeliveriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "findsync_broadcast_deliveries_total",
			Help: "Total number of new item events queued to subscribers.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "findsync_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		itemsCreatedTotal,
		identityResolutionsTotal,
		schemaProbeTotal,
		broadcastDeliveriesTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncItemCreated(postType string) {
	itemsCreatedTotal.WithLabelValues(postType).Inc()
}

func IncIdentityResolution(outcome string) {
	identityResolutionsTotal.WithLabelValues(outcome).Inc()
}

func IncSchemaProbe(hasReporterName bool) {
	schemaProbeTotal.WithLabelValues(strconv.FormatBool(hasReporterName)).Inc()
}

func AddBroadcastDeliveries(n int) {
	broadcastDeliveriesTotal.Add(float64(n))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
