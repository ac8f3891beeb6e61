// Package metrics holds the Prometheus collectors exported on the metrics
// endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	OpsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkcanvas_ops_applied_total",
		Help: "Collaboration operations applied, by type and outcome",
	}, []string{"type", "outcome"})

	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inkcanvas_connected_clients",
		Help: "Websocket clients currently connected",
	})

	OpenRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inkcanvas_open_rooms",
		Help: "Canvases with at least one connected client",
	})

	Canvases = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inkcanvas_canvases",
		Help: "Canvases held in memory",
	})

	HitTests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inkcanvas_hit_tests_total",
		Help: "Hit tests served over HTTP and websocket",
	})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkcanvas_http_requests_total",
		Help: "HTTP requests by method and status code",
	}, []string{"method", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkcanvas_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Outcome label values for OpsApplied.
const (
	OutcomeAck  = "ack"
	OutcomeNack = "nack"
)

// Init registers every collector with the default registry. Call once.
func Init() {
	prometheus.MustRegister(
		OpsApplied,
		ConnectedClients,
		OpenRooms,
		Canvases,
		HitTests,
		HTTPRequests,
		HTTPDuration,
	)
	prometheus.MustRegister(collectors.NewBuildInfoCollector())
}
