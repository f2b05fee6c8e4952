// Package metrics exposes marketplace counters on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricOrdersPlacedTotal         = "rawbazaar_orders_placed_total"
	MetricPlacementsTotal           = "rawbazaar_placements_total"
	MetricNotificationsEmittedTotal = "rawbazaar_notifications_emitted_total"
	MetricSnapshotSavesTotal        = "rawbazaar_snapshot_saves_total"
	MetricHTTPRequestsTotal         = "rawbazaar_http_requests_total"
)

// Snapshot save results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder is the set of counters the service and HTTP layer update.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	ordersPlaced  prometheus.Counter
	placements    prometheus.Counter
	notifications *prometheus.CounterVec
	snapshotSaves *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricOrdersPlacedTotal,
			Help: "Orders created by checkout, one per supplier.",
		}),
		placements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricPlacementsTotal,
			Help: "Successful checkouts.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricNotificationsEmittedTotal,
			Help: "Notifications emitted, by type.",
		}, []string{"type"}),
		snapshotSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSnapshotSavesTotal,
			Help: "Snapshot autosaves, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}

	r.registry.MustRegister(
		r.ordersPlaced,
		r.placements,
		r.notifications,
		r.snapshotSaves,
		r.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) OrdersPlaced(orders int) {
	if r == nil {
		return
	}
	r.placements.Inc()
	r.ordersPlaced.Add(float64(orders))
}

func (r *Recorder) NotificationEmitted(kind string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(kind).Inc()
}

func (r *Recorder) SnapshotSaved(err error) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.snapshotSaves.WithLabelValues(result).Inc()
}

func (r *Recorder) HTTPRequest(method string, route string, status string) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
}
