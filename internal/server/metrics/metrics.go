// Package metrics provides Prometheus metrics support
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests counts served requests by route pattern and status code
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardingpass_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"route", "status"})

	// httpDuration observes request latency by route pattern
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boardingpass_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// outcomes counts allow-list operations by result
	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardingpass_operations_total",
		Help: "Allow-list operations by outcome",
	}, []string{"operation", "result"})

	// dbAvailability is 1 while the last database check succeeded
	dbAvailability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boardingpass_database_availability",
		Help: "Availability of the members database, 1 means OK, 0 KO",
	})
)

// Result labels for Outcome.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// HTTPRequestServed records one finished request.
func HTTPRequestServed(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Outcome records the result of an allow-list operation such as "verify".
func Outcome(operation, result string) {
	outcomes.WithLabelValues(operation, result).Inc()
}

// UpdateDatabaseAvailability sets the availability gauge from a ping result.
func UpdateDatabaseAvailability(err error) {
	if err != nil {
		dbAvailability.Set(0)
		return
	}
	dbAvailability.Set(1)
}
