// Package metrics holds the Prometheus collectors of the service.
//
// Collectors register with the default registry on package load and are
// exposed by the server's /metrics route.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// alertsTotal counts received alerts by result
	alertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sloimpact_alerts_total",
		Help: "Total alerts received by result",
	}, []string{"result"})

	// calculationDuration tracks impact calculation latency
	calculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sloimpact_calculation_duration_seconds",
		Help:    "Impact calculation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
	})

	// notificationsPerAlert tracks how many tasks one violation reaches
	notificationsPerAlert = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sloimpact_notifications_per_alert",
		Help:    "Number of notifications produced per alert",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// issuesTotal counts provisioned issues by outcome
	issuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sloimpact_issues_total",
		Help: "Total issues provisioned by outcome",
	}, []string{"outcome"})

	// httpRequests counts HTTP requests by route and status class
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sloimpact_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
)

// Alert results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// ObserveAlert records the outcome of one alert.
func ObserveAlert(result string) {
	alertsTotal.WithLabelValues(result).Inc()
}

// ObserveCalculation records one successful impact calculation.
func ObserveCalculation(d time.Duration, notifications int) {
	calculationDuration.Observe(d.Seconds())
	notificationsPerAlert.Observe(float64(notifications))
}

// ObserveIssue records one provisioned issue.
func ObserveIssue(reused bool) {
	if reused {
		issuesTotal.WithLabelValues("reused").Inc()
		return
	}
	issuesTotal.WithLabelValues("created").Inc()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}
