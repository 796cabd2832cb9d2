// Package metrics exposes Prometheus counters for guest list activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	signups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestlist_signups_total",
			Help: "Public signup attempts by outcome",
		},
		[]string{"result"},
	)

	guestsAdmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guestlist_guests_admitted_total",
			Help: "Attendees admitted, counting every member of a party",
		},
	)

	gigsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestlist_gigs_created_total",
			Help: "Guest lists created by source",
		},
		[]string{"source"},
	)

	exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestlist_csv_exports_total",
			Help: "CSV exports by mode",
		},
		[]string{"mode"},
	)

	logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestlist_logins_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"result"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestlist_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guestlist_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// Signup records the outcome of a public signup ("admitted", "full", ...).
func Signup(result string, quantity int) {
	signups.WithLabelValues(result).Inc()
	if result == "admitted" {
		guestsAdmitted.Add(float64(quantity))
	}
}

// GigsCreated records n new lists from source ("single", "batch", "import").
func GigsCreated(source string, n int) {
	gigsCreated.WithLabelValues(source).Add(float64(n))
}

// Export records a CSV download.
func Export(newOnly bool) {
	mode := "full"
	if newOnly {
		mode = "new"
	}
	exports.WithLabelValues(mode).Inc()
}

// Login records an admin login attempt.
func Login(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	logins.WithLabelValues(result).Inc()
}

// RateLimited records a rejected request.
func RateLimited(scope string) {
	rateLimited.WithLabelValues(scope).Inc()
}

// ObserveRequest records one HTTP request.
func ObserveRequest(method string, status int, d time.Duration) {
	httpDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
