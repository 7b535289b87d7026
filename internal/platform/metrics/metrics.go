package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestsCreated   prometheus.Counter
	DonationsClaimed  prometheus.Counter
	DonationConflicts prometheus.Counter
	AuthFailures      prometheus.Counter
	HTTPDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeflow_donation_requests_created_total",
			Help: "Total number of donation requests created",
		}),
		DonationsClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeflow_donations_claimed_total",
			Help: "Total number of pending requests claimed by a donor",
		}),
		DonationConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeflow_donation_conflicts_total",
			Help: "Total number of donate attempts that lost the claim race",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeflow_auth_failures_total",
			Help: "Total number of rejected credentials",
		}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifeflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
