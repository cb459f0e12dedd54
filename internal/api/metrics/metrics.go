// Package metrics defines the custom Prometheus metrics for the registry
// API. It is the single source of truth for metric names, labels, and help
// strings.
//
// The collectors are registered on whichever registry the router serves at
// /metrics; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "registry"

// Metrics holds the auth counters.
type Metrics struct {
	// SignupsTotal counts signup requests.
	// Label:
	//   - result: "created", "invalid", "conflict" or "error"
	SignupsTotal *prometheus.CounterVec

	// LoginsTotal counts login requests.
	// Label:
	//   - result: "ok", "invalid", "not_found", "bad_password", "throttled" or "error"
	LoginsTotal *prometheus.CounterVec

	// TokenVerificationsTotal counts bearer checks made by the auth middleware.
	// Label:
	//   - result: "ok", "missing" or "invalid"
	TokenVerificationsTotal *prometheus.CounterVec
}

// New creates the counters and registers them on reg. A nil reg leaves them
// unregistered, which is what handler tests want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SignupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signups_total",
				Help:      "Total number of signup attempts, by result.",
			},
			[]string{"result"},
		),
		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		TokenVerificationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_verifications_total",
				Help:      "Total number of bearer token checks on protected routes.",
			},
			[]string{"result"},
		),
	}
}
