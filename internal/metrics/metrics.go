package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sportsregistration"

// Registry holds every metric the server exposes on /metrics.
var Registry = prometheus.NewRegistry()

// Registration outcomes.
const (
	OutcomeRegistered        = "registered"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeInvalidTeam       = "invalid_team_composition"
	OutcomeNotFound          = "not_found"
	OutcomeConflict          = "conflict"
	OutcomeError             = "error"
)

// RegistrationsTotal counts registration attempts by outcome.
var RegistrationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of event registration attempts by outcome",
	},
	[]string{"outcome"},
)

// SignupsTotal counts created accounts by role.
var SignupsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created",
	},
	[]string{"role"},
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// RegistrationRecorder records registration outcomes into RegistrationsTotal.
type RegistrationRecorder struct{}

func (RegistrationRecorder) ObserveRegistration(outcome string) {
	RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// SignupRecorder records created accounts into SignupsTotal.
type SignupRecorder struct{}

func (SignupRecorder) ObserveSignup(role string) {
	SignupsTotal.WithLabelValues(role).Inc()
}
