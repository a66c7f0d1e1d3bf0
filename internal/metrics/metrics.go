// Package metrics exposes Prometheus counters for the verification and
// referral flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hammer"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
)

type Metrics struct {
	CodesIssued       prometheus.Counter
	CodeVerifications *prometheus.CounterVec
	UsersCreated      prometheus.Counter
	InviteActivations *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
}

// New registers the service collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CodesIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_codes_issued_total",
			Help:      "Verification codes issued.",
		}),
		CodeVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_attempts_total",
			Help:      "Verification attempts by result.",
		}, []string{"result"}),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Users created on first verification.",
		}),
		InviteActivations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invite_activations_total",
			Help:      "Invite code activation attempts by result.",
		}, []string{"result"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_notifications_total",
			Help:      "Code deliveries handed to the notifier by result.",
		}, []string{"result"}),
	}
}

// NewUnregistered is meant for tests and tools that do not expose /metrics.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
