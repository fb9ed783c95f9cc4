package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics exposes Prometheus collectors for authentication outcomes.
type AuthMetrics struct {
	Logins        *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	Lockouts      prometheus.Counter
	RateLimited   prometheus.Counter
	AuditDegraded prometheus.Counter
}

// NewAuthMetrics constructs and registers the authentication collectors.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pfh",
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts partitioned by outcome.",
	}, []string{"outcome"})

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pfh",
		Subsystem: "auth",
		Name:      "registrations_total",
		Help:      "Registration attempts partitioned by outcome.",
	}, []string{"outcome"})

	lockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pfh",
		Subsystem: "auth",
		Name:      "lockouts_total",
		Help:      "Accounts transitioned into the locked state by the throttle.",
	})

	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pfh",
		Subsystem: "auth",
		Name:      "rate_limited_total",
		Help:      "Login attempts denied by the per-address rate limit.",
	})

	auditDegraded := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pfh",
		Subsystem: "audit",
		Name:      "degraded_writes_total",
		Help:      "Audit events that failed to persist and fell back to the event bus.",
	})

	m := &AuthMetrics{
		Logins:        logins,
		Registrations: registrations,
		Lockouts:      lockouts,
		RateLimited:   rateLimited,
		AuditDegraded: auditDegraded,
	}

	for _, c := range []prometheus.Collector{logins, registrations, lockouts, rateLimited, auditDegraded} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, fmt.Errorf("register auth collector: %w", err)
		}
	}

	return m, nil
}

// NopAuthMetrics returns collectors that are not registered anywhere, for tests.
func NopAuthMetrics() *AuthMetrics {
	m, _ := NewAuthMetrics(prometheus.NewRegistry())
	return m
}
