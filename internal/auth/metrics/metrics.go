// Package metrics holds the prometheus collectors of the auth service. They
// register with the default registry, which /metrics serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit write results.
const (
	AuditWritten  = "written"
	AuditFailed   = "failed"
	AuditRejected = "rejected"
)

var (
	// LoginAttempts counts login attempts by terminal outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookit_auth_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	LoginDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookit_auth_login_duration_seconds",
		Help:    "Time taken to evaluate a login attempt.",
		Buckets: prometheus.DefBuckets,
	})

	// MFAVerifications counts second factor checks by method and result.
	MFAVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookit_auth_mfa_verifications_total",
		Help: "MFA verifications by method and result.",
	}, []string{"method", "result"})

	AuditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookit_auth_audit_events_total",
		Help: "Audit events by write result.",
	}, []string{"result"})

	AuditPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookit_auth_audit_purged_total",
		Help: "Audit events removed by retention purges.",
	})
)

// ObserveMFA records one MFA check.
func ObserveMFA(method string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	MFAVerifications.WithLabelValues(method, result).Inc()
}
