// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package observability

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for admission metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeLocked  = "locked"

	VerdictValid     = "valid"
	VerdictMalformed = "malformed"
	VerdictBadSig    = "signature_invalid"
	VerdictExpired   = "expired"
)

// Metrics holds the admission-path counters.
type Metrics struct {
	// Logins counts login attempts by outcome.
	Logins *prometheus.CounterVec

	// ValidationFailures counts rejected inputs by schema name.
	ValidationFailures *prometheus.CounterVec

	// TokenVerifications counts token checks by verdict.
	TokenVerifications *prometheus.CounterVec

	// ResponsesByCode counts normalized error responses by taxonomy code.
	ResponsesByCode *prometheus.CounterVec
}

// NewMetrics creates and registers the admission metrics. Panics on
// duplicate registration, following prometheus convention.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskforge_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskforge_validation_failures_total",
				Help: "Total number of schema validation rejections by schema",
			},
			[]string{"schema"},
		),
		TokenVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskforge_token_verifications_total",
				Help: "Total number of session token verifications by verdict",
			},
			[]string{"verdict"},
		),
		ResponsesByCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskforge_error_responses_total",
				Help: "Total number of normalized error responses by code",
			},
			[]string{"code"},
		),
	}

	reg.MustRegister(m.Logins)
	reg.MustRegister(m.ValidationFailures)
	reg.MustRegister(m.TokenVerifications)
	reg.MustRegister(m.ResponsesByCode)

	return m
}
