// Package metrics provides Prometheus metrics for the gating core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "apicore"

var (
	// GatedRequestsTotal counts metered requests by tier and outcome
	// (allowed, quota_exceeded, invalid_subscription).
	GatedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "meter",
			Name:      "gated_requests_total",
			Help:      "Total metered requests by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	// AuthFailuresTotal counts rejected authentication attempts by scheme.
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total authentication failures by credential scheme",
		},
		[]string{"scheme"},
	)

	// AlertsEmittedTotal counts alert events by rule and severity.
	AlertsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "emitted_total",
			Help:      "Total alert events emitted by rule and severity",
		},
		[]string{"rule", "severity"},
	)

	// UsageResetsTotal counts principals reset by the period rollover.
	UsageResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "meter",
			Name:      "usage_resets_total",
			Help:      "Total principals whose usage counters were rolled over",
		},
	)
)
