// Package alert evaluates operational alert rules against error and quality
// signals, with per-rule cooldowns and a bounded event history.
package alert

import (
	"time"
)

// Severity represents the severity level of an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// DefaultCooldown is the minimum time between successive events from the
// same rule.
const DefaultCooldown = 5 * time.Minute

// Signal is the context a rule predicate evaluates. Rules read different
// fields; the dispatcher decides which rules see which signal.
type Signal struct {
	// Fingerprint groups recurring errors by shape rather than exact text.
	Fingerprint string
	// Message is the raw error message.
	Message string
	// Occurrences is the historical count for the fingerprint, 0 if the
	// fingerprint is not tracked.
	Occurrences int
	// QualityScore is the aggregate fix quality, nil when the signal does
	// not carry quality statistics.
	QualityScore *float64
}

// Rule defines one alert rule. Rules form a closed set registered at
// engine construction; an unknown rule ID evaluates to "no alert".
type Rule struct {
	ID       string
	Name     string
	Severity Severity
	Message  string
	Cooldown time.Duration
	Matches  func(Signal) bool
}

// Event is a generated alert instance.
type Event struct {
	ID        string                 `json:"id"`
	RuleID    string                 `json:"rule_id"`
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
