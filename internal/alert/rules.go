package alert

import "strings"

// Well-known rule IDs.
const (
	RuleNewErrorPattern      = "new-error-pattern"
	RuleCriticalErrorPattern = "critical-error-pattern"
	RuleFixQualityDrop       = "fix-quality-drop"
	RuleErrorRateSpike       = "error-rate-spike"
)

// criticalKeywords mark an error message as critical regardless of how
// often it occurs.
var criticalKeywords = []string{"corruption", "crash", "data loss", "security"}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       RuleNewErrorPattern,
			Name:     "New Error Pattern",
			Severity: SeverityHigh,
			Message:  "a previously unseen error pattern was observed",
			Cooldown: DefaultCooldown,
			// Fires while the fingerprint's occurrence count is still at
			// most one, so a brand-new pattern can alert on its second
			// observation as well as its first.
			Matches: func(sig Signal) bool {
				return sig.Occurrences == 0 || sig.Occurrences == 1
			},
		},
		{
			ID:       RuleCriticalErrorPattern,
			Name:     "Critical Error Pattern",
			Severity: SeverityCritical,
			Message:  "an error message matched a critical keyword",
			Cooldown: DefaultCooldown,
			Matches: func(sig Signal) bool {
				msg := strings.ToLower(sig.Message)
				for _, keyword := range criticalKeywords {
					if strings.Contains(msg, keyword) {
						return true
					}
				}
				return false
			},
		},
		{
			ID:       RuleFixQualityDrop,
			Name:     "Fix Quality Drop",
			Severity: SeverityMedium,
			Message:  "aggregate fix quality dropped below 0.5",
			Cooldown: DefaultCooldown,
			Matches: func(sig Signal) bool {
				return sig.QualityScore != nil && *sig.QualityScore < 0.5
			},
		},
		{
			ID:       RuleErrorRateSpike,
			Name:     "Error Rate Spike",
			Severity: SeverityHigh,
			Message:  "error rate spiked above baseline",
			Cooldown: DefaultCooldown,
			// Extension point: no rate baseline is computed yet, so this
			// rule never fires. Replace the predicate once the monitor
			// tracks a windowed error rate.
			Matches: func(Signal) bool {
				return false
			},
		},
	}
}
