// Package monitor tracks error occurrences and feeds the alert engine.
package monitor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/alert"
)

// ErrorMonitor fingerprints incoming errors, keeps per-fingerprint
// occurrence counts, and dispatches the relevant alert rules. It is invoked
// synchronously from whichever signal path observed the error.
type ErrorMonitor struct {
	mu          sync.Mutex
	occurrences map[string]int
	engine      *alert.Engine
	logger      *zap.Logger
}

func NewErrorMonitor(engine *alert.Engine, logger *zap.Logger) *ErrorMonitor {
	return &ErrorMonitor{
		occurrences: make(map[string]int),
		engine:      engine,
		logger:      logger,
	}
}

// Fingerprint derives a stable identifier grouping recurring errors by
// shape: the message is lowercased and digits are masked, so variable parts
// like durations and ids collapse into one pattern.
func Fingerprint(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return '#'
		}
		return r
	}, normalized)

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// RecordError registers one error occurrence and dispatches the error
// rules. The signal carries the occurrence count as it was before this
// observation, so a brand-new pattern can still match on its second
// occurrence.
func (m *ErrorMonitor) RecordError(message string) {
	fingerprint := Fingerprint(message)

	m.mu.Lock()
	seen := m.occurrences[fingerprint]
	m.occurrences[fingerprint] = seen + 1
	m.mu.Unlock()

	sig := alert.Signal{
		Fingerprint: fingerprint,
		Message:     message,
		Occurrences: seen,
	}
	details := map[string]interface{}{
		"fingerprint": fingerprint,
		"message":     message,
		"occurrences": seen + 1,
	}

	m.engine.Send(alert.RuleNewErrorPattern, sig, details)
	m.engine.Send(alert.RuleCriticalErrorPattern, sig, details)
	m.engine.Send(alert.RuleErrorRateSpike, sig, details)

	m.logger.Debug("error recorded",
		zap.String("fingerprint", fingerprint),
		zap.Int("occurrences", seen+1))
}

// RecordQuality dispatches aggregate fix-quality statistics.
func (m *ErrorMonitor) RecordQuality(score float64) {
	sig := alert.Signal{QualityScore: &score}

	m.engine.Send(alert.RuleFixQualityDrop, sig, map[string]interface{}{
		"score": score,
	})
}

// Occurrences returns the recorded count for a fingerprint.
func (m *ErrorMonitor) Occurrences(fingerprint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.occurrences[fingerprint]
}
