package alert

import (
	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/metrics"
)

// LogSink emits alert events to the structured log and the alert counter.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(event Event) {
	metrics.AlertsEmittedTotal.WithLabelValues(event.RuleID, string(event.Severity)).Inc()

	s.logger.Warn("alert emitted",
		zap.String("id", event.ID),
		zap.String("rule_id", event.RuleID),
		zap.String("severity", string(event.Severity)),
		zap.String("message", event.Message),
		zap.Any("details", event.Details))
}
