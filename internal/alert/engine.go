package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// historyLimit bounds the stored event history. The oldest entry is
// evicted first.
const historyLimit = 1000

// Sink receives emitted alert events (log/metrics collaborator).
type Sink interface {
	Emit(Event)
}

// Engine runs a per-rule armed/cooling-down state machine. A rule that
// fires enters cooldown for its configured window and is armed again once
// the window elapses. The engine owns its rule table, cooldown table, and
// history buffer; it shares no state with the metering subsystem.
type Engine struct {
	mu        sync.Mutex
	rules     map[string]Rule
	cooldowns map[string]time.Time
	history   []Event
	sink      Sink
	now       func() time.Time
}

// NewEngine creates an engine with the default rule set. A nil sink
// drops emitted events.
func NewEngine(sink Sink) *Engine {
	e := &Engine{
		rules:     make(map[string]Rule),
		cooldowns: make(map[string]time.Time),
		sink:      sink,
		now:       time.Now,
	}

	for _, rule := range DefaultRules() {
		e.Register(rule)
	}

	return e
}

// Register adds or replaces a rule. Rules with no cooldown get the default.
func (e *Engine) Register(rule Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rule.Cooldown == 0 {
		rule.Cooldown = DefaultCooldown
	}
	e.rules[rule.ID] = rule
}

// ShouldAlert reports whether the rule would fire for the signal. A rule in
// cooldown returns false regardless of its predicate; the match is dropped,
// not deferred. An unknown rule ID is "no alert", never an error.
func (e *Engine) ShouldAlert(ruleID string, sig Signal) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.shouldAlertLocked(ruleID, sig)
}

func (e *Engine) shouldAlertLocked(ruleID string, sig Signal) bool {
	rule, ok := e.rules[ruleID]
	if !ok || rule.Matches == nil {
		return false
	}

	if firedAt, ok := e.cooldowns[ruleID]; ok {
		if e.now().Sub(firedAt) < rule.Cooldown {
			return false
		}
	}

	return rule.Matches(sig)
}

// Send evaluates the rule and, if it fires, records and emits an alert
// event. The returned event is nil when the rule did not fire. Send
// re-checks the cooldown itself, so calling it without a prior ShouldAlert
// is safe.
func (e *Engine) Send(ruleID string, sig Signal, details map[string]interface{}) *Event {
	e.mu.Lock()

	if !e.shouldAlertLocked(ruleID, sig) {
		e.mu.Unlock()
		return nil
	}

	rule := e.rules[ruleID]
	event := Event{
		ID:        uuid.New().String(),
		RuleID:    rule.ID,
		Severity:  rule.Severity,
		Message:   rule.Message,
		Details:   details,
		CreatedAt: e.now(),
	}

	e.history = append(e.history, event)
	if len(e.history) > historyLimit {
		e.history = e.history[1:]
	}
	e.cooldowns[ruleID] = event.CreatedAt

	e.mu.Unlock()

	if e.sink != nil {
		e.sink.Emit(event)
	}

	return &event
}

// Recent returns up to n events, most recent first.
func (e *Engine) Recent(n int) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n > len(e.history) {
		n = len(e.history)
	}

	events := make([]Event, 0, n)
	for i := len(e.history) - 1; i >= len(e.history)-n; i-- {
		events = append(events, e.history[i])
	}

	return events
}

// BySeverity returns stored events with the given severity, most recent first.
func (e *Engine) BySeverity(severity Severity) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	var events []Event
	for i := len(e.history) - 1; i >= 0; i-- {
		if e.history[i].Severity == severity {
			events = append(events, e.history[i])
		}
	}

	return events
}

// SetNow overrides the engine clock. Test hook.
func (e *Engine) SetNow(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}
