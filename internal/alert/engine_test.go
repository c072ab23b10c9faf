package alert

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureSink struct {
	events []Event
}

func (s *captureSink) Emit(event Event) {
	s.events = append(s.events, event)
}

// fakeClock drives the engine clock in tests.
type fakeClock struct {
	now time.Time
}

func newTestEngine() (*Engine, *captureSink, *fakeClock) {
	sink := &captureSink{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(sink)
	engine.SetNow(func() time.Time { return clock.now })
	return engine, sink, clock
}

func TestEngine_CooldownSuppression(t *testing.T) {
	engine, sink, clock := newTestEngine()
	sig := Signal{Message: "data corruption detected"}

	require.True(t, engine.ShouldAlert(RuleCriticalErrorPattern, sig))

	event := engine.Send(RuleCriticalErrorPattern, sig, nil)
	require.NotNil(t, event)
	require.Equal(t, SeverityCritical, event.Severity)
	require.Len(t, sink.events, 1)

	// A second match within the cooldown window is dropped, not deferred,
	// even with a different message.
	other := Signal{Message: "security incident"}
	require.False(t, engine.ShouldAlert(RuleCriticalErrorPattern, other))
	require.Nil(t, engine.Send(RuleCriticalErrorPattern, other, nil))
	require.Len(t, sink.events, 1)

	// Once the window elapses the rule is armed again.
	clock.now = clock.now.Add(5*time.Minute + time.Second)
	require.True(t, engine.ShouldAlert(RuleCriticalErrorPattern, other))
	require.NotNil(t, engine.Send(RuleCriticalErrorPattern, other, nil))
	require.Len(t, sink.events, 2)
}

func TestEngine_UnknownRuleIsNoAlert(t *testing.T) {
	engine, _, _ := newTestEngine()

	require.False(t, engine.ShouldAlert("no-such-rule", Signal{Message: "crash"}))
	require.Nil(t, engine.Send("no-such-rule", Signal{Message: "crash"}, nil))
}

func TestEngine_NewErrorPattern(t *testing.T) {
	engine, _, _ := newTestEngine()

	// Fires while the occurrence count is absent or exactly one, so a new
	// pattern can still fire on its second observation.
	require.True(t, engine.ShouldAlert(RuleNewErrorPattern, Signal{Occurrences: 0}))
	require.True(t, engine.ShouldAlert(RuleNewErrorPattern, Signal{Occurrences: 1}))
	require.False(t, engine.ShouldAlert(RuleNewErrorPattern, Signal{Occurrences: 2}))
}

func TestEngine_CriticalKeywords(t *testing.T) {
	engine, _, _ := newTestEngine()

	cases := []struct {
		message string
		fires   bool
	}{
		{"DATA Corruption detected in segment 4", true},
		{"worker CRASH on startup", true},
		{"possible data loss during sync", true},
		{"Security token rejected", true},
		{"connection refused", false},
		{"", false},
	}

	for _, tc := range cases {
		got := engine.ShouldAlert(RuleCriticalErrorPattern, Signal{Message: tc.message})
		require.Equal(t, tc.fires, got, "message %q", tc.message)
	}
}

func TestEngine_FixQualityDrop(t *testing.T) {
	engine, _, _ := newTestEngine()

	low := 0.4
	boundary := 0.5
	require.True(t, engine.ShouldAlert(RuleFixQualityDrop, Signal{QualityScore: &low}))
	require.False(t, engine.ShouldAlert(RuleFixQualityDrop, Signal{QualityScore: &boundary}))
	// A signal without quality statistics never matches.
	require.False(t, engine.ShouldAlert(RuleFixQualityDrop, Signal{Message: "crash"}))
}

func TestEngine_ErrorRateSpikeIsInert(t *testing.T) {
	engine, _, _ := newTestEngine()

	require.False(t, engine.ShouldAlert(RuleErrorRateSpike, Signal{Message: "crash", Occurrences: 100}))
	require.Nil(t, engine.Send(RuleErrorRateSpike, Signal{}, nil))
}

func TestEngine_HistoryFIFO(t *testing.T) {
	engine, _, clock := newTestEngine()
	engine.Register(Rule{
		ID:       "always",
		Name:     "Always",
		Severity: SeverityLow,
		Message:  "test rule",
		Cooldown: time.Millisecond,
		Matches:  func(Signal) bool { return true },
	})

	for i := 1; i <= 1001; i++ {
		clock.now = clock.now.Add(time.Second)
		event := engine.Send("always", Signal{}, map[string]interface{}{"seq": i})
		require.NotNil(t, event)
	}

	events := engine.Recent(2000)
	require.Len(t, events, 1000)

	// Most recent first; the very first event was evicted.
	require.Equal(t, 1001, events[0].Details["seq"])
	require.Equal(t, 2, events[len(events)-1].Details["seq"])
}

func TestEngine_RecentAndBySeverity(t *testing.T) {
	engine, _, clock := newTestEngine()
	for _, severity := range []Severity{SeverityLow, SeverityCritical, SeverityMedium} {
		engine.Register(Rule{
			ID:       fmt.Sprintf("rule-%s", severity),
			Severity: severity,
			Message:  string(severity),
			Cooldown: time.Millisecond,
			Matches:  func(Signal) bool { return true },
		})
	}

	for i, severity := range []Severity{SeverityLow, SeverityCritical, SeverityMedium, SeverityCritical} {
		clock.now = clock.now.Add(time.Second)
		require.NotNil(t, engine.Send(fmt.Sprintf("rule-%s", severity), Signal{}, map[string]interface{}{"seq": i}))
	}

	recent := engine.Recent(2)
	require.Len(t, recent, 2)
	require.Equal(t, SeverityCritical, recent[0].Severity)
	require.Equal(t, SeverityMedium, recent[1].Severity)

	critical := engine.BySeverity(SeverityCritical)
	require.Len(t, critical, 2)
	require.Equal(t, 3, critical[0].Details["seq"])
	require.Equal(t, 1, critical[1].Details["seq"])
}
