package engine

import "testing"

// Table-driven coverage of the transition table, including the
// transitional-state ignore rules and the uniform "any + failure -> Error"
// rule.
func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		from    State
		event   EventKind
		next    State
		ignored bool
	}{
		{"idle starts", StateIdle, EventStart, StateStarting, false},
		{"idle ignores cancel", StateIdle, EventCancel, StateIdle, true},
		{"idle ignores stop", StateIdle, EventStopRequested, StateIdle, true},

		{"starting ignores duplicate start", StateStarting, EventStart, StateStarting, true},
		{"starting to listening on capture started", StateStarting, EventCaptureStarted, StateListening, false},
		{"starting ignores cancel", StateStarting, EventCancel, StateStarting, true},

		{"listening to stopping on stop requested", StateListening, EventStopRequested, StateStopping, false},
		{"listening to idle on cancel", StateListening, EventCancel, StateIdle, false},
		{"listening ignores duplicate capture started", StateListening, EventCaptureStarted, StateListening, true},

		{"stopping to processing on capture stopped", StateStopping, EventCaptureStopped, StateProcessing, false},
		{"stopping to idle on cancel", StateStopping, EventCancel, StateIdle, false},
		{"stopping ignores stop requested again", StateStopping, EventStopRequested, StateStopping, true},

		{"processing to idle on empty transcript", StateProcessing, EventSTTCompleteEmpty, StateIdle, false},
		{"processing to injecting on text", StateProcessing, EventSTTCompleteText, StateInjecting, false},
		{"processing to idle on cancel", StateProcessing, EventCancel, StateIdle, false},

		{"injecting to idle on injection complete", StateInjecting, EventInjectionComplete, StateIdle, false},
		{"injecting to idle on cancel", StateInjecting, EventCancel, StateIdle, false},
		{"injecting ignores stt complete text", StateInjecting, EventSTTCompleteText, StateInjecting, true},

		{"error resets to idle", StateError, EventReset, StateIdle, false},
		{"error ignores start", StateError, EventStart, StateError, true},

		{"failure from idle", StateIdle, EventFailure, StateError, false},
		{"failure from listening", StateListening, EventFailure, StateError, false},
		{"failure from processing", StateProcessing, EventFailure, StateError, false},
		{"failure from injecting", StateInjecting, EventFailure, StateError, false},
		{"failure from error stays error", StateError, EventFailure, StateError, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := transition(tc.from, tc.event)
			if got.Next != tc.next {
				t.Fatalf("transition(%s, %s) = %s, want %s", tc.from, tc.event, got.Next, tc.next)
			}
			if got.Ignored != tc.ignored {
				t.Fatalf("transition(%s, %s).Ignored = %v, want %v", tc.from, tc.event, got.Ignored, tc.ignored)
			}
		})
	}
}

// Every state must have a defined outcome for every event: transition
// returns a non-empty Next state for each state/event pair.
func TestTransitionIsTotal(t *testing.T) {
	states := []State{StateIdle, StateStarting, StateListening, StateStopping, StateProcessing, StateInjecting, StateError}
	events := []EventKind{
		EventStart, EventCaptureStarted, EventStopRequested, EventCancel,
		EventCaptureStopped, EventSTTCompleteEmpty, EventSTTCompleteText,
		EventInjectionComplete, EventFailure, EventReset,
	}
	for _, s := range states {
		for _, e := range events {
			got := transition(s, e)
			if got.Next == "" {
				t.Fatalf("transition(%s, %s) returned empty Next state", s, e)
			}
		}
	}
}

func TestStateMachineTransitionUpdatesState(t *testing.T) {
	m := NewStateMachine()
	if m.State() != StateIdle {
		t.Fatalf("new machine state = %s, want idle", m.State())
	}
	m.Transition(EventStart)
	if m.State() != StateStarting {
		t.Fatalf("state after start = %s, want starting", m.State())
	}
	// An ignored transition must not change state.
	m.Transition(EventStart)
	if m.State() != StateStarting {
		t.Fatalf("state after duplicate start = %s, want starting (ignored)", m.State())
	}
	m.Transition(EventCaptureStarted)
	if m.State() != StateListening {
		t.Fatalf("state after capture started = %s, want listening", m.State())
	}
}

func TestStateTerminal(t *testing.T) {
	terminal := []State{StateIdle, StateError}
	nonTerminal := []State{StateStarting, StateListening, StateStopping, StateProcessing, StateInjecting}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
