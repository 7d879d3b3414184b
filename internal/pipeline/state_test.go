package pipeline

import (
	"errors"
	"testing"

	"shuffle/internal/catalog"
	"shuffle/internal/report"
)

func TestTransitionsMoveForwardOnly(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StatePending, StateResolving, true},
		{StateResolving, StateResolved, true},
		{StateResolving, StateResolutionFailed, true},
		{StateResolved, StateFetching, true},
		{StateFetching, StateStreamFound, true},
		{StateFetching, StateNoStreamAvailable, true},
		{StateFetching, StateFetchFailed, true},
		{StateStreamFound, StateDownloading, true},
		{StateDownloading, StateDownloaded, true},
		{StateDownloading, StateDownloadFailed, true},
		{StateDownloading, StateCancelled, true},
		{StatePending, StateCancelled, true},
		{StateResolved, StateResolving, false},
		{StatePending, StateDownloading, false},
		{StateDownloaded, StateCancelled, false},
		{StateCancelled, StatePending, false},
		{StateResolutionFailed, StateFetching, false},
		{StateNoStreamAvailable, StateDownloading, false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	terminal := []State{StateResolutionFailed, StateNoStreamAvailable, StateFetchFailed, StateDownloaded, StateDownloadFailed, StateCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StatePending, StateResolving, StateResolved, StateFetching, StateStreamFound, StateDownloading} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestOutcomeMapping(t *testing.T) {
	if StateDownloaded.Outcome() != report.OutcomeDownloaded {
		t.Fatal("downloaded outcome mismatch")
	}
	if StateFetchFailed.Outcome() != report.OutcomeFetchFailed {
		t.Fatal("fetch failed outcome mismatch")
	}
	if StateCancelled.Outcome() != report.OutcomeCancelled {
		t.Fatal("cancelled outcome mismatch")
	}
}

func TestAdvanceRejectsInvalidMove(t *testing.T) {
	rec := &record{item: catalog.Item{ID: "a"}, state: StatePending}
	if err := advance(rec, StateDownloaded); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if rec.state != StatePending {
		t.Fatalf("state changed on rejected move: %s", rec.state)
	}
	for _, next := range []State{StateResolving, StateResolved, StateFetching, StateStreamFound} {
		if err := advance(rec, next); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}
	if !rec.streamFound {
		t.Fatal("streamFound not recorded")
	}
}
