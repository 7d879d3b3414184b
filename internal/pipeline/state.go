package pipeline

import (
	"errors"
	"fmt"

	"shuffle/internal/report"
)

// State is the lifecycle position of one item within a batch attempt.
type State string

const (
	StatePending           State = "pending"
	StateResolving         State = "resolving"
	StateResolved          State = "resolved"
	StateResolutionFailed  State = "resolution_failed"
	StateFetching          State = "fetching"
	StateStreamFound       State = "stream_found"
	StateNoStreamAvailable State = "no_stream_available"
	StateFetchFailed       State = "fetch_failed"
	StateDownloading       State = "downloading"
	StateDownloaded        State = "downloaded"
	StateDownloadFailed    State = "download_failed"
	StateCancelled         State = "cancelled"
)

// ErrInvalidTransition reports an attempt to move an item backwards or skip
// a state.
var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[State][]State{
	StatePending:     {StateResolving, StateCancelled},
	StateResolving:   {StateResolved, StateResolutionFailed, StateCancelled},
	StateResolved:    {StateFetching, StateCancelled},
	StateFetching:    {StateStreamFound, StateNoStreamAvailable, StateFetchFailed, StateCancelled},
	StateStreamFound: {StateDownloading, StateCancelled},
	StateDownloading: {StateDownloaded, StateDownloadFailed, StateCancelled},
}

// CanTransition reports whether from may advance to to.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s is a final state.
func (s State) IsTerminal() bool {
	_, hasNext := transitions[s]
	return !hasNext
}

// Outcome maps a terminal state to its report outcome.
func (s State) Outcome() report.Outcome {
	switch s {
	case StateDownloaded:
		return report.OutcomeDownloaded
	case StateResolutionFailed:
		return report.OutcomeResolutionFailed
	case StateNoStreamAvailable:
		return report.OutcomeNoStream
	case StateFetchFailed:
		return report.OutcomeFetchFailed
	case StateDownloadFailed:
		return report.OutcomeDownloadFailed
	default:
		return report.OutcomeCancelled
	}
}

func advance(rec *record, to State) error {
	if !CanTransition(rec.state, to) {
		return fmt.Errorf("%w: item %s from %s to %s", ErrInvalidTransition, rec.item.ID, rec.state, to)
	}
	rec.state = to
	if to == StateStreamFound {
		rec.streamFound = true
	}
	return nil
}
