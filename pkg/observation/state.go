// Package observation manages the lifecycle of N parallel feature
// observations as a declarative state machine over fetchers.
package observation

import "github.com/sagehealth/go-sage/pkg/sageerr"

// State is the lifecycle state of one observed feature.
type State int

const (
	// StateIdle means no observation has been requested.
	StateIdle State = iota
	// StateConnecting means the subscription is being opened.
	StateConnecting
	// StateObserving means the subscription is live.
	StateObserving
	// StatePaused means the subscription was released but the feature
	// stays registered for a later resume.
	StatePaused
	// StateError means the observation failed.
	StateError
)

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateObserving:
		return "observing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// active reports whether the state counts toward aggregate observation.
func (s State) active() bool {
	return s == StateConnecting || s == StateObserving
}

// restartable reports whether a fresh start is accepted from this state.
func (s State) restartable() bool {
	return s == StateIdle || s == StateError
}

// Status is one feature's lifecycle state plus its failure, if any.
type Status struct {
	State State          `json:"state"`
	Err   *sageerr.Error `json:"error,omitempty"`
}
