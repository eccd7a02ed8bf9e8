package feature

import (
	"time"

	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Metadata describes the recording behind one observation. Optional; the
// engine omits it for lightweight updates.
type Metadata struct {
	DurationSeconds  float64 `json:"duration_seconds"`
	SampleRate       int     `json:"sample_rate"`
	VoicedRatio      float64 `json:"voiced_ratio"`
	FrameCount       int     `json:"frame_count,omitempty"`
	VoicedFrameCount int     `json:"voiced_frame_count,omitempty"`
	Source           string  `json:"source,omitempty"`
}

// Observation is one validated feature value. Created per store update,
// superseded by the next update for the same feature, never mutated.
type Observation struct {
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
	Metadata   *Metadata `json:"metadata,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Phase is the observable lifecycle phase of one feature.
type Phase int

const (
	// PhaseIdle means no observation has been requested.
	PhaseIdle Phase = iota
	// PhaseLoading means an update is awaited.
	PhaseLoading
	// PhaseSuccess means the latest update was accepted.
	PhaseSuccess
	// PhaseError means the latest update failed terminally.
	PhaseError
)

// MarshalJSON encodes the phase by name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the observable status of one feature. Exactly one state holds at
// a time per feature per subscriber; transitions happen only inside the
// Processor.
type State struct {
	Phase       Phase          `json:"phase"`
	Observation *Observation   `json:"observation,omitempty"`
	Err         *sageerr.Error `json:"error,omitempty"`
}

// Idle returns the initial state.
func Idle() State { return State{Phase: PhaseIdle} }

// Loading returns the awaiting-update state.
func Loading() State { return State{Phase: PhaseLoading} }

// Success wraps an accepted observation.
func Success(obs Observation) State {
	return State{Phase: PhaseSuccess, Observation: &obs}
}

// Failed wraps a terminal error.
func Failed(err *sageerr.Error) State {
	return State{Phase: PhaseError, Err: err}
}
