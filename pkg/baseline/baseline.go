// Package baseline manages a user's reference vocal-quality snapshot: how
// it is established, validated, replaced, and expired. The replacement
// history is an append-only log; a baseline is superseded, never deleted.
package baseline

import (
	"time"

	"github.com/google/uuid"

	"github.com/sagehealth/go-sage/pkg/biomarker"
)

// minClinicalConfidence is the F0 confidence below which a baseline cannot
// anchor personalized thresholds.
const minClinicalConfidence = 50.0

// refreshAfter is the soft expiry: a baseline older than this should be
// re-recorded.
const refreshAfter = 90 * 24 * time.Hour

// RecordingContext captures how the baseline recording was made.
type RecordingContext struct {
	Environment string `json:"environment,omitempty"`
	Device      string `json:"device,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ValidationState is the clinical acceptance state of a baseline.
type ValidationState int

const (
	// ValidationValid means the baseline anchors personalized thresholds.
	ValidationValid ValidationState = iota
	// ValidationRejected means the recording failed clinical validation.
	// The baseline is still constructed and returned for inspection, but
	// must not be used for threshold derivation.
	ValidationRejected
)

// String returns the validation state name.
func (v ValidationState) String() string {
	if v == ValidationRejected {
		return "rejected"
	}
	return "valid"
}

// MarshalJSON encodes the state by name.
func (v ValidationState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON decodes the state from its name.
func (v *ValidationState) UnmarshalJSON(data []byte) error {
	if string(data) == `"rejected"` {
		*v = ValidationRejected
		return nil
	}
	*v = ValidationValid
	return nil
}

// ValidationStatus is the acceptance state plus its reason when rejected.
type ValidationStatus struct {
	State  ValidationState `json:"state"`
	Reason string          `json:"reason,omitempty"`
}

// Replacement is one entry in the append-only replacement log.
type Replacement struct {
	ReplacedAt time.Time      `json:"replaced_at"`
	Archived   *VocalBaseline `json:"archived"`
}

// VocalBaseline is a user's reference vocal snapshot. Immutable once
// established; ReplaceWith produces a successor instead of mutating.
type VocalBaseline struct {
	ID               string                     `json:"id"`
	UserID           string                     `json:"user_id"`
	EstablishedAt    time.Time                  `json:"established_at"`
	Biomarkers       biomarker.VocalBiomarkers  `json:"biomarkers"`
	Demographic      biomarker.Demographic      `json:"demographic"`
	RecordingContext RecordingContext           `json:"recording_context"`
	Thresholds       PersonalizedThresholds     `json:"thresholds"`
	Validation       ValidationStatus           `json:"validation"`
	Archived         *VocalBaseline             `json:"archived,omitempty"`
	History          []Replacement              `json:"history"`
}

// Establish creates a user's baseline from a completed analysis. A recording
// whose F0 confidence falls below the clinical minimum is soft-rejected: the
// baseline is returned for inspection but carries no thresholds.
func Establish(b biomarker.VocalBiomarkers, d biomarker.Demographic, userID string, rc RecordingContext) *VocalBaseline {
	vb := &VocalBaseline{
		ID:               uuid.NewString(),
		UserID:           userID,
		EstablishedAt:    time.Now(),
		Biomarkers:       b,
		Demographic:      d,
		RecordingContext: rc,
	}
	vb.validate()
	return vb
}

// validate sets the validation status and, when valid, the thresholds.
func (vb *VocalBaseline) validate() {
	if vb.Biomarkers.F0.Confidence < minClinicalConfidence {
		vb.Validation = ValidationStatus{
			State:  ValidationRejected,
			Reason: "f0 confidence below clinical minimum",
		}
		return
	}
	vb.Validation = ValidationStatus{State: ValidationValid}
	vb.Thresholds = deriveThresholds(vb.Biomarkers, vb.Demographic)
}

// UsableForThresholds reports whether the baseline may anchor change
// detection.
func (vb *VocalBaseline) UsableForThresholds() bool {
	return vb.Validation.State == ValidationValid
}

// ReplaceWith produces the successor baseline. The prior baseline is
// archived on the successor and appended to the replacement log, preserving
// full provenance across any number of replacements.
func (vb *VocalBaseline) ReplaceWith(b biomarker.VocalBiomarkers, at time.Time) *VocalBaseline {
	history := make([]Replacement, len(vb.History), len(vb.History)+1)
	copy(history, vb.History)
	history = append(history, Replacement{ReplacedAt: at, Archived: vb})

	next := &VocalBaseline{
		ID:               uuid.NewString(),
		UserID:           vb.UserID,
		EstablishedAt:    at,
		Biomarkers:       b,
		Demographic:      vb.Demographic,
		RecordingContext: vb.RecordingContext,
		Archived:         vb,
		History:          history,
	}
	next.validate()
	return next
}

// NeedsRefresh reports whether the baseline is past its 90-day soft expiry.
func (vb *VocalBaseline) NeedsRefresh() bool {
	return time.Since(vb.EstablishedAt) > refreshAfter
}

// DaysUntilExpiryRecommendation returns the days remaining before the
// refresh recommendation. Negative once expired; callers must handle
// negative values explicitly rather than expecting a floor at zero.
func (vb *VocalBaseline) DaysUntilExpiryRecommendation() int {
	elapsed := int(time.Since(vb.EstablishedAt).Hours() / 24)
	return int(refreshAfter.Hours()/24) - elapsed
}
