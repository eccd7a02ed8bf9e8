package baseline

import "github.com/sagehealth/go-sage/pkg/biomarker"

// Personal-band multipliers. A user's own normal is allowed to drift this
// far from the baseline recording before a change is flagged.
const (
	f0SigmaBand       = 2.0
	jitterMultiplier  = 1.5
	shimmerMultiplier = 1.5
	hnrMultiplier     = 0.8
)

// PersonalizedThresholds is the per-user detection band derived from an
// accepted baseline recording.
type PersonalizedThresholds struct {
	// F0Min/F0Max is mean ± 2σ intersected with the demographic's
	// clinical range, in Hz.
	F0Min float64 `json:"f0_min"`
	F0Max float64 `json:"f0_max"`

	// JitterThreshold and ShimmerThreshold are upper bounds in percent.
	JitterThreshold  float64 `json:"jitter_threshold"`
	ShimmerThreshold float64 `json:"shimmer_threshold"`

	// HNRThreshold is a lower bound in dB.
	HNRThreshold float64 `json:"hnr_threshold"`
}

// deriveThresholds computes the personal band from one set of biomarkers.
func deriveThresholds(b biomarker.VocalBiomarkers, d biomarker.Demographic) PersonalizedThresholds {
	clinicalMin, clinicalMax, _ := d.ClinicalF0Range()

	f0Min := b.F0.Mean - f0SigmaBand*b.F0.Std
	if f0Min < clinicalMin {
		f0Min = clinicalMin
	}
	f0Max := b.F0.Mean + f0SigmaBand*b.F0.Std
	if f0Max > clinicalMax {
		f0Max = clinicalMax
	}

	return PersonalizedThresholds{
		F0Min:            f0Min,
		F0Max:            f0Max,
		JitterThreshold:  b.Quality.Jitter.Local * jitterMultiplier,
		ShimmerThreshold: b.Quality.Shimmer.Local * shimmerMultiplier,
		HNRThreshold:     b.Quality.HNR.Mean * hnrMultiplier,
	}
}
