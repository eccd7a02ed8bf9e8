// Package biomarker models clinical voice-quality measurements.
//
// Everything in this package is a pure value: classification functions are
// total, side-effect free, and defined for every input including zero and
// extreme values, so they can be tested deterministically.
package biomarker

// QualityLevel is the five-level clinical voice-quality scale.
type QualityLevel int

const (
	// QualityExcellent indicates values well inside normative ranges.
	QualityExcellent QualityLevel = iota
	// QualityGood indicates values slightly above normative ranges.
	QualityGood
	// QualityModerate indicates values worth watching over time.
	QualityModerate
	// QualityPoor indicates values that warrant closer monitoring.
	QualityPoor
	// QualityPathological indicates values in the clinically abnormal range.
	QualityPathological
)

// String returns the lowercase scale name.
func (q QualityLevel) String() string {
	switch q {
	case QualityExcellent:
		return "excellent"
	case QualityGood:
		return "good"
	case QualityModerate:
		return "moderate"
	case QualityPoor:
		return "poor"
	case QualityPathological:
		return "pathological"
	default:
		return "unknown"
	}
}

// Worse returns the worse of two levels.
func (q QualityLevel) Worse(other QualityLevel) QualityLevel {
	if other > q {
		return other
	}
	return q
}

// Score maps a level onto the 0-100 stability scale.
func (q QualityLevel) Score() float64 {
	switch q {
	case QualityExcellent:
		return 100
	case QualityGood:
		return 80
	case QualityModerate:
		return 60
	case QualityPoor:
		return 40
	default:
		return 20
	}
}

// VoiceQualityAnalysis groups the three perturbation-based quality measures
// extracted from one sustained-vowel recording.
type VoiceQualityAnalysis struct {
	Jitter  JitterMeasures  `json:"jitter"`
	Shimmer ShimmerMeasures `json:"shimmer"`
	HNR     HNRAnalysis     `json:"hnr"`
}

// QualityLevel returns the worst of the three component assessments.
// Conservative on purpose: a single pathological measure makes the whole
// recording pathological, never averaged away.
func (v VoiceQualityAnalysis) QualityLevel() QualityLevel {
	level := v.Jitter.ClinicalAssessment()
	level = level.Worse(v.Shimmer.ClinicalAssessment())
	level = level.Worse(v.HNR.ClinicalAssessment())
	return level
}
