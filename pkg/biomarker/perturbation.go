package biomarker

// Perturbation thresholds follow the MDVP normative values used in clinical
// voice assessment: jitter local 1.04% and shimmer local 3.81% / 0.35 dB mark
// the upper bound of healthy voices. Bands above normative are monotonic and
// disjoint over the whole numeric range.

// JitterMeasures holds cycle-to-cycle pitch-period perturbation values.
// Local, RAP and PPQ5 are percentages; Absolute is in microseconds.
type JitterMeasures struct {
	Local    float64 `json:"local"`
	Absolute float64 `json:"absolute"`
	RAP      float64 `json:"rap"`
	PPQ5     float64 `json:"ppq5"`
}

// ClinicalAssessment classifies jitter against fixed clinical thresholds.
func (j JitterMeasures) ClinicalAssessment() QualityLevel {
	switch {
	case j.Local >= 8.0 || j.RAP >= 5.0:
		return QualityPathological
	case j.Local >= 5.0 || j.RAP >= 3.5:
		return QualityPoor
	case j.Local >= 2.5 || j.RAP >= 2.0:
		return QualityModerate
	case j.Local >= 1.04 || j.RAP >= 1.0:
		return QualityGood
	default:
		return QualityExcellent
	}
}

// ShimmerMeasures holds cycle-to-cycle amplitude perturbation values.
// Local, APQ3 and APQ5 are percentages; DB is in decibels.
type ShimmerMeasures struct {
	Local float64 `json:"local"`
	DB    float64 `json:"db"`
	APQ3  float64 `json:"apq3"`
	APQ5  float64 `json:"apq5"`
}

// ClinicalAssessment classifies shimmer against fixed clinical thresholds.
func (s ShimmerMeasures) ClinicalAssessment() QualityLevel {
	switch {
	case s.Local >= 15.0 || s.DB >= 1.5:
		return QualityPathological
	case s.Local >= 10.0 || s.DB >= 1.0:
		return QualityPoor
	case s.Local >= 6.0 || s.DB >= 0.6:
		return QualityModerate
	case s.Local >= 3.81 || s.DB >= 0.35:
		return QualityGood
	default:
		return QualityExcellent
	}
}

// HNRAnalysis holds harmonics-to-noise ratio statistics in dB.
// Higher is clearer; low HNR indicates breathiness or roughness.
type HNRAnalysis struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// ClinicalAssessment classifies voice clarity against fixed HNR thresholds.
func (h HNRAnalysis) ClinicalAssessment() QualityLevel {
	switch {
	case h.Mean >= 20:
		return QualityExcellent
	case h.Mean >= 15:
		return QualityGood
	case h.Mean >= 10:
		return QualityModerate
	case h.Mean >= 7:
		return QualityPoor
	default:
		return QualityPathological
	}
}
