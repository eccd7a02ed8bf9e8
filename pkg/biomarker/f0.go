package biomarker

// Demographic selects the clinical F0 reference range.
type Demographic int

const (
	// DemographicUnknown uses the widest reference range.
	DemographicUnknown Demographic = iota
	// DemographicAdultFemale covers typical adult female voices.
	DemographicAdultFemale
	// DemographicAdultMale covers typical adult male voices.
	DemographicAdultMale
)

// String returns the demographic name.
func (d Demographic) String() string {
	switch d {
	case DemographicAdultFemale:
		return "adult_female"
	case DemographicAdultMale:
		return "adult_male"
	default:
		return "unknown"
	}
}

// ClinicalF0Range returns the inclusive F0 reference range in Hz and the
// minimum confidence required for the range check to be meaningful.
func (d Demographic) ClinicalF0Range() (minHz, maxHz, minConfidence float64) {
	switch d {
	case DemographicAdultFemale:
		return 165, 400, 50
	case DemographicAdultMale:
		return 85, 250, 50
	default:
		return 75, 500, 30
	}
}

// StabilityLevel classifies F0 variability across a recording.
type StabilityLevel int

const (
	// StabilityExcellent indicates very low pitch variability.
	StabilityExcellent StabilityLevel = iota
	// StabilityGood indicates normal pitch variability.
	StabilityGood
	// StabilityModerate indicates elevated pitch variability.
	StabilityModerate
	// StabilityPoor indicates high pitch variability.
	StabilityPoor
	// StabilityUnreliable indicates too little voiced signal to judge.
	StabilityUnreliable
)

// String returns the stability level name.
func (s StabilityLevel) String() string {
	switch s {
	case StabilityExcellent:
		return "excellent"
	case StabilityGood:
		return "good"
	case StabilityModerate:
		return "moderate"
	case StabilityPoor:
		return "poor"
	case StabilityUnreliable:
		return "unreliable"
	default:
		return "unknown"
	}
}

// Score maps a stability level onto the 0-100 stability scale.
// Unreliable scores zero: no credit for pitch we could not measure.
func (s StabilityLevel) Score() float64 {
	switch s {
	case StabilityExcellent:
		return 100
	case StabilityGood:
		return 80
	case StabilityModerate:
		return 60
	case StabilityPoor:
		return 40
	default:
		return 0
	}
}

// F0Analysis holds fundamental-frequency statistics for one recording.
// Confidence is the voiced-frame percentage (0-100) reported by the engine.
type F0Analysis struct {
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	Confidence float64 `json:"confidence"`
}

// IsWithinClinicalRange reports whether the mean F0 sits inside the
// demographic's reference range with enough confidence to trust it.
// Range bounds are inclusive.
func (f F0Analysis) IsWithinClinicalRange(d Demographic) bool {
	minHz, maxHz, minConf := d.ClinicalF0Range()
	return f.Mean >= minHz && f.Mean <= maxHz && f.Confidence >= minConf
}

// StabilityAssessment classifies pitch variability. Below 70% confidence
// the standard deviation is dominated by tracking noise, so the result is
// unreliable regardless of its value.
func (f F0Analysis) StabilityAssessment() StabilityLevel {
	if f.Confidence < 70 {
		return StabilityUnreliable
	}
	switch {
	case f.Std <= 10:
		return StabilityExcellent
	case f.Std <= 20:
		return StabilityGood
	case f.Std <= 35:
		return StabilityModerate
	default:
		return StabilityPoor
	}
}

// StabilityInterpretation returns a short user-readable reading of the
// stability assessment.
func (f F0Analysis) StabilityInterpretation() string {
	switch f.StabilityAssessment() {
	case StabilityExcellent:
		return "Your pitch is very steady."
	case StabilityGood:
		return "Your pitch is steady and within the normal range."
	case StabilityModerate:
		return "Your pitch varies a bit more than usual."
	case StabilityPoor:
		return "Your pitch varies noticeably across the recording."
	default:
		return "Not enough voiced signal to judge pitch stability."
	}
}
