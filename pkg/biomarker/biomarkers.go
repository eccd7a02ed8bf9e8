package biomarker

import "time"

// Composite stability weights. F0 carries the most clinical signal for
// longitudinal tracking; the three quality measures share the rest evenly.
const (
	weightF0      = 0.40
	weightJitter  = 0.20
	weightShimmer = 0.20
	weightHNR     = 0.20
)

// AnalysisMetadata describes the recording behind a set of biomarkers.
type AnalysisMetadata struct {
	DurationSeconds float64   `json:"duration_seconds"`
	SampleRate      int       `json:"sample_rate"`
	VoicedRatio     float64   `json:"voiced_ratio"`
	Source          string    `json:"source"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// VocalBiomarkers is the complete result of one voice analysis.
// Constructed once per completed analysis and never mutated.
type VocalBiomarkers struct {
	F0       F0Analysis           `json:"f0"`
	Quality  VoiceQualityAnalysis `json:"quality"`
	Metadata AnalysisMetadata     `json:"metadata"`
}

// StabilityScore is the composite 0-100 vocal stability score: 40% F0
// stability, 20% each jitter, shimmer, and HNR quality.
func (b VocalBiomarkers) StabilityScore() float64 {
	return weightF0*b.F0.StabilityAssessment().Score() +
		weightJitter*b.Quality.Jitter.ClinicalAssessment().Score() +
		weightShimmer*b.Quality.Shimmer.ClinicalAssessment().Score() +
		weightHNR*b.Quality.HNR.ClinicalAssessment().Score()
}

// RecommendedAction is the follow-up suggested by a clinical summary.
type RecommendedAction int

const (
	// ActionContinueTracking means everything looks normal.
	ActionContinueTracking RecommendedAction = iota
	// ActionTrackTrends means keep an eye on direction over time.
	ActionTrackTrends
	// ActionMonitorClosely means record more often and watch for change.
	ActionMonitorClosely
	// ActionConsultSpecialist means findings warrant professional review.
	ActionConsultSpecialist
)

// String returns the action name.
func (a RecommendedAction) String() string {
	switch a {
	case ActionContinueTracking:
		return "continue_tracking"
	case ActionTrackTrends:
		return "track_trends"
	case ActionMonitorClosely:
		return "monitor_closely"
	case ActionConsultSpecialist:
		return "consult_specialist"
	default:
		return "unknown"
	}
}

// ClinicalVoiceAssessment is the derived clinical reading of one analysis.
type ClinicalVoiceAssessment struct {
	OverallQuality          QualityLevel      `json:"overall_quality"`
	F0Stability             StabilityLevel    `json:"f0_stability"`
	StabilityInterpretation string            `json:"stability_interpretation"`
	RecommendedAction       RecommendedAction `json:"recommended_action"`
}

// ClinicalSummary derives the assessment from the biomarkers. Conservative
// ordering: the recommendation is driven by the worst finding.
func (b VocalBiomarkers) ClinicalSummary() ClinicalVoiceAssessment {
	quality := b.Quality.QualityLevel()
	stability := b.F0.StabilityAssessment()

	var action RecommendedAction
	switch {
	case quality == QualityPathological || stability == StabilityUnreliable:
		action = ActionConsultSpecialist
	case quality == QualityPoor || stability == StabilityPoor:
		action = ActionMonitorClosely
	case quality == QualityModerate || stability == StabilityModerate:
		action = ActionTrackTrends
	default:
		action = ActionContinueTracking
	}

	return ClinicalVoiceAssessment{
		OverallQuality:          quality,
		F0Stability:             stability,
		StabilityInterpretation: b.F0.StabilityInterpretation(),
		RecommendedAction:       action,
	}
}
