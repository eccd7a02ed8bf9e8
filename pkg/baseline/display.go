package baseline

import (
	"fmt"

	"github.com/sagehealth/go-sage/pkg/biomarker"
)

// DisplayMetric is one formatted value for presentation. Pure data; the UI
// layer renders it without interpreting biomarkers itself.
type DisplayMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// DisplayMetrics formats the baseline's biomarkers for display.
func (vb *VocalBaseline) DisplayMetrics() []DisplayMetric {
	b := vb.Biomarkers
	return []DisplayMetric{
		{Label: "Average Pitch", Value: fmt.Sprintf("%.1f", b.F0.Mean), Unit: "Hz"},
		{Label: "Pitch Variability", Value: fmt.Sprintf("%.1f", b.F0.Std), Unit: "Hz"},
		{Label: "Vocal Stability", Value: fmt.Sprintf("%.0f", b.StabilityScore()), Unit: "/100"},
		{Label: "Voice Quality", Value: b.Quality.QualityLevel().String()},
		{Label: "Jitter", Value: fmt.Sprintf("%.2f", b.Quality.Jitter.Local), Unit: "%"},
		{Label: "Shimmer", Value: fmt.Sprintf("%.2f", b.Quality.Shimmer.Local), Unit: "%"},
		{Label: "Clarity (HNR)", Value: fmt.Sprintf("%.1f", b.Quality.HNR.Mean), Unit: "dB"},
	}
}

// EducationalSummary returns a short plain-language explanation of what the
// baseline means for the user.
func (vb *VocalBaseline) EducationalSummary() string {
	if vb.Validation.State == ValidationRejected {
		return "This recording wasn't clear enough to set your vocal baseline. " +
			"Try again in a quiet space, speaking steadily about an arm's length from the microphone."
	}

	b := vb.Biomarkers
	summary := fmt.Sprintf(
		"Your baseline voice sits around %.0f Hz with a stability score of %.0f out of 100. ",
		b.F0.Mean, b.StabilityScore())

	switch b.ClinicalSummary().RecommendedAction {
	case biomarker.ActionContinueTracking:
		summary += "Everything looks typical for your voice. Future recordings are compared against this snapshot to spot meaningful change."
	case biomarker.ActionTrackTrends:
		summary += "A few measures sit slightly outside typical ranges. Keep recording regularly so trends stand out from one-off variation."
	case biomarker.ActionMonitorClosely:
		summary += "Some measures are further from typical ranges than expected. Record more often over the coming weeks."
	default:
		summary += "Some measures are well outside typical ranges. Consider discussing these results with a specialist."
	}
	return summary
}
