package biomarker

import (
	"math"
	"testing"
)

func TestF0ClinicalRangeBoundaries(t *testing.T) {
	tests := []struct {
		name string
		f0   F0Analysis
		demo Demographic
		want bool
	}{
		{"female lower boundary inclusive", F0Analysis{Mean: 165.0, Confidence: 50}, DemographicAdultFemale, true},
		{"female just below lower boundary", F0Analysis{Mean: 164.9, Confidence: 85}, DemographicAdultFemale, false},
		{"female upper boundary inclusive", F0Analysis{Mean: 400.0, Confidence: 85}, DemographicAdultFemale, true},
		{"female above upper boundary", F0Analysis{Mean: 400.1, Confidence: 85}, DemographicAdultFemale, false},
		{"female below minimum confidence", F0Analysis{Mean: 220.0, Confidence: 49.9}, DemographicAdultFemale, false},
		{"male typical", F0Analysis{Mean: 120.0, Confidence: 70}, DemographicAdultMale, true},
		{"male female-range value", F0Analysis{Mean: 300.0, Confidence: 70}, DemographicAdultMale, false},
		{"unknown wide range low confidence ok", F0Analysis{Mean: 80.0, Confidence: 30}, DemographicUnknown, true},
		{"unknown below confidence floor", F0Analysis{Mean: 200.0, Confidence: 29}, DemographicUnknown, false},
		{"zero value", F0Analysis{Mean: 0, Confidence: 100}, DemographicAdultFemale, false},
		{"extreme value", F0Analysis{Mean: 1e9, Confidence: 100}, DemographicUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f0.IsWithinClinicalRange(tt.demo); got != tt.want {
				t.Errorf("IsWithinClinicalRange(%v) = %v, want %v", tt.demo, got, tt.want)
			}
		})
	}
}

func TestF0StabilityAssessment(t *testing.T) {
	tests := []struct {
		name string
		f0   F0Analysis
		want StabilityLevel
	}{
		{"low confidence overrides low std", F0Analysis{Std: 2, Confidence: 69.9}, StabilityUnreliable},
		{"std at excellent boundary", F0Analysis{Std: 10, Confidence: 70}, StabilityExcellent},
		{"std just above excellent", F0Analysis{Std: 10.1, Confidence: 70}, StabilityGood},
		{"std at good boundary", F0Analysis{Std: 20, Confidence: 90}, StabilityGood},
		{"std at moderate boundary", F0Analysis{Std: 35, Confidence: 90}, StabilityModerate},
		{"std above moderate", F0Analysis{Std: 35.1, Confidence: 90}, StabilityPoor},
		{"zero std", F0Analysis{Std: 0, Confidence: 100}, StabilityExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f0.StabilityAssessment(); got != tt.want {
				t.Errorf("StabilityAssessment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJitterBandsMonotonic(t *testing.T) {
	// Sweep local jitter over the full range; classification must never
	// improve as the value grows.
	prev := QualityExcellent
	for local := 0.0; local <= 50.0; local += 0.01 {
		level := JitterMeasures{Local: local}.ClinicalAssessment()
		if level < prev {
			t.Fatalf("classification improved at local=%.2f: %v after %v", local, level, prev)
		}
		prev = level
	}

	tests := []struct {
		name   string
		jitter JitterMeasures
		want   QualityLevel
	}{
		{"normative", JitterMeasures{Local: 1.03, RAP: 0.99}, QualityExcellent},
		{"zero", JitterMeasures{}, QualityExcellent},
		{"local at good boundary", JitterMeasures{Local: 1.04}, QualityGood},
		{"rap alone pushes to good", JitterMeasures{Local: 0.5, RAP: 1.0}, QualityGood},
		{"local pathological boundary", JitterMeasures{Local: 8.0}, QualityPathological},
		{"rap pathological boundary", JitterMeasures{Local: 0.5, RAP: 5.0}, QualityPathological},
		{"very large", JitterMeasures{Local: 1e6, RAP: 1e6}, QualityPathological},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.jitter.ClinicalAssessment(); got != tt.want {
				t.Errorf("ClinicalAssessment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShimmerAssessment(t *testing.T) {
	tests := []struct {
		name    string
		shimmer ShimmerMeasures
		want    QualityLevel
	}{
		{"normative", ShimmerMeasures{Local: 3.2, DB: 0.3}, QualityExcellent},
		{"local at good boundary", ShimmerMeasures{Local: 3.81, DB: 0.3}, QualityGood},
		{"db alone pushes to moderate", ShimmerMeasures{Local: 3.0, DB: 0.6}, QualityModerate},
		{"poor band", ShimmerMeasures{Local: 10.0, DB: 0.9}, QualityPoor},
		{"pathological", ShimmerMeasures{Local: 20.0, DB: 2.0}, QualityPathological},
		{"zero", ShimmerMeasures{}, QualityExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shimmer.ClinicalAssessment(); got != tt.want {
				t.Errorf("ClinicalAssessment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHNRAssessment(t *testing.T) {
	tests := []struct {
		name string
		hnr  HNRAnalysis
		want QualityLevel
	}{
		{"clear voice", HNRAnalysis{Mean: 20.0}, QualityExcellent},
		{"just below excellent", HNRAnalysis{Mean: 19.5}, QualityGood},
		{"moderate", HNRAnalysis{Mean: 12.0}, QualityModerate},
		{"poor", HNRAnalysis{Mean: 7.0}, QualityPoor},
		{"pathological", HNRAnalysis{Mean: 4.0}, QualityPathological},
		{"negative", HNRAnalysis{Mean: -10.0}, QualityPathological},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hnr.ClinicalAssessment(); got != tt.want {
				t.Errorf("ClinicalAssessment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQualityLevelNeverBetterThanAnyComponent(t *testing.T) {
	// Representative values for each band of each component.
	jitters := []JitterMeasures{
		{Local: 0.5}, {Local: 1.5}, {Local: 3.0}, {Local: 6.0}, {Local: 12.0},
	}
	shimmers := []ShimmerMeasures{
		{Local: 2.0, DB: 0.2}, {Local: 4.0, DB: 0.4}, {Local: 7.0, DB: 0.7},
		{Local: 11.0, DB: 1.1}, {Local: 20.0, DB: 2.0},
	}
	hnrs := []HNRAnalysis{
		{Mean: 25}, {Mean: 17}, {Mean: 12}, {Mean: 8}, {Mean: 3},
	}

	for _, j := range jitters {
		for _, s := range shimmers {
			for _, h := range hnrs {
				v := VoiceQualityAnalysis{Jitter: j, Shimmer: s, HNR: h}
				got := v.QualityLevel()
				for _, comp := range []QualityLevel{
					j.ClinicalAssessment(), s.ClinicalAssessment(), h.ClinicalAssessment(),
				} {
					if got < comp {
						t.Fatalf("QualityLevel %v better than component %v (j=%+v s=%+v h=%+v)",
							got, comp, j, s, h)
					}
				}
			}
		}
	}
}

func TestClinicalSummaryHealthyVoice(t *testing.T) {
	b := VocalBiomarkers{
		F0: F0Analysis{Mean: 220.5, Std: 15.2, Confidence: 85},
		Quality: VoiceQualityAnalysis{
			Jitter:  JitterMeasures{Local: 0.8, RAP: 0.6},
			Shimmer: ShimmerMeasures{Local: 3.2, DB: 0.28},
			HNR:     HNRAnalysis{Mean: 19.5, Std: 2.1},
		},
	}

	if got := b.Quality.QualityLevel(); got != QualityGood {
		t.Errorf("QualityLevel() = %v, want %v", got, QualityGood)
	}

	summary := b.ClinicalSummary()
	if summary.RecommendedAction != ActionContinueTracking {
		t.Errorf("RecommendedAction = %v, want %v", summary.RecommendedAction, ActionContinueTracking)
	}
	if summary.F0Stability != StabilityGood {
		t.Errorf("F0Stability = %v, want %v", summary.F0Stability, StabilityGood)
	}
}

func TestClinicalSummaryPathologicalVoice(t *testing.T) {
	b := VocalBiomarkers{
		F0: F0Analysis{Mean: 220.5, Std: 15.2, Confidence: 85},
		Quality: VoiceQualityAnalysis{
			Jitter:  JitterMeasures{Local: 12.0, RAP: 8.0},
			Shimmer: ShimmerMeasures{Local: 20.0, DB: 2.0},
			HNR:     HNRAnalysis{Mean: 4.0, Std: 3.5},
		},
	}

	if got := b.Quality.QualityLevel(); got != QualityPathological {
		t.Errorf("QualityLevel() = %v, want %v", got, QualityPathological)
	}
	if got := b.ClinicalSummary().RecommendedAction; got != ActionConsultSpecialist {
		t.Errorf("RecommendedAction = %v, want %v", got, ActionConsultSpecialist)
	}
}

func TestClinicalSummaryUnreliableStability(t *testing.T) {
	b := VocalBiomarkers{
		F0: F0Analysis{Mean: 220.0, Std: 5.0, Confidence: 40},
		Quality: VoiceQualityAnalysis{
			Jitter:  JitterMeasures{Local: 0.5},
			Shimmer: ShimmerMeasures{Local: 2.0, DB: 0.2},
			HNR:     HNRAnalysis{Mean: 22.0},
		},
	}

	if got := b.ClinicalSummary().RecommendedAction; got != ActionConsultSpecialist {
		t.Errorf("RecommendedAction = %v, want %v", got, ActionConsultSpecialist)
	}
}

func TestStabilityScore(t *testing.T) {
	b := VocalBiomarkers{
		F0: F0Analysis{Mean: 220.5, Std: 15.2, Confidence: 85}, // good -> 80
		Quality: VoiceQualityAnalysis{
			Jitter:  JitterMeasures{Local: 0.8},                // excellent -> 100
			Shimmer: ShimmerMeasures{Local: 3.2, DB: 0.28},     // excellent -> 100
			HNR:     HNRAnalysis{Mean: 19.5},                   // good -> 80
		},
	}

	want := 0.4*80 + 0.2*100 + 0.2*100 + 0.2*80
	if got := b.StabilityScore(); math.Abs(got-want) > 1e-9 {
		t.Errorf("StabilityScore() = %v, want %v", got, want)
	}

	// The score stays inside the 0-100 scale at the extremes.
	worst := VocalBiomarkers{
		F0: F0Analysis{Confidence: 0},
		Quality: VoiceQualityAnalysis{
			Jitter:  JitterMeasures{Local: 100},
			Shimmer: ShimmerMeasures{Local: 100},
			HNR:     HNRAnalysis{Mean: -100},
		},
	}
	if got := worst.StabilityScore(); got < 0 || got > 100 {
		t.Errorf("worst-case StabilityScore() = %v, want within [0,100]", got)
	}
}
