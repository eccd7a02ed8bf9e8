package baseline

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sagehealth/go-sage/pkg/biomarker"
)

func healthyBiomarkers() biomarker.VocalBiomarkers {
	return biomarker.VocalBiomarkers{
		F0: biomarker.F0Analysis{Mean: 220.5, Std: 15.2, Confidence: 85},
		Quality: biomarker.VoiceQualityAnalysis{
			Jitter:  biomarker.JitterMeasures{Local: 0.8, RAP: 0.6},
			Shimmer: biomarker.ShimmerMeasures{Local: 3.2, DB: 0.28},
			HNR:     biomarker.HNRAnalysis{Mean: 19.5, Std: 2.1},
		},
	}
}

func TestEstablishDerivesThresholds(t *testing.T) {
	b := healthyBiomarkers()
	vb := Establish(b, biomarker.DemographicAdultFemale, "user-1", RecordingContext{Environment: "quiet room"})

	if !vb.UsableForThresholds() {
		t.Fatal("healthy baseline should be valid")
	}
	if vb.ID == "" || vb.UserID != "user-1" {
		t.Errorf("identity = %q/%q", vb.ID, vb.UserID)
	}

	th := vb.Thresholds
	wantMin := 220.5 - 2*15.2 // 190.1, above the clinical floor of 165
	wantMax := 220.5 + 2*15.2 // 250.9, below the clinical ceiling of 400
	if math.Abs(th.F0Min-wantMin) > 1e-9 || math.Abs(th.F0Max-wantMax) > 1e-9 {
		t.Errorf("F0 band = [%v, %v], want [%v, %v]", th.F0Min, th.F0Max, wantMin, wantMax)
	}
	if math.Abs(th.JitterThreshold-0.8*1.5) > 1e-9 {
		t.Errorf("JitterThreshold = %v, want %v", th.JitterThreshold, 0.8*1.5)
	}
	if math.Abs(th.ShimmerThreshold-3.2*1.5) > 1e-9 {
		t.Errorf("ShimmerThreshold = %v, want %v", th.ShimmerThreshold, 3.2*1.5)
	}
	if math.Abs(th.HNRThreshold-19.5*0.8) > 1e-9 {
		t.Errorf("HNRThreshold = %v, want %v", th.HNRThreshold, 19.5*0.8)
	}
}

func TestEstablishClampsF0BandToClinicalRange(t *testing.T) {
	b := healthyBiomarkers()
	b.F0 = biomarker.F0Analysis{Mean: 180, Std: 40, Confidence: 90} // 180±80 exceeds both bounds

	vb := Establish(b, biomarker.DemographicAdultFemale, "user-1", RecordingContext{})
	if vb.Thresholds.F0Min != 165 {
		t.Errorf("F0Min = %v, want clamped to 165", vb.Thresholds.F0Min)
	}
	if vb.Thresholds.F0Max != 260 {
		t.Errorf("F0Max = %v, want 260", vb.Thresholds.F0Max)
	}
}

func TestEstablishSoftRejectsLowConfidence(t *testing.T) {
	b := healthyBiomarkers()
	b.F0.Confidence = 49.9

	vb := Establish(b, biomarker.DemographicAdultFemale, "user-1", RecordingContext{})
	if vb == nil {
		t.Fatal("rejected baseline must still be returned for inspection")
	}
	if vb.Validation.State != ValidationRejected {
		t.Fatalf("Validation.State = %v, want rejected", vb.Validation.State)
	}
	if vb.Validation.Reason == "" {
		t.Error("rejection must carry a reason")
	}
	if vb.UsableForThresholds() {
		t.Error("rejected baseline must not anchor thresholds")
	}
	if vb.Thresholds != (PersonalizedThresholds{}) {
		t.Error("rejected baseline must carry no thresholds")
	}
}

func TestReplaceWithAppendsHistory(t *testing.T) {
	current := Establish(healthyBiomarkers(), biomarker.DemographicAdultFemale, "user-1", RecordingContext{})

	const n = 4
	priors := []*VocalBaseline{current}
	for i := 0; i < n; i++ {
		b := healthyBiomarkers()
		b.F0.Mean += float64(i+1) * 5
		current = current.ReplaceWith(b, time.Now())
		priors = append(priors, current)
	}

	if len(current.History) != n {
		t.Fatalf("history length = %d, want %d", len(current.History), n)
	}
	if current.Archived != priors[n-1] {
		t.Error("archived baseline must be the immediately-prior one")
	}
	if current.Archived.Biomarkers.F0.Mean != priors[n-1].Biomarkers.F0.Mean {
		t.Error("archived biomarkers must match the prior baseline")
	}

	// Entries stay in replacement order, oldest first.
	for i, entry := range current.History {
		if entry.Archived != priors[i] {
			t.Errorf("history[%d] = %v, want baseline %d", i, entry.Archived.ID, i)
		}
	}

	// The prior baseline's own history was not mutated.
	if len(priors[n-1].History) != n-1 {
		t.Errorf("prior history length = %d, want %d", len(priors[n-1].History), n-1)
	}
}

func TestExpiry(t *testing.T) {
	vb := Establish(healthyBiomarkers(), biomarker.DemographicAdultFemale, "user-1", RecordingContext{})

	vb.EstablishedAt = time.Now().Add(-91 * 24 * time.Hour)
	if !vb.NeedsRefresh() {
		t.Error("91-day-old baseline must need refresh")
	}
	if days := vb.DaysUntilExpiryRecommendation(); days >= 0 {
		t.Errorf("DaysUntilExpiryRecommendation = %d, want negative", days)
	}

	vb.EstablishedAt = time.Now().Add(-30 * 24 * time.Hour)
	if vb.NeedsRefresh() {
		t.Error("30-day-old baseline must not need refresh")
	}
	if days := vb.DaysUntilExpiryRecommendation(); days != 60 {
		t.Errorf("DaysUntilExpiryRecommendation = %d, want 60", days)
	}
}

func TestDisplayAndSummaryArePure(t *testing.T) {
	vb := Establish(healthyBiomarkers(), biomarker.DemographicAdultFemale, "user-1", RecordingContext{})

	metrics := vb.DisplayMetrics()
	if len(metrics) == 0 {
		t.Fatal("no display metrics")
	}
	for _, m := range metrics {
		if m.Label == "" || m.Value == "" {
			t.Errorf("incomplete metric %+v", m)
		}
	}

	summary := vb.EducationalSummary()
	if !strings.Contains(summary, "220") {
		t.Errorf("summary should mention the baseline pitch: %q", summary)
	}

	b := healthyBiomarkers()
	b.F0.Confidence = 10
	rejected := Establish(b, biomarker.DemographicAdultFemale, "user-1", RecordingContext{})
	if !strings.Contains(rejected.EducationalSummary(), "quiet") {
		t.Error("rejected summary should guide the user to re-record")
	}
}
