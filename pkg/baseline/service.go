package baseline

import (
	"time"

	"github.com/sagehealth/go-sage/pkg/biomarker"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Service ties the baseline lifecycle to persistence. Establishing or
// replacing goes through the pure lifecycle functions first; only baselines
// that pass clinical validation are persisted, while soft-rejected ones are
// returned to the caller for inspection without superseding the stored one.
type Service struct {
	store Store
}

// NewService creates a baseline service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Current returns the user's active baseline.
func (s *Service) Current(userID string) (*VocalBaseline, error) {
	return s.store.Get(userID)
}

// Establish creates and, if valid, persists a user's baseline.
func (s *Service) Establish(userID string, b biomarker.VocalBiomarkers, d biomarker.Demographic, rc RecordingContext) (*VocalBaseline, error) {
	if userID == "" {
		return nil, sageerr.NotAuthenticated("baseline establish without user id")
	}

	vb := Establish(b, d, userID, rc)
	if !vb.UsableForThresholds() {
		return vb, nil
	}
	if err := s.store.Save(vb); err != nil {
		return nil, err
	}
	return vb, nil
}

// Replace supersedes the user's active baseline with new biomarkers. The
// prior baseline is archived, never deleted.
func (s *Service) Replace(userID string, b biomarker.VocalBiomarkers) (*VocalBaseline, error) {
	current, err := s.store.Get(userID)
	if err != nil {
		return nil, err
	}

	next := current.ReplaceWith(b, time.Now())
	if !next.UsableForThresholds() {
		return next, nil
	}
	if err := s.store.Save(next); err != nil {
		return nil, err
	}
	return next, nil
}
