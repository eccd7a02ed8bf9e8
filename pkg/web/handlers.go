package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sagehealth/go-sage/pkg/baseline"
	"github.com/sagehealth/go-sage/pkg/biomarker"
	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/observation"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// BaselineService is the baseline surface the server exposes.
type BaselineService interface {
	Current(userID string) (*baseline.VocalBaseline, error)
	Establish(userID string, b biomarker.VocalBiomarkers, d biomarker.Demographic, rc baseline.RecordingContext) (*baseline.VocalBaseline, error)
	Replace(userID string, b biomarker.VocalBiomarkers) (*baseline.VocalBaseline, error)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// featureInfo is the display form of one registry entry.
type featureInfo struct {
	Type        feature.Type `json:"type"`
	DisplayName string       `json:"display_name"`
	Unit        string       `json:"unit"`
	MinValue    float64      `json:"min_value"`
	MaxValue    float64      `json:"max_value"`
}

func (s *Server) handleFeatures(c *fiber.Ctx) error {
	all := s.cfg.Registry.All()
	out := make([]featureInfo, 0, len(all))
	for _, m := range all {
		out = append(out, featureInfo{
			Type:        m.Type,
			DisplayName: m.DisplayName,
			Unit:        m.Unit,
			MinValue:    m.MinValue,
			MaxValue:    m.MaxValue,
		})
	}
	return c.JSON(fiber.Map{"features": out})
}

// featureSnapshot is one feature's combined lifecycle and display state.
type featureSnapshot struct {
	Lifecycle observation.Status `json:"lifecycle"`
	State     feature.State      `json:"state"`
}

func (s *Server) handleState(c *fiber.Ctx) error {
	coord := s.cfg.Coordinator
	snapshot := make(map[feature.Type]featureSnapshot)
	for t, status := range coord.Snapshot() {
		snapshot[t] = featureSnapshot{
			Lifecycle: status,
			State:     coord.FeatureState(t),
		}
	}
	return c.JSON(fiber.Map{
		"observing": coord.IsObserving(),
		"features":  snapshot,
	})
}

func (s *Server) handleGetBaseline(c *fiber.Ctx) error {
	vb, err := s.cfg.Baselines.Current(c.Params("userID"))
	if err != nil {
		return respondError(c, sageerr.Map(err))
	}
	return c.JSON(baselineResponse(vb))
}

// establishRequest is the body for creating or replacing a baseline.
type establishRequest struct {
	Biomarkers  biomarker.VocalBiomarkers `json:"biomarkers"`
	Demographic string                    `json:"demographic"`
	Context     baseline.RecordingContext `json:"recording_context"`
}

func (s *Server) handleEstablishBaseline(c *fiber.Ctx) error {
	var req establishRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, sageerr.InvalidData("malformed baseline payload"))
	}
	demo, derr := parseDemographic(req.Demographic)
	if derr != nil {
		return respondError(c, derr)
	}

	vb, err := s.cfg.Baselines.Establish(c.Params("userID"), req.Biomarkers, demo, req.Context)
	if err != nil {
		return respondError(c, sageerr.Map(err))
	}
	return c.Status(fiber.StatusCreated).JSON(baselineResponse(vb))
}

func (s *Server) handleReplaceBaseline(c *fiber.Ctx) error {
	var req establishRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, sageerr.InvalidData("malformed baseline payload"))
	}

	vb, err := s.cfg.Baselines.Replace(c.Params("userID"), req.Biomarkers)
	if err != nil {
		return respondError(c, sageerr.Map(err))
	}
	return c.JSON(baselineResponse(vb))
}

// baselineView is the wire form of a baseline, trimming the archive chain
// down to what display needs.
type baselineView struct {
	ID            string                    `json:"id"`
	UserID        string                    `json:"user_id"`
	EstablishedAt string                    `json:"established_at"`
	Validation    string                    `json:"validation"`
	Reason        string                    `json:"reason,omitempty"`
	NeedsRefresh  bool                      `json:"needs_refresh"`
	DaysToExpiry  int                       `json:"days_to_expiry"`
	Replacements  int                       `json:"replacements"`
	Metrics       []baseline.DisplayMetric  `json:"metrics"`
	Summary       string                    `json:"summary"`
}

func baselineResponse(vb *baseline.VocalBaseline) baselineView {
	return baselineView{
		ID:            vb.ID,
		UserID:        vb.UserID,
		EstablishedAt: vb.EstablishedAt.Format("2006-01-02T15:04:05Z07:00"),
		Validation:    vb.Validation.State.String(),
		Reason:        vb.Validation.Reason,
		NeedsRefresh:  vb.NeedsRefresh(),
		DaysToExpiry:  vb.DaysUntilExpiryRecommendation(),
		Replacements:  len(vb.History),
		Metrics:       vb.DisplayMetrics(),
		Summary:       vb.EducationalSummary(),
	}
}

// parseDemographic maps the wire demographic onto the domain enum.
func parseDemographic(s string) (biomarker.Demographic, *sageerr.Error) {
	switch s {
	case "adult_female":
		return biomarker.DemographicAdultFemale, nil
	case "adult_male":
		return biomarker.DemographicAdultMale, nil
	case "", "unknown":
		return biomarker.DemographicUnknown, nil
	default:
		return biomarker.DemographicUnknown, sageerr.InvalidData("unknown demographic " + s)
	}
}
