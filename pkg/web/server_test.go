package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sagehealth/go-sage/pkg/baseline"
	"github.com/sagehealth/go-sage/pkg/biomarker"
	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/insight"
	"github.com/sagehealth/go-sage/pkg/observation"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := baseline.NewJSONStore(filepath.Join(t.TempDir(), "baselines.json"))
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	registry := feature.DefaultRegistry()

	srv, err := New(Config{
		Addr:        ":0",
		Registry:    registry,
		Coordinator: observation.NewCoordinator(insight.NewMockStore(), registry),
		Baselines:   baseline.NewService(store),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

func healthyPayload() establishRequest {
	return establishRequest{
		Biomarkers: biomarker.VocalBiomarkers{
			F0: biomarker.F0Analysis{Mean: 220.5, Std: 15.2, Confidence: 85},
			Quality: biomarker.VoiceQualityAnalysis{
				Jitter:  biomarker.JitterMeasures{Local: 0.8, RAP: 0.6},
				Shimmer: biomarker.ShimmerMeasures{Local: 3.2, DB: 0.28},
				HNR:     biomarker.HNRAnalysis{Mean: 19.5, Std: 2.1},
			},
		},
		Demographic: "adult_female",
		Context:     baseline.RecordingContext{Environment: "quiet room"},
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("status = %q, want ok", out["status"])
	}
}

func TestFeatureCatalog(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/features", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Features []featureInfo `json:"features"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Features) != len(feature.AllTypes()) {
		t.Fatalf("features = %d, want %d", len(out.Features), len(feature.AllTypes()))
	}
	for _, f := range out.Features {
		if f.MaxValue <= f.MinValue {
			t.Errorf("%s: range [%v, %v] is empty", f.Type, f.MinValue, f.MaxValue)
		}
	}
}

func TestStateSnapshotIdle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/state", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Observing bool `json:"observing"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Observing {
		t.Error("observing = true with no features started")
	}
}

func TestEstablishAndGetBaseline(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/baseline/u123", healthyPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("establish status = %d, want 201: %s", resp.StatusCode, body)
	}
	var created baselineView
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Validation != "valid" {
		t.Errorf("validation = %q, want valid", created.Validation)
	}
	if created.UserID != "u123" {
		t.Errorf("user = %q, want u123", created.UserID)
	}

	resp, body = doJSON(t, srv, http.MethodGet, "/api/baseline/u123", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	var fetched baselineView
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fetched.ID != created.ID {
		t.Errorf("fetched ID %q != created ID %q", fetched.ID, created.ID)
	}
}

func TestGetBaselineMissingUser(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/baseline/nobody", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var out errorBody
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Code != string(sageerr.KindUserProfileNotFound) {
		t.Errorf("code = %q, want %q", out.Code, sageerr.KindUserProfileNotFound)
	}
}

func TestEstablishRejectedNotPersisted(t *testing.T) {
	srv := newTestServer(t)

	payload := healthyPayload()
	payload.Biomarkers.F0.Confidence = 30

	resp, body := doJSON(t, srv, http.MethodPost, "/api/baseline/u123", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, body)
	}
	var out baselineView
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Validation != "rejected" {
		t.Errorf("validation = %q, want rejected", out.Validation)
	}
	if out.Reason == "" {
		t.Error("rejected baseline carries no reason")
	}

	// A rejected recording never replaces stored state.
	resp, _ = doJSON(t, srv, http.MethodGet, "/api/baseline/u123", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after rejection = %d, want 404", resp.StatusCode)
	}
}

func TestEstablishUnknownDemographic(t *testing.T) {
	srv := newTestServer(t)

	payload := healthyPayload()
	payload.Demographic = "child"

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/baseline/u123", payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestReplaceBaselineKeepsHistory(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/baseline/u123", healthyPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("establish status = %d, want 201", resp.StatusCode)
	}

	replacement := healthyPayload()
	replacement.Biomarkers.F0.Mean = 210.0

	resp, body := doJSON(t, srv, http.MethodPost, "/api/baseline/u123/replace", replacement)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d, want 200: %s", resp.StatusCode, body)
	}
	var out baselineView
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Replacements != 1 {
		t.Errorf("replacements = %d, want 1", out.Replacements)
	}
}

func TestReplaceWithoutBaseline(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/baseline/nobody/replace", healthyPayload())
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		kind sageerr.Kind
		want int
	}{
		{sageerr.KindUserNotAuthenticated, http.StatusUnauthorized},
		{sageerr.KindInvalidData, http.StatusBadRequest},
		{sageerr.KindValueOutOfRange, http.StatusBadRequest},
		{sageerr.KindClinicalValidationFailed, http.StatusBadRequest},
		{sageerr.KindUserProfileNotFound, http.StatusNotFound},
		{sageerr.KindDuplicateFeature, http.StatusConflict},
		{sageerr.KindNetworkUnavailable, http.StatusServiceUnavailable},
		{sageerr.KindRepositoryError, http.StatusServiceUnavailable},
		{sageerr.KindProcessingTimeout, http.StatusGatewayTimeout},
		{sageerr.KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := httpStatus(tt.kind); got != tt.want {
			t.Errorf("httpStatus(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
