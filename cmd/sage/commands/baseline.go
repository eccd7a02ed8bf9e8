package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagehealth/go-sage/internal/config"
	"github.com/sagehealth/go-sage/pkg/baseline"
	"github.com/sagehealth/go-sage/pkg/biomarker"
)

var (
	baselineDataDir     string
	baselineUser        string
	baselineFile        string
	baselineDemographic string
	baselineEnvironment string
	baselineDevice      string
	baselineNotes       string
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect, establish, or replace a vocal baseline",
	Long: `Manage per-user vocal baselines.

A baseline is established from one completed voice analysis and
anchors personalized thresholds for 90 days. Replacing a baseline
archives the prior one; the full replacement history is preserved.`,
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a user's current baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := baselineService()
		if err != nil {
			return err
		}
		vb, err := svc.Current(baselineUser)
		if err != nil {
			return err
		}
		printBaseline(vb)
		return nil
	},
}

var baselineEstablishCmd = &cobra.Command{
	Use:   "establish",
	Short: "Establish a baseline from an analysis result file",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := baselineService()
		if err != nil {
			return err
		}
		b, err := readBiomarkers(baselineFile)
		if err != nil {
			return err
		}
		demo, err := parseDemographicFlag(baselineDemographic)
		if err != nil {
			return err
		}

		vb, err := svc.Establish(baselineUser, b, demo, baseline.RecordingContext{
			Environment: baselineEnvironment,
			Device:      baselineDevice,
			Notes:       baselineNotes,
		})
		if err != nil {
			return err
		}
		printBaseline(vb)
		return nil
	},
}

var baselineReplaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace a user's baseline with a fresh analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := baselineService()
		if err != nil {
			return err
		}
		b, err := readBiomarkers(baselineFile)
		if err != nil {
			return err
		}
		vb, err := svc.Replace(baselineUser, b)
		if err != nil {
			return err
		}
		printBaseline(vb)
		return nil
	},
}

func init() {
	baselineCmd.PersistentFlags().StringVar(&baselineDataDir, "data-dir", config.DataDir("data/baselines.json"), "path of the baseline store file")
	baselineCmd.PersistentFlags().StringVar(&baselineUser, "user", "", "user whose baseline to manage (required)")
	baselineCmd.MarkPersistentFlagRequired("user")

	for _, c := range []*cobra.Command{baselineEstablishCmd, baselineReplaceCmd} {
		c.Flags().StringVarP(&baselineFile, "file", "f", "", "analysis result JSON (required)")
		c.MarkFlagRequired("file")
	}
	baselineEstablishCmd.Flags().StringVar(&baselineDemographic, "demographic", "unknown", "clinical reference range: adult_female, adult_male, unknown")
	baselineEstablishCmd.Flags().StringVar(&baselineEnvironment, "environment", "", "recording environment note")
	baselineEstablishCmd.Flags().StringVar(&baselineDevice, "device", "", "recording device note")
	baselineEstablishCmd.Flags().StringVar(&baselineNotes, "notes", "", "free-form recording notes")

	baselineCmd.AddCommand(baselineShowCmd, baselineEstablishCmd, baselineReplaceCmd)
	rootCmd.AddCommand(baselineCmd)
}

func baselineService() (*baseline.Service, error) {
	store, err := baseline.NewJSONStore(baselineDataDir)
	if err != nil {
		return nil, err
	}
	return baseline.NewService(store), nil
}

// readBiomarkers loads a completed analysis result from disk.
func readBiomarkers(path string) (biomarker.VocalBiomarkers, error) {
	var b biomarker.VocalBiomarkers
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

func parseDemographicFlag(s string) (biomarker.Demographic, error) {
	switch s {
	case "adult_female":
		return biomarker.DemographicAdultFemale, nil
	case "adult_male":
		return biomarker.DemographicAdultMale, nil
	case "", "unknown":
		return biomarker.DemographicUnknown, nil
	default:
		return biomarker.DemographicUnknown, fmt.Errorf("unknown demographic %q", s)
	}
}

// printBaseline writes the human-readable baseline report.
func printBaseline(vb *baseline.VocalBaseline) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "User\t%s\n", vb.UserID)
	fmt.Fprintf(w, "Established\t%s\n", vb.EstablishedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "Validation\t%s\n", vb.Validation.State)
	if vb.Validation.Reason != "" {
		fmt.Fprintf(w, "Reason\t%s\n", vb.Validation.Reason)
	}
	for _, m := range vb.DisplayMetrics() {
		fmt.Fprintf(w, "%s\t%s %s\n", m.Label, m.Value, m.Unit)
	}
	if vb.UsableForThresholds() {
		fmt.Fprintf(w, "Days until refresh\t%d\n", vb.DaysUntilExpiryRecommendation())
	}
	if n := len(vb.History); n > 0 {
		fmt.Fprintf(w, "Replacements\t%d\n", n)
	}
	w.Flush()

	fmt.Println()
	fmt.Println(vb.EducationalSummary())
}
