package commands

import (
	"github.com/spf13/cobra"

	"github.com/sagehealth/go-sage/internal/log"
	"github.com/sagehealth/go-sage/pkg/feature"
)

var (
	// Global flags
	logLevel     string
	featuresPath string
)

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Voice biomarker observation and baseline tracking",
	Long: `sage - observe clinical voice features from an insight feed and
maintain per-user vocal baselines.

The insight feed is a websocket change feed of recording analysis
documents. sage subscribes per feature (f0, jitter, shimmer, energy),
validates each value against its clinical range, and tracks the
latest accepted observation per feature.

Baselines are stored locally as JSON and derive personalized
thresholds from a user's own voice rather than population norms.

Examples:
  # Serve the web surface on :8080
  sage serve --store-url ws://localhost:9000/feed --user u123

  # Watch features from the terminal
  sage observe --store-url ws://localhost:9000/feed --user u123 f0 jitter

  # Establish a baseline from an analysis result
  sage baseline establish --user u123 --demographic adult_female -f analysis.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() { log.Init(logLevel) })

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&featuresPath, "features", "", "path to a feature table YAML (defaults to built-in clinical ranges)")
}

// loadRegistry returns the feature registry, from the --features file when
// given and the built-in defaults otherwise.
func loadRegistry() (*feature.Registry, error) {
	if featuresPath == "" {
		return feature.DefaultRegistry(), nil
	}
	return feature.LoadRegistry(featuresPath)
}
