package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagehealth/go-sage/internal/config"
	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/insight"
	"github.com/sagehealth/go-sage/pkg/observation"
)

var (
	observeStoreURL string
	observeUser     string
)

var observeCmd = &cobra.Command{
	Use:   "observe [feature...]",
	Short: "Observe voice features for a user from the terminal",
	Long: `Subscribe to the insight feed and print every feature state
transition until interrupted. With no feature arguments all
registered features are observed.

Example:
  sage observe --store-url ws://localhost:9000/feed --user u123 f0 jitter`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		types, err := resolveFeatureTypes(registry, args)
		if err != nil {
			return err
		}

		coord := observation.NewCoordinator(insight.NewWSStore(observeStoreURL), registry)
		coord.OnFeatureState(func(t feature.Type, state feature.State) {
			switch state.Phase {
			case feature.PhaseSuccess:
				obs := state.Observation
				fmt.Fprintf(os.Stdout, "%-8s %8.2f  confidence %5.1f%%  at %s\n",
					t, obs.Value, obs.Confidence, obs.Timestamp.Format("15:04:05"))
			case feature.PhaseError:
				fmt.Fprintf(os.Stdout, "%-8s error: %s\n", t, state.Err.UserMessage)
			default:
				fmt.Fprintf(os.Stdout, "%-8s %s\n", t, state.Phase)
			}
		})

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		defer coord.StopAll()

		if serr := coord.StartMultiple(ctx, types, observeUser); serr != nil {
			if !coord.IsObserving() {
				return serr
			}
			fmt.Fprintf(os.Stderr, "some features failed to start: %s\n", serr.UserMessage)
		}

		<-ctx.Done()
		return nil
	},
}

func init() {
	observeCmd.Flags().StringVar(&observeStoreURL, "store-url", config.StoreURL(""), "websocket URL of the insight change feed (required)")
	observeCmd.Flags().StringVar(&observeUser, "user", "", "owner of the recordings to observe (required)")
	if observeStoreURL == "" {
		observeCmd.MarkFlagRequired("store-url")
	}
	observeCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(observeCmd)
}
