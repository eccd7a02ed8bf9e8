package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagehealth/go-sage/internal/config"
	"github.com/sagehealth/go-sage/internal/log"
	"github.com/sagehealth/go-sage/pkg/baseline"
	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/insight"
	"github.com/sagehealth/go-sage/pkg/observation"
	"github.com/sagehealth/go-sage/pkg/web"
)

var (
	serveAddr     string
	serveStoreURL string
	serveDataDir  string
	serveUser     string
	serveFeatures []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web surface against a live insight feed",
	Long: `Serve the REST and websocket surface.

Feature state changes are broadcast to every /ws/state client as they
happen. When --user is given, observation of the selected features
starts immediately; otherwise the server comes up idle and only the
baseline endpoints are live.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		store, err := baseline.NewJSONStore(serveDataDir)
		if err != nil {
			return err
		}

		feed := insight.NewWSStore(serveStoreURL)
		coord := observation.NewCoordinator(feed, registry)

		srv, err := web.New(web.Config{
			Addr:        serveAddr,
			Registry:    registry,
			Coordinator: coord,
			Baselines:   baseline.NewService(store),
		})
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if serveUser != "" {
			types, err := resolveFeatureTypes(registry, serveFeatures)
			if err != nil {
				return err
			}
			if serr := coord.StartMultiple(ctx, types, serveUser); serr != nil {
				log.Warn("not all features started", "error", serr)
			}
		}
		defer coord.StopAll()

		errc := make(chan error, 1)
		go func() { errc <- srv.Start() }()

		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return srv.Shutdown()
		case err := <-errc:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.Addr(":8080"), "listen address")
	serveCmd.Flags().StringVar(&serveStoreURL, "store-url", config.StoreURL(""), "websocket URL of the insight change feed (required)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", config.DataDir("data/baselines.json"), "path of the baseline store file")
	serveCmd.Flags().StringVar(&serveUser, "user", "", "start observing this user's recordings on boot")
	serveCmd.Flags().StringSliceVar(&serveFeatures, "feature", nil, "feature to observe (repeatable; default all)")
	if serveStoreURL == "" {
		serveCmd.MarkFlagRequired("store-url")
	}

	rootCmd.AddCommand(serveCmd)
}

// resolveFeatureTypes maps flag values onto registry types, defaulting to
// every registered feature when none are named.
func resolveFeatureTypes(registry *feature.Registry, names []string) ([]feature.Type, error) {
	if len(names) == 0 {
		return registry.Types(), nil
	}
	types := make([]feature.Type, 0, len(names))
	for _, name := range names {
		t := feature.Type(name)
		if _, ok := registry.Lookup(t); !ok {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		types = append(types, t)
	}
	return types, nil
}
