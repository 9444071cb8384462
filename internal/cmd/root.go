package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/safar/pharmsync/internal/config"
	"github.com/safar/pharmsync/internal/database"
	"github.com/safar/pharmsync/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pharmsync",
	Short: "PharmSync - B2B ordering console for suppliers and pharmacies",
	Long: `PharmSync keeps the supplier catalog, pharmacy orders, ratings and
notifications in one persisted document.

Use "serve" to run the HTTP API, or the maintenance commands to seed, reset
or migrate the configured storage backend.`,
	SilenceUsage:      true,
	PersistentPreRunE: parseGoFlags,
}

func init() {
	// glog registers -v, -logtostderr and friends on the standard flag set.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

// parseGoFlags marks the standard flag set parsed once cobra has copied the
// glog values into it. glog prefixes every line until then.
func parseGoFlags(*cobra.Command, []string) error {
	return flag.CommandLine.Parse(nil)
}

// Execute runs the root command
func Execute() {
	defer glog.Flush()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}

// openStore loads config and opens the configured backend. Callers own the
// returned backend.
func openStore(ctx context.Context) (*config.Config, database.Backend, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	backend, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s backend: %w", cfg.Storage.Backend, err)
	}

	return cfg, backend, store.New(backend, store.NewSeeder(cfg.Seed.RandomSeed)), nil
}
