package cmd

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/safar/pharmsync/internal/config"
	"github.com/safar/pharmsync/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Prepare the storage backend",
	Long:      "Runs SQL migrations for the postgres backend, or creates the table for the dynamodb backend.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	direction, err := database.ParseDirection(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := database.RunMigrations(ctx, db, cfg.Database.MigrationsDir, direction)
		if err != nil {
			return err
		}
		glog.Infof("Migrations %s completed: %d files", direction, n)
		return nil

	case config.BackendDynamoDB:
		if direction != database.Up {
			return fmt.Errorf("dynamodb backend only supports migrate up")
		}
		d, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return err
		}
		if err := d.EnsureTable(ctx); err != nil {
			return err
		}
		glog.Infof("DynamoDB table %s ready", cfg.DynamoDB.Table)
		return nil
	}

	glog.Infof("Backend %s needs no migrations", cfg.Storage.Backend)
	return nil
}
