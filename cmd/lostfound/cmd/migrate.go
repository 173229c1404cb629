package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQLite schema migrations",
	Long:  "Applies the embedded schema migrations to DB_PATH. Only the sqlite backend has a schema; bolt creates its buckets on open.",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.StoreBackend != config.BackendSQLite {
		return fmt.Errorf("migrate applies to the sqlite backend, STORE_BACKEND is %q", cfg.StoreBackend)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	version, err := db.Migrate(database)
	if err != nil {
		return err
	}
	logger.Info("schema up to date", "path", cfg.DBPath, "version", version)
	fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
	return nil
}
