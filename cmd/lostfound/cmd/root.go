package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/logging"
)

var (
	envFiles   []string
	cfg        *config.Config
	logger     *slog.Logger
	logCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:          "lostfound",
	Short:        "Campus lost-and-found matching service",
	Long:         "Matches lost and found item reports, queues proposals for administrator review and notifies the people involved.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}
		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		l, cleanup, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger, logCleanup = l, cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(matchCmd)
}
