package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/config"
	"github.com/partplan/partplan/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "partplan",
	Short: "Partplan: Oracle interval/hash repartitioning planner",
	Long: `Partplan analyzes an Oracle schema, recommends interval plus hash
partitioning for its tables, and validates the resulting migration plan
before and after execution.

Typical workflow:
  partplan discover    Analyze the schema and generate a migration plan
  partplan select      Review the plan and toggle tables interactively
  partplan check       Validate the plan document
  partplan scripts     Render the migration DDL scripts
  partplan premigrate  Run pre-migration checks against the database
  partplan postmigrate Verify structure after the migration
  partplan compare     Compare data between old and new tables
  partplan report      Produce the full verification report`,
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// A .env next to the binary can supply ${ENV:...} secret references.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.partplan/partplan.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig reads the config file and initializes logging.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.Setup(level, cfg.Logging.Directory, cfg.Logging.RetentionDays)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	appLogger = logger

	return cfg, nil
}
