package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/config"
	"github.com/partplan/partplan/internal/plan"
)

var appLogger *slog.Logger

// openSession connects to the configured Oracle database.
func openSession(ctx context.Context, cfg *config.Config) (*catalog.OracleSession, error) {
	connStr := catalog.ConnString(
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Service)

	sess, err := catalog.Open(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s:%d/%s: %w",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Service, err)
	}
	return sess, nil
}

// defaultPlanPath is where discover writes and the other commands read
// the plan document unless overridden by flag.
func defaultPlanPath(cfg *config.Config) string {
	return filepath.Join(cfg.Plan.OutputDirectory, "migration_plan.json")
}

// loadPlanDoc loads the plan document from the given path, falling back
// to the configured default.
func loadPlanDoc(cfg *config.Config, path string) (*plan.Document, string, error) {
	if path == "" {
		path = defaultPlanPath(cfg)
	}
	doc, err := plan.LoadJSON(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading plan: %w", err)
	}
	return doc, path, nil
}

// resolveEnvironment loads the environment profile named in config,
// merged over the global defaults.
func resolveEnvironment(cfg *config.Config) (plan.EnvironmentProfile, error) {
	return plan.ResolveEnvironment(
		config.ExpandHome(cfg.Plan.EnvironmentsFile), cfg.Plan.Environment)
}
