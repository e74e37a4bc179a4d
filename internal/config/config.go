package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.partplan/partplan.yaml"
)

// Config is the top-level configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Plan     PlanConfig     `yaml:"plan,omitempty"`
	Logging  LogConfig      `yaml:"logging,omitempty"`
}

// DatabaseConfig defines the Oracle connection used for discovery and
// verification.
type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Service      string        `yaml:"service"`
	Schema       string        `yaml:"schema,omitempty"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	QueryTimeout time.Duration `yaml:"query_timeout,omitempty"` // default 5m
}

// PlanConfig defines plan generation settings.
type PlanConfig struct {
	Environment      string `yaml:"environment,omitempty"`       // default "global"
	EnvironmentsFile string `yaml:"environments_file,omitempty"` // optional override YAML
	OutputDirectory  string `yaml:"output_directory,omitempty"`  // default ~/.partplan/plans/
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level         string `yaml:"level,omitempty"`          // debug, info, warn, error
	Directory     string `yaml:"directory,omitempty"`      // default ~/.partplan/logs/
	RetentionDays int    `yaml:"retention_days,omitempty"` // default 30
}

// Load reads and parses the config file from the given path. The context
// bounds secret resolution against external providers.
func Load(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveSecrets(ctx); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// SchemaName returns the discovery schema, defaulting to the username
// uppercased.
func (c *Config) SchemaName() string {
	if c.Database.Schema != "" {
		return strings.ToUpper(c.Database.Schema)
	}
	return strings.ToUpper(c.Database.Username)
}

func (c *Config) applyDefaults() {
	if c.Database.Port == 0 {
		c.Database.Port = 1521
	}
	if c.Database.QueryTimeout == 0 {
		c.Database.QueryTimeout = 5 * time.Minute
	}
	if c.Plan.Environment == "" {
		c.Plan.Environment = "global"
	}
	if c.Plan.OutputDirectory == "" {
		c.Plan.OutputDirectory = ExpandHome("~/.partplan/plans/")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.partplan/logs/")
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 30
	}
}

var secretPattern = regexp.MustCompile(`\$\{(ENV|VAULT|AWS_SM):([^}]+)\}`)

func (c *Config) resolveSecrets(ctx context.Context) error {
	var err error
	c.Database.Password, err = ResolveValue(ctx, c.Database.Password)
	if err != nil {
		return fmt.Errorf("database password: %w", err)
	}
	return nil
}

// ResolveValue resolves secret references in a string value.
func ResolveValue(ctx context.Context, val string) (string, error) {
	matches := secretPattern.FindStringSubmatch(val)
	if matches == nil {
		return val, nil
	}

	provider := matches[1]
	ref := matches[2]

	switch provider {
	case "ENV":
		v := os.Getenv(ref)
		if v == "" {
			return "", fmt.Errorf("environment variable %s not set", ref)
		}
		return v, nil
	case "VAULT":
		return resolveVault(ctx, ref)
	case "AWS_SM":
		return resolveAWSSecretsManager(ctx, ref)
	default:
		return "", fmt.Errorf("unknown secrets provider: %s", provider)
	}
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
