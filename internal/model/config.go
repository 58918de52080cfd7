package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Upgrade strategies understood by the database helper.
const (
	UpgradeStrategyReset  = "reset"
	UpgradeStrategyScript = "script"
)

// DatabaseConfig describes where the todo database lives and which schema
// version it is expected to carry.
type DatabaseConfig struct {
	// Dir is the directory holding the database file.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Name is the database file name inside Dir.
	Name string `mapstructure:"name" yaml:"name"`

	// Version is the schema version the file is upgraded or downgraded to on open.
	Version int `mapstructure:"version" yaml:"version"`

	// UpgradeStrategy is "reset" (clear and recreate) or "script"
	// (run from_N_to_M.sql files from MigrationsDir).
	UpgradeStrategy string `mapstructure:"upgrade_strategy" yaml:"upgrade_strategy"`

	// MigrationsDir holds the SQL scripts used by the "script" strategy.
	MigrationsDir string `mapstructure:"migrations_dir" yaml:"migrations_dir"`
}

// Path returns the full database file path. The special name ":memory:"
// is returned unchanged.
func (c DatabaseConfig) Path() string {
	if c.Name == ":memory:" || c.Dir == "" {
		return c.Name
	}
	return filepath.Join(c.Dir, c.Name)
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultDatabaseName and DefaultDatabaseVersion mirror the constants the
// store package opens with when no configuration overrides them.
const (
	DefaultDatabaseName    = "TodoDatabase.db"
	DefaultDatabaseVersion = 1
)

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todolist/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todolist", "config.yaml")
}

// DefaultDataDir returns ~/.local/share/todolist, or the working directory
// when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "todolist")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Dir:             DefaultDataDir(),
			Name:            DefaultDatabaseName,
			Version:         DefaultDatabaseVersion,
			UpgradeStrategy: UpgradeStrategyReset,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := DefaultAppConfig()
	v.SetDefault("database.dir", def.Database.Dir)
	v.SetDefault("database.name", def.Database.Name)
	v.SetDefault("database.version", def.Database.Version)
	v.SetDefault("database.upgrade_strategy", def.Database.UpgradeStrategy)
	v.SetDefault("database.migrations_dir", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	// TODOLIST_DATABASE_DIR overrides database.dir, and so on.
	v.SetEnvPrefix("TODOLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing file still honors defaults and TODOLIST_* overrides.
	if err := v.ReadInConfig(); err != nil {
		_, pathErr := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !pathErr && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values LoadConfig cannot default.
func (c *AppConfig) Validate() error {
	if c.Database.Name == "" {
		return fmt.Errorf("database.name must not be empty")
	}
	if c.Database.Version < 1 {
		return fmt.Errorf("database.version must be >= 1, got %d", c.Database.Version)
	}
	switch c.Database.UpgradeStrategy {
	case UpgradeStrategyReset:
	case UpgradeStrategyScript:
		if c.Database.MigrationsDir == "" {
			return fmt.Errorf("database.migrations_dir is required for the script strategy")
		}
	default:
		return fmt.Errorf("unknown database.upgrade_strategy %q", c.Database.UpgradeStrategy)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
