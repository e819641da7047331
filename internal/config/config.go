package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all orca configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Defaults   DefaultsConfig   `toml:"defaults"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath    string `toml:"db_path,omitempty"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// DefaultsConfig holds the percentages applied to newly created budgets,
// items and compositions.
type DefaultsConfig struct {
	// ChargesOverride replaces the regime table rate when set.
	ChargesOverride *float64 `toml:"social_charges_pct,omitempty"`
	ChargesRegime    string   `toml:"charges_regime"`
	BDIPct           float64  `toml:"bdi_pct"`
	TaxRatePct       float64  `toml:"tax_rate_pct"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel:  "warn",
			LogFormat: "text",
		},
		Defaults: DefaultsConfig{
			ChargesRegime: RegimeStandard,
			BDIPct:        25,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "orca")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "orca")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DBPath returns the database path from env var or config, in that order.
// An empty result means the store default.
func DBPath(cfg Config) string {
	if p := os.Getenv("ORCA_DB_PATH"); p != "" {
		return p
	}
	return cfg.General.DBPath
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
