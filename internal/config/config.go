// Package config loads the client configuration from a TOML file under the
// user config directory, with built-in defaults for every field.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const appDir = "predict-tui"

// Config is the complete client configuration.
type Config struct {
	// BackendURL is the base URL of the Vx Predict backend.
	BackendURL string `toml:"backend_url"`
	// ProviderHint is forwarded verbatim with every posted message.
	ProviderHint string `toml:"provider_hint"`
	// DataDir holds the credential slot, the session cache and logs.
	DataDir string `toml:"data_dir"`

	Logging LoggingConfig `toml:"logging"`
}

// LoggingConfig controls the file-backed logger.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		BackendURL:   "http://localhost:8000",
		ProviderHint: "openai",
		DataDir:      dataDir,
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "predict-tui.log"),
		},
	}
}

// DefaultPath returns the expected location of the config file.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, appDir)
}

// Load reads the config at path, layering it over the defaults. A missing
// file yields the defaults; the environment variable VX_BACKEND_URL, when
// set, overrides the backend URL from either source.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat config file: %w", err)
	}

	if env := os.Getenv("VX_BACKEND_URL"); env != "" {
		cfg.BackendURL = env
	}

	return cfg, nil
}
