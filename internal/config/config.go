package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all issuesheet configuration. Access tokens are deliberately
// absent: credentials live only in memory for the duration of a run.
type Config struct {
	// ClientID is the OAuth app client ID used for device authorization.
	ClientID string `toml:"client_id"`
	// TitleColumn and BodyColumns override the default sheet columns.
	TitleColumn string   `toml:"title_column"`
	BodyColumns []string `toml:"body_columns"`
	// AuthBaseURL and APIBaseURL point at a compatible provider's endpoints.
	// Empty means github.com.
	AuthBaseURL string `toml:"auth_base_url"`
	APIBaseURL  string `toml:"api_base_url"`
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// The ISSUESHEET_CLIENT_ID environment variable overrides client_id.
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if v := os.Getenv("ISSUESHEET_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	return cfg, nil
}

// DefaultConfigPath returns the default path for the issuesheet config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return home + "/.config/issuesheet/config.toml"
}

// Save writes cfg to the given TOML file path, creating parent directories
// as needed. Existing file contents are overwritten. Permissions on the
// written file are 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}
