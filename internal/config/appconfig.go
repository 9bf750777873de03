// Package config provides the porteurbars app configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appName       = "porteurbars"
	appConfigFile = "config.yaml"
	historyFile   = "history.db"
)

// AppConfig holds defaults for the apply command. Command line flags always
// take precedence over these values.
type AppConfig struct {
	// AcceptDefaults skips value prompts and uses every default
	AcceptDefaults bool `yaml:"accept_defaults"`
	// KeepExisting keeps every conflicting file without showing a diff
	KeepExisting bool `yaml:"keep_existing"`
	// History records every apply in the history database
	History bool `yaml:"history"`
	// HistoryPath overrides the location of the history database
	HistoryPath string `yaml:"history_path,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *AppConfig {
	return &AppConfig{
		History: true,
	}
}

// AppConfigPath returns the path where the app config is stored.
func AppConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, appConfigFile)
}

// DefaultHistoryPath returns the default location of the history database.
func DefaultHistoryPath() string {
	return filepath.Join(xdg.DataHome, appName, historyFile)
}

// LoadAppConfig loads the app configuration from path. A missing file is not
// an error and yields Default().
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file, intentional
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return nil, fmt.Errorf("reading app config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing app config %s: %w", path, err)
	}

	cfg.HistoryPath = ExpandPath(cfg.HistoryPath)

	return cfg, nil
}

// SaveAppConfig writes cfg to path, creating parent directories as needed.
func SaveAppConfig(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	content := fmt.Sprintf("# porteurbars app configuration\n# Command line flags override these values\n\n%s", string(data))

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ResolvedHistoryPath returns HistoryPath, or the default location when unset.
func (c *AppConfig) ResolvedHistoryPath() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}

	return DefaultHistoryPath()
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
