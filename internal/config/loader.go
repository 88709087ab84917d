package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the site configuration file does not
// exist.
var ErrConfigNotFound = errors.New("site configuration file not found")

// LoadSiteFile loads a site configuration from a YAML file, applies
// defaults and validates it. If the file does not exist it returns
// ErrConfigNotFound.
func LoadSiteFile(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var sc SiteConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse site configuration: %w", err)
	}

	sc.ApplyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return &sc, nil
}

// FindConfigFile searches for the site configuration file in the
// following order:
//  1. If configPath is specified, use it directly
//  2. Look for .a11ygate.yaml in the current directory
//  3. Look for .a11ygate.yaml in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
