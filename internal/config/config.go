// Package config handles the configuration directory, file paths and the API base URL.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.json"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// DefaultAPIURL is used when no URL is configured.
	DefaultAPIURL = "http://localhost:8080/api"

	// APIURLEnv overrides the configured API URL.
	APIURLEnv = "TODO_API_URL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the REST base URL, without a trailing slash.
	APIURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileSettings is the on-disk shape of config.json.
type fileSettings struct {
	APIURL string `json:"api_url"`
}

// New creates a Config for configDir (or the default directory when empty).
// The API URL is resolved in order: apiURL argument, $TODO_API_URL,
// config.json, DefaultAPIURL.
func New(configDir, apiURL string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	if apiURL == "" {
		apiURL = os.Getenv(APIURLEnv)
	}
	if apiURL == "" {
		settings, err := cfg.load()
		if err != nil {
			return nil, err
		}
		apiURL = settings.APIURL
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	normalized, err := NormalizeURL(apiURL)
	if err != nil {
		return nil, err
	}
	cfg.APIURL = normalized
	return cfg, nil
}

// NormalizeURL validates an API base URL and strips trailing slashes.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid api url: %s", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.json.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

func (c *Config) load() (fileSettings, error) {
	var settings fileSettings
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return settings, nil
}
