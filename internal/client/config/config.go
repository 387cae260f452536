package config

import (
	"os"
	"path/filepath"
)

// Config holds runtime settings for the file-share CLI.
//
// Fields:
//   - ServerURL: base URL of the backend REST API.
//   - TokenFile: where the session token is persisted between runs.
type Config struct {
	ServerURL string
	TokenFile string
}

// LoadDefaults populates c with sensible defaults. The token lives under
// the user's home directory so a session survives restarts.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.TokenFile = filepath.Join(home, ".fileshare", "token")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
