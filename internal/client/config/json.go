package config

import (
	"encoding/json"
	"os"

	"github.com/avolkov/fileshare/internal/flagx"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling.
type jsonConfig struct {
	ServerURL string `json:"server_url"`
	TokenFile string `json:"token_file"`
}

// parseJSON overlays Config with values loaded from a JSON file whose path
// is given via the -c or -config flags. If no path is given, nothing
// happens. Read or unmarshal errors panic; the config layer runs before any
// state exists worth preserving.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc jsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
}
