// Package cors implements the CORS handler (spec §4.7): default-port
// trimming, preflight short-circuiting, origin allow-list enforcement, and
// a deferred Access-Control-Allow-Origin header on non-preflight responses.
package cors

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "cors.json"

// PathOverlay extends the base allow-lists for requests whose path starts
// with the owning prefix.
type PathOverlay struct {
	AllowedOrigins []string `json:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods"`
}

// Config is the CORS handler's per-handler configuration (spec §6).
type Config struct {
	Enabled              bool                   `json:"enabled"`
	AllowedOrigins       []string               `json:"allowed_origins" validate:"dive,required"`
	AllowedMethods       []string               `json:"allowed_methods" validate:"dive,oneof=GET POST PUT DELETE PATCH OPTIONS HEAD"`
	PathPrefixCorsConfig map[string]PathOverlay `json:"path_prefix_cors_config"`
}

// LoadConfig reads configFileName from configDir through the shared file
// cache.
func LoadConfig(configDir string) (Config, error) {
	raw, err := config.GetConfigFile(configDir + "/" + configFileName)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("cors: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
