// Package health implements the health-check terminator (spec §4.7,
// tested by spec §8 scenario 5): a fixed 200/"OK" response, optionally
// gated on a downstream function's own health response.
package health

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "health.json"

// Config is the health handler's per-handler configuration (spec §6).
type Config struct {
	Enabled                         bool   `json:"enabled"`
	UseJSON                         bool   `json:"use_json"`
	Timeout                         uint32 `json:"timeout"`
	DownstreamEnabled               bool   `json:"downstream_enabled"`
	DownstreamFunction              string `json:"downstream_function" validate:"required_if=DownstreamEnabled true"`
	DownstreamFunctionHealthPayload string `json:"downstream_function_health_payload"`
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
		return Config{}, fmt.Errorf("health: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
