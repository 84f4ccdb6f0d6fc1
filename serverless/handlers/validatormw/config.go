// Package validatormw implements the OpenAPI validation handler (spec
// §4.6, §4.7): it resolves the matched operation and validates the
// request's body, headers, and query parameters against the operation's
// declared schemas. Unlike the source repository, which compiles a fresh
// OpenApiValidator from disk on every request, the compiled *openapi.Spec
// is built once at factory-construction time and reused across requests
// together with its compiled-validator cache (spec §5).
package validatormw

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "validator.json"

// Config is the validator handler's per-handler configuration (spec §6).
type Config struct {
	Enable               bool   `json:"enable"`
	ValidateRequest      bool   `json:"validate_request"`
	ValidateResponse     bool   `json:"validate_response"`
	OpenAPISpecification string `json:"openapi_specification" validate:"required_if=Enable true"`
}

// DefaultConfig mirrors the source repository's ValidatorHandlerConfig
// default.
func DefaultConfig() Config {
	return Config{
		Enable:               true,
		ValidateRequest:      true,
		OpenAPISpecification: "openapi.json",
	}
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
		return Config{}, fmt.Errorf("validatormw: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
