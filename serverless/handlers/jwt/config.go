// Package jwt implements the bearer-token validation handler (spec §4.7):
// extraction, JWK resolution, RS256 signature verification, and exp/aud/iss
// claim checks, with optional scope verification against an OpenAPI
// document's security requirements.
package jwt

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "jwt.json"

// rawConfig is the on-disk JSON shape, kept separate from Config so the
// jwk_provider discriminated union can be decoded into a concrete Provider
// before the handler ever runs.
type rawConfig struct {
	Enabled             bool           `json:"enabled"`
	JwkProvider         providerConfig `json:"jwk_provider"`
	ScopeVerification   bool           `json:"scope_verification"`
	SpecificationName   string         `json:"specification_name" validate:"required_if=ScopeVerification true"`
	IgnoreJwtExpiration bool           `json:"ignore_jwt_expiration"`
	Audience            string         `json:"audience"`
	Issuer              string         `json:"issuer"`
}

// Config is the JWT handler's resolved, ready-to-run configuration.
type Config struct {
	Enabled             bool
	JwkProvider         Provider
	ScopeVerification   bool
	SpecificationName   string
	IgnoreJwtExpiration bool
	Audience            string
	Issuer              string
}

// DefaultConfig mirrors the source repository's JwtValidationHandlerConfig
// default.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		JwkProvider:       LocalProvider{FileName: "jwks.json", FilePath: "./config"},
		SpecificationName: "openapi.yaml",
		Audience:          "https://issuer.example.com",
	}
}

// LoadConfig reads configFileName from configDir through the shared file
// cache and resolves its jwk_provider union into a concrete Provider.
func LoadConfig(configDir string) (Config, error) {
	raw, err := config.GetConfigFile(configDir + "/" + configFileName)
	if err != nil {
		return Config{}, err
	}

	var rc rawConfig
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return Config{}, fmt.Errorf("jwt: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(rc); err != nil {
		return Config{}, err
	}

	provider, err := rc.JwkProvider.build()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Enabled:             rc.Enabled,
		JwkProvider:         provider,
		ScopeVerification:   rc.ScopeVerification,
		SpecificationName:   rc.SpecificationName,
		IgnoreJwtExpiration: rc.IgnoreJwtExpiration,
		Audience:            rc.Audience,
		Issuer:              rc.Issuer,
	}, nil
}
