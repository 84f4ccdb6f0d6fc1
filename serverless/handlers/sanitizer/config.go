// Package sanitizer implements the payload sanitization stage (spec §8,
// supplemented feature 1): encoding disallowed characters out of the
// request body and selected header values before downstream handlers see
// them. spec.md §1 names "a character-encoding sanitizer library" as an
// out-of-scope external collaborator; this package is the thin handler
// that calls one, the same way the proxy handler calls a downstream SDK it
// doesn't own the internals of. The source repository's own handler is an
// unimplemented stub (`todo!("Implement sanitizer handler...")`), so the
// encoding behavior below is not ported from it — only the config shape
// is.
package sanitizer

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "sanitizer.json"

// SectionConfig selects, by name, which attributes a sanitizer pass applies
// to. The handler consults it for header names only (HeaderOptions);
// BodyOptions is decoded but not read, and the body is sanitized whole
// whenever BodyEnabled is set.
type SectionConfig struct {
	AttributesToEncode []string `json:"attributes_to_encode"`
	AttributesToIgnore []string `json:"attributes_to_ignore"`
}

// Config is the sanitizer handler's per-handler configuration (spec §6).
// BodyEncoder mirrors the source repository's SanitizerEncoder enum, which
// only ever declared one variant.
type Config struct {
	Enabled       bool          `json:"enabled"`
	BodyEnabled   bool          `json:"body_enabled"`
	BodyEncoder   string        `json:"body_encoder" validate:"omitempty,oneof=JavaScriptSource"`
	BodyOptions   SectionConfig `json:"body_options"`
	HeaderOptions SectionConfig `json:"header_options"`
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
		return Config{}, fmt.Errorf("sanitizer: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
