// Package header implements the header rewrite handler (spec §4.7): base
// request/response add/remove lists, overlaid per-path-prefix, applied
// immediately to the request and deferred to an output listener for the
// response.
package header

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "header.json"

// ModifyHeaders is one direction's (request or response) update/remove
// rule set.
type ModifyHeaders struct {
	Update map[string]string `json:"update"`
	Remove []string          `json:"remove"`
}

// PathOverlay is the additional update/remove rule set applied when the
// request path starts with the owning prefix.
type PathOverlay struct {
	Request  ModifyHeaders `json:"request"`
	Response ModifyHeaders `json:"response"`
}

// Config is the header handler's per-handler configuration (spec §6).
type Config struct {
	Enabled          bool                   `json:"enabled"`
	Request          ModifyHeaders          `json:"request"`
	Response         ModifyHeaders          `json:"response"`
	PathPrefixHeader map[string]PathOverlay `json:"path_prefix_header"`
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
		return Config{}, fmt.Errorf("header: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
