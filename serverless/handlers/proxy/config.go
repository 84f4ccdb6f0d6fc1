// Package proxy implements the downstream function proxy handler (spec
// §4.7): it looks up a path+method pair in a static function table and
// invokes the matching downstream function, replacing the exchange's output
// with whatever it returns.
package proxy

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "proxy-lambda.json"

// Config is the proxy handler's per-handler configuration (spec §6). The
// AWS-specific fields (Region, EndpointOverride, APICallTimeout, LogType,
// MetricsInjection, MetricsName) are carried through unchanged from the
// source repository's config shape; nothing in this package reads them,
// and HTTPInvoker is configured only through its Client.
type Config struct {
	Enabled          bool              `json:"enabled"`
	Functions        map[string]string `json:"functions"`
	Region           string            `json:"region"`
	EndpointOverride string            `json:"endpoint_override"`
	APICallTimeout   uint32            `json:"api_call_timeout"`
	LogType          string            `json:"log_type" validate:"omitempty,oneof=None Tail"`
	MetricsInjection bool              `json:"metrics_injection"`
	MetricsName      string            `json:"metrics_name"`
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
		return Config{}, fmt.Errorf("proxy: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
