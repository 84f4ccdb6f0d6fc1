// Package trace implements the traceability handler (spec §4.7): it finds
// or generates a correlation id and a traceability id, writes the
// correlation id back into the request, and optionally arranges for both to
// appear on the response once it is finalized.
package trace

import (
	"encoding/json"
	"fmt"

	"github.com/idemio/idem-serverless/config"
)

const configFileName = "trace.json"

// Config is the traceability handler's per-handler configuration (spec §6).
type Config struct {
	Enabled                      bool   `json:"enabled"`
	AutogenCorrelationID         bool   `json:"autogen_correlation_id"`
	CorrelationHeaderName        string `json:"correlation_header_name" validate:"required"`
	TraceabilityHeaderName       string `json:"traceability_header_name" validate:"required"`
	CorrelationLoggingFieldName  string `json:"correlation_logging_field_name"`
	TraceabilityLoggingFieldName string `json:"traceability_logging_field_name"`
	AddTraceToResponse           bool   `json:"add_trace_to_response"`
}

// DefaultConfig returns the handler disabled, with correlation id
// generation and response copying off, and the conventional
// x-correlation-id / x-traceability-id header names.
func DefaultConfig() Config {
	return Config{
		Enabled:                false,
		AutogenCorrelationID:   false,
		CorrelationHeaderName:  "x-correlation-id",
		TraceabilityHeaderName: "x-traceability-id",
		AddTraceToResponse:     false,
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
		return Config{}, fmt.Errorf("trace: malformed %s: %w", configFileName, err)
	}
	if err := config.ValidateStruct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
