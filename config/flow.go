package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ExecutionFlowConfig is the route configuration document described by
// spec §6: the declared handler names available for wiring, named chains
// that expand in place inside a path's exec list, and the per-path/method
// execution plans themselves.
type ExecutionFlowConfig struct {
	Handlers []string            `json:"handlers"`
	Chains   map[string][]string `json:"chains"`
	Paths    Paths               `json:"paths"`
}

// PrefixConfig is one path template's method and ordered exec list. Chain
// names inside Exec are expanded in place; the last entry after expansion
// is the terminator, every entry before it is a request handler.
type PrefixConfig struct {
	Method string   `json:"method"`
	Exec   []string `json:"exec"`
}

// PathEntry is one (template, config) pair, in the order it appeared in
// the source document.
type PathEntry struct {
	Template string
	Config   PrefixConfig
}

// Paths preserves JSON object key order, since the router's declaration-
// order tie-break (spec §4.4) depends on it and Go's map iteration order
// is not the source order.
type Paths struct {
	entries []PathEntry
	byKey   map[string]int
}

// Entries returns the path entries in declaration order.
func (p Paths) Entries() []PathEntry {
	return p.entries
}

// Get returns the config registered under template, if any.
func (p Paths) Get(template string) (PrefixConfig, bool) {
	idx, ok := p.byKey[template]
	if !ok {
		return PrefixConfig{}, false
	}
	return p.entries[idx].Config, true
}

// Len returns the number of path entries.
func (p Paths) Len() int {
	return len(p.entries)
}

// UnmarshalJSON decodes a JSON object into Paths while recording the
// original key order.
func (p *Paths) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("config: expected JSON object for paths")
	}

	p.entries = nil
	p.byKey = make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("config: expected string key in paths")
		}

		var value PrefixConfig
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("config: paths[%q]: %w", key, err)
		}

		if idx, exists := p.byKey[key]; exists {
			p.entries[idx].Config = value
			continue
		}
		p.byKey[key] = len(p.entries)
		p.entries = append(p.entries, PathEntry{Template: key, Config: value})
	}

	return nil
}

// LoadExecutionFlowConfig reads and parses filePath through the shared file
// cache.
func LoadExecutionFlowConfig(filePath string) (*ExecutionFlowConfig, error) {
	raw, err := GetConfigFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseExecutionFlowConfig(raw)
}

// ParseExecutionFlowConfig parses an already-loaded configuration document.
func ParseExecutionFlowConfig(raw string) (*ExecutionFlowConfig, error) {
	var cfg ExecutionFlowConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("config: malformed execution flow config: %w", err)
	}
	return &cfg, nil
}

// ExpandExec replaces every chain name in exec with that chain's handler
// names, in place, recursively. A chain referencing itself (directly or
// transitively) is an error rather than an infinite expansion.
func (c *ExecutionFlowConfig) ExpandExec(exec []string) ([]string, error) {
	return c.expand(exec, map[string]bool{})
}

func (c *ExecutionFlowConfig) expand(exec []string, active map[string]bool) ([]string, error) {
	out := make([]string, 0, len(exec))
	for _, name := range exec {
		chain, isChain := c.Chains[name]
		if !isChain {
			out = append(out, name)
			continue
		}
		if active[name] {
			return nil, fmt.Errorf("config: chain %q expands into itself", name)
		}
		active[name] = true
		expanded, err := c.expand(chain, active)
		if err != nil {
			return nil, err
		}
		delete(active, name)
		out = append(out, expanded...)
	}
	return out, nil
}
