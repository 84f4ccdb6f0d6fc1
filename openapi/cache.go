package openapi

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// validatorCache is the compiled-validator cache of spec §4.6/§5: keyed by
// JSON-pointer string, insert-if-absent, never evicted. Each Spec built by
// FromJSON owns one, so it lives as long as that Spec. Safe for concurrent
// readers and writers.
type validatorCache struct {
	mu    sync.RWMutex
	byPtr map[string]*jsonschema.Schema
}

func newValidatorCache() *validatorCache {
	return &validatorCache{byPtr: make(map[string]*jsonschema.Schema)}
}

func (c *validatorCache) get(pointer string) (*jsonschema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byPtr[pointer]
	return s, ok
}

func (c *validatorCache) put(pointer string, schema *jsonschema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byPtr[pointer]; exists {
		return
	}
	c.byPtr[pointer] = schema
}
