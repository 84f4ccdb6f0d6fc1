// Package config provides the route/handler configuration model and the
// process-wide file cache and generic loader it is read through.
package config

import (
	"fmt"
	"os"
	"sync"
)

// fileCache is a process-wide, read-mostly cache from file path to file
// contents, mirroring the "config file cache" shared resource of spec §5.
type fileCache struct {
	mu    sync.RWMutex
	files map[string]string
}

var cache = &fileCache{files: make(map[string]string)}

// GetConfigFile returns the contents of filePath, reading and caching it on
// first access. Subsequent calls return the cached contents without
// touching disk.
func GetConfigFile(filePath string) (string, error) {
	cache.mu.RLock()
	contents, ok := cache.files[filePath]
	cache.mu.RUnlock()
	if ok {
		return contents, nil
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("config: failed to read file %q: %w", filePath, err)
	}
	contents = string(raw)

	cache.mu.Lock()
	cache.files[filePath] = contents
	cache.mu.Unlock()

	return contents, nil
}

// InitOrReplaceConfig reads filePath unconditionally and installs its
// contents into the cache, replacing any prior value — the hot-reload path.
func InitOrReplaceConfig(filePath string) error {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("config: failed to read file %q: %w", filePath, err)
	}

	cache.mu.Lock()
	cache.files[filePath] = string(raw)
	cache.mu.Unlock()

	return nil
}

// ClearCache empties the file cache. Mainly useful for tests.
func ClearCache() {
	cache.mu.Lock()
	cache.files = make(map[string]string)
	cache.mu.Unlock()
}
