package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/idemio/idem-serverless/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigFileCachesContents(t *testing.T) {
	config.ClearCache()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.file")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	first, err := config.GetConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", first)

	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))
	second, err := config.GetConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", second, "a cached read must not see the file change")

	config.ClearCache()
	third, err := config.GetConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "changed", third)
}

func TestInitOrReplaceConfigAlwaysRereads(t *testing.T) {
	config.ClearCache()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.file")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	_, err := config.GetConfigFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.NoError(t, config.InitOrReplaceConfig(path))

	got, err := config.GetConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestParseLoadMethod(t *testing.T) {
	m, err := config.ParseLoadMethod("LocalFile")
	require.NoError(t, err)
	assert.Equal(t, config.LocalFile, m)

	_, err = config.ParseLoadMethod("bogus")
	assert.Error(t, err)
}

func TestLoaderDispatch(t *testing.T) {
	l := config.Loader[string]{
		LoadLocalFile: func() (string, error) { return "from-file", nil },
		NewDefault:    func() string { return "default-value" },
	}

	got, err := l.Load(config.LocalFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	got, err = l.Load(config.Default)
	require.NoError(t, err)
	assert.Equal(t, "default-value", got)

	_, err = l.Load(config.Remote)
	assert.Error(t, err)
}

func TestParseExecutionFlowConfig(t *testing.T) {
	raw := `{
		"handlers": ["ProxyHandler", "TraceabilityHandler", "HeaderHandler", "JwtValidationHandler", "MyCustomHandler", "HealthCheckHandler"],
		"chains": {
			"default": ["TraceabilityHandler", "JwtValidationHandler", "HeaderHandler"]
		},
		"paths": {
			"/some/resource/path": {"method": "GET", "exec": ["default", "MyCustomHandler", "ProxyHandler"]},
			"/health": {"method": "GET", "exec": ["default", "HealthCheckHandler"]}
		}
	}`

	cfg, err := config.ParseExecutionFlowConfig(raw)
	require.NoError(t, err)
	assert.Len(t, cfg.Handlers, 6)
	assert.Len(t, cfg.Chains, 1)
	assert.Equal(t, 2, cfg.Paths.Len())

	resourcePath, ok := cfg.Paths.Get("/some/resource/path")
	require.True(t, ok)
	expanded, err := cfg.ExpandExec(resourcePath.Exec)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"TraceabilityHandler", "JwtValidationHandler", "HeaderHandler",
		"MyCustomHandler", "ProxyHandler",
	}, expanded)
}

func TestPathsPreserveDeclarationOrder(t *testing.T) {
	raw := `{
		"handlers": [], "chains": {},
		"paths": {
			"/third": {"method": "GET", "exec": ["X"]},
			"/first": {"method": "GET", "exec": ["X"]},
			"/second": {"method": "GET", "exec": ["X"]}
		}
	}`
	cfg, err := config.ParseExecutionFlowConfig(raw)
	require.NoError(t, err)

	templates := make([]string, 0, cfg.Paths.Len())
	for _, e := range cfg.Paths.Entries() {
		templates = append(templates, e.Template)
	}
	assert.Equal(t, []string{"/third", "/first", "/second"}, templates)
}

func TestExpandExecRejectsSelfReferencingChain(t *testing.T) {
	cfg := &config.ExecutionFlowConfig{
		Chains: map[string][]string{
			"loopy": {"loopy"},
		},
	}
	_, err := cfg.ExpandExec([]string{"loopy"})
	assert.Error(t, err)
}
