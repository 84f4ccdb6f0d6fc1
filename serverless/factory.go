package serverless

import "fmt"

// Factory builds a handler instance, loading whatever per-handler config it
// needs from configDir (spec §6, "Per-handler configuration", conventional
// "<handler-name>.json" file). This realizes the source repository's
// `idem_macro::ConfigurableHandler` derive (SPEC_FULL §8.3) as a plain Go
// constructor convention instead of a derive macro.
type Factory func(configDir string) (Handler, error)

// FactoryRegistry maps handler names from route configuration (spec §6,
// "handlers" array) to the Factory that constructs them.
type FactoryRegistry struct {
	byName map[string]Factory
}

// NewFactoryRegistry returns an empty FactoryRegistry.
func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{byName: make(map[string]Factory)}
}

// Register binds name to factory, overwriting any previous binding.
func (r *FactoryRegistry) Register(name string, factory Factory) {
	r.byName[name] = factory
}

// Build constructs one Handler per name, reading each one's configuration
// from configDir, and returns them collected into a Registry ready to hand
// to a Pipeline. A name with no registered factory is a fatal configuration
// error (spec §7, "missing handler for a named route entry").
func (r *FactoryRegistry) Build(configDir string, names []string) (*Registry, error) {
	reg := NewRegistry()
	for _, name := range names {
		factory, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("serverless: no factory registered for handler %q", name)
		}
		h, err := factory(configDir)
		if err != nil {
			return nil, fmt.Errorf("serverless: failed to construct handler %q: %w", name, err)
		}
		reg.Register(name, h)
	}
	return reg, nil
}
