package module

import "fmt"

// Registry maps module type names to their implementations. It is built
// once at daemon start and never mutated afterward, so lookups need no
// locking.
type Registry struct {
	modules map[string]Module
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds m to the registry. It panics on a duplicate type name,
// since that can only happen from a programming error in the daemon's own
// startup wiring (config-driven lookups only ever fail, never panic).
func (r *Registry) Register(m Module) {
	if _, exists := r.modules[m.Type()]; exists {
		panic(fmt.Sprintf("module: duplicate registration for type %q", m.Type()))
	}
	r.modules[m.Type()] = m
}

// Lookup resolves a dotted module type name. The bool result is false when
// the type is unknown.
func (r *Registry) Lookup(typeName string) (Module, bool) {
	m, ok := r.modules[typeName]
	return m, ok
}

// GlobalInit runs every registered module type's one-shot global-init hook.
// The first failure aborts daemon startup (§7: infrastructure failures are
// fatal).
func (r *Registry) GlobalInit() error {
	for name, m := range r.modules {
		if err := m.GlobalInit(); err != nil {
			return fmt.Errorf("module %q: global init: %w", name, err)
		}
	}
	return nil
}
