package bot

import (
	"fmt"
	"slices"
	"sync"
)

// Registry keeps modules in registration order. Module names are unique.
type Registry struct {
	mu     sync.RWMutex
	order  []Module
	byName map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]struct{})}
}

// Register appends m. It panics on a duplicate name, which is a wiring bug
// caught at init time.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, dup := r.byName[name]; dup {
		panic(fmt.Sprintf("bot: module %q registered twice", name))
	}
	r.byName[name] = struct{}{}
	r.order = append(r.order, m)
}

// Modules returns the registered modules. The slice is a copy.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// modules register themselves here from init()
var globalRegistry = NewRegistry()

// Register adds m to the process-wide registry.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns the modules of the process-wide registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry empties the process-wide registry. Tests only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
