package generator

import (
	"sort"
	"sync"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema"
)

// Renderer turns an artifact model into file content
type Renderer interface {
	// Name is the registry key ("php", "json")
	Name() string
	// Extension is the output file extension including the dot
	Extension() string
	// Reserved returns the symbol names the rendered artifact imports on
	// its own, which constraint aliases must not shadow
	Reserved(merged *schema.MergedResourceDescription) map[string]bool
	// Render produces the artifact content
	Render(m *Model) ([]byte, error)
}

// Registry holds the available renderers by name
type Registry struct {
	renderers map[string]Renderer
	mutex     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// DefaultRegistry returns a registry with the built-in renderers
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPHPRenderer())
	r.Register(NewManifestRenderer())
	return r
}

// Register adds or replaces a renderer
func (r *Registry) Register(renderer Renderer) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.renderers[renderer.Name()] = renderer
}

// Get returns the named renderer
func (r *Registry) Get(name string) (Renderer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, apierrors.NewUnknownRenderer(name, r.namesLocked())
	}
	return renderer, nil
}

// Names returns the registered renderer names, sorted
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
