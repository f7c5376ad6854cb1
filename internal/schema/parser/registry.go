package parser

import (
	"sort"

	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/finder"
	"github.com/conduit-lang/apischema/internal/schema/validation"
)

type registryKey struct {
	resource string
	layer    schema.Layer
}

type registryEntry struct {
	tables   []*validation.Table
	files    []string
	attached bool
}

// Orphan is a validation file whose resource has no record in its layer
type Orphan struct {
	File     string       `json:"file" yaml:"file"`
	Resource string       `json:"resource" yaml:"resource"`
	Layer    schema.Layer `json:"layer" yaml:"layer"`
}

// ValidationRegistry holds loaded validation tables keyed by resource key
// and layer. All tables of one key and layer attach to the first resource
// record with that key and layer.
type ValidationRegistry struct {
	resolver *schema.LayerResolver
	entries  map[registryKey]*registryEntry
}

// NewValidationRegistry creates an empty registry
func NewValidationRegistry(resolver *schema.LayerResolver) *ValidationRegistry {
	if resolver == nil {
		resolver = schema.DefaultLayerResolver()
	}
	return &ValidationRegistry{
		resolver: resolver,
		entries:  make(map[registryKey]*registryEntry),
	}
}

// Add registers the table loaded from file
func (r *ValidationRegistry) Add(file string, table *validation.Table) {
	key := registryKey{resource: finder.ResourceKey(file), layer: r.resolver.Resolve(file)}
	entry, ok := r.entries[key]
	if !ok {
		entry = &registryEntry{}
		r.entries[key] = entry
	}
	entry.tables = append(entry.tables, table)
	entry.files = append(entry.files, file)
}

// Len returns the number of (resource, layer) entries
func (r *ValidationRegistry) Len() int {
	return len(r.entries)
}

// Attach hands the tables matching record's key and layer to the record.
// It returns false when nothing matched or the tables were already taken.
func (r *ValidationRegistry) Attach(record *schema.ResourceDescription) bool {
	entry, ok := r.entries[registryKey{resource: record.Key, layer: record.Layer}]
	if !ok || entry.attached {
		return false
	}
	entry.attached = true
	record.Validation = append(record.Validation, entry.tables...)
	record.ValidationFiles = append(record.ValidationFiles, entry.files...)
	return true
}

// Orphans lists validation files that were never attached, sorted by file
func (r *ValidationRegistry) Orphans() []Orphan {
	var out []Orphan
	for key, entry := range r.entries {
		if entry.attached {
			continue
		}
		for _, file := range entry.files {
			out = append(out, Orphan{File: file, Resource: key.resource, Layer: key.layer})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}
