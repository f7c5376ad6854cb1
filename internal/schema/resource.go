// Package schema defines the canonical in-memory records of the API resource
// pipeline: per-file resource descriptions, their properties and operations,
// and the merged description produced across layers.
package schema

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/conduit-lang/apischema/internal/schema/document"
	"github.com/conduit-lang/apischema/internal/schema/validation"
)

// Property types
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeMixed   = "mixed"
)

// PropertyTypes lists the fixed enumeration of declared property types
var PropertyTypes = []string{TypeString, TypeInteger, TypeBoolean, TypeArray, TypeObject, TypeMixed}

var propertyTypeAliases = map[string]string{
	"int":  TypeInteger,
	"bool": TypeBoolean,
	"str":  TypeString,
	"arr":  TypeArray,
}

// NormalizePropertyType lower-cases a declared type and resolves short aliases
func NormalizePropertyType(t string) string {
	normalized := strings.ToLower(strings.TrimSpace(t))
	if alias, ok := propertyTypeAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// IsPropertyType reports whether t belongs to the fixed enumeration
func IsPropertyType(t string) bool {
	for _, known := range PropertyTypes {
		if known == t {
			return true
		}
	}
	return false
}

// OperationKind is a CRUD-style operation kind
type OperationKind string

// Operation kinds
const (
	OperationGet           OperationKind = "Get"
	OperationGetCollection OperationKind = "GetCollection"
	OperationPost          OperationKind = "Post"
	OperationPut           OperationKind = "Put"
	OperationPatch         OperationKind = "Patch"
	OperationDelete        OperationKind = "Delete"
)

// OperationKinds lists the fixed enumeration of operation kinds
var OperationKinds = []OperationKind{
	OperationGet, OperationGetCollection, OperationPost, OperationPut, OperationPatch, OperationDelete,
}

// Valid reports whether k belongs to the fixed enumeration
func (k OperationKind) Valid() bool {
	for _, known := range OperationKinds {
		if known == k {
			return true
		}
	}
	return false
}

// ParseOperationKind resolves s case-insensitively against the enumeration.
// Unknown kinds are returned verbatim with ok false.
func ParseOperationKind(s string) (OperationKind, bool) {
	trimmed := strings.TrimSpace(s)
	for _, known := range OperationKinds {
		if strings.EqualFold(string(known), trimmed) {
			return known, true
		}
	}
	return OperationKind(trimmed), false
}

// OperationKindNames returns the enumeration as strings
func OperationKindNames() []string {
	out := make([]string, len(OperationKinds))
	for i, k := range OperationKinds {
		out[i] = string(k)
	}
	return out
}

// PropertyDescription describes one property. Every attribute is optional
// so that a layer overwrites exactly the attributes it declares; use the
// accessor methods to read effective values with defaults applied.
type PropertyDescription struct {
	Name           string
	Type           string
	Description    *string
	Writable       *bool
	Readable       *bool
	Identifier     *bool
	Required       *bool
	Default        any
	OpenAPIContext *document.Map
	// Invalid holds declared attributes whose values have the wrong shape,
	// keyed by attribute name, so validation can report them.
	Invalid    map[string]any
	SourceFile string
}

// EffectiveType returns the declared type or "string" when none was declared
func (p *PropertyDescription) EffectiveType() string {
	if p.Type == "" {
		return TypeString
	}
	return p.Type
}

// DescriptionText returns the description or ""
func (p *PropertyDescription) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// IsWritable returns the writable flag (default true)
func (p *PropertyDescription) IsWritable() bool { return boolOr(p.Writable, true) }

// IsReadable returns the readable flag (default true)
func (p *PropertyDescription) IsReadable() bool { return boolOr(p.Readable, true) }

// IsIdentifier returns the identifier flag (default false)
func (p *PropertyDescription) IsIdentifier() bool { return boolOr(p.Identifier, false) }

// IsRequired returns the required flag (default false)
func (p *PropertyDescription) IsRequired() bool { return boolOr(p.Required, false) }

// Clone returns a deep copy
func (p *PropertyDescription) Clone() *PropertyDescription {
	out := *p
	out.Description = clonePtr(p.Description)
	out.Writable = clonePtr(p.Writable)
	out.Readable = clonePtr(p.Readable)
	out.Identifier = clonePtr(p.Identifier)
	out.Required = clonePtr(p.Required)
	out.Default = document.Clone(p.Default)
	if p.OpenAPIContext != nil {
		out.OpenAPIContext = document.Clone(p.OpenAPIContext).(*document.Map)
	}
	out.Invalid = cloneInvalid(p.Invalid)
	return &out
}

// OperationDescription describes one operation
type OperationDescription struct {
	Kind OperationKind
	// ValidationGroups overrides the validation groups applied by the operation
	ValidationGroups []string
	// Security is an access-control expression, syntax-checked only
	Security   string
	Invalid    map[string]any
	SourceFile string
}

// Clone returns a deep copy
func (o *OperationDescription) Clone() *OperationDescription {
	out := *o
	if o.ValidationGroups != nil {
		out.ValidationGroups = append([]string(nil), o.ValidationGroups...)
	}
	out.Invalid = cloneInvalid(o.Invalid)
	return &out
}

// Properties is the ordered property map of a resource
type Properties = orderedmap.OrderedMap[string, *PropertyDescription]

// Operations is the ordered operation map of a resource, keyed by kind
type Operations = orderedmap.OrderedMap[OperationKind, *OperationDescription]

// NewProperties creates an empty property map
func NewProperties() *Properties {
	return orderedmap.New[string, *PropertyDescription]()
}

// NewOperations creates an empty operation map
func NewOperations() *Operations {
	return orderedmap.New[OperationKind, *OperationDescription]()
}

// ResourceDescription is the canonical record parsed from one resource
// schema file. Records are never mutated once parsed; merges build new ones.
type ResourceDescription struct {
	// Key is the resource identifier derived from the file name
	Key                    string
	Name                   string
	ShortName              string
	Description            string
	Properties             *Properties
	Operations             *Operations
	Provider               string
	Processor              string
	PaginationItemsPerPage *int
	OpenAPIContext         *document.Map
	// Invalid holds resource-level attributes with the wrong shape
	Invalid map[string]any

	SourceFile string
	Layer      Layer

	// Validation holds the constraint tables attached to this record
	Validation      []*validation.Table
	ValidationFiles []string
}

// NewResourceDescription creates an empty record with initialized maps
func NewResourceDescription(key string) *ResourceDescription {
	return &ResourceDescription{
		Key:        key,
		Properties: NewProperties(),
		Operations: NewOperations(),
	}
}

// DisplayName returns ShortName, falling back to Name
func (r *ResourceDescription) DisplayName() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.Name
}

// Identifier returns the most specific identifier of the record for messages
func (r *ResourceDescription) Identifier() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Key
}

// Property returns the named property
func (r *ResourceDescription) Property(name string) (*PropertyDescription, bool) {
	if r.Properties == nil {
		return nil, false
	}
	return r.Properties.Get(name)
}

// PropertyNames returns property names in declaration order
func (r *ResourceDescription) PropertyNames() []string {
	if r.Properties == nil {
		return nil
	}
	names := make([]string, 0, r.Properties.Len())
	for pair := r.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// PropertiesOrEmpty returns the property map, never nil
func (r *ResourceDescription) PropertiesOrEmpty() *Properties {
	if r.Properties == nil {
		return NewProperties()
	}
	return r.Properties
}

// OperationsOrEmpty returns the operation map, never nil
func (r *ResourceDescription) OperationsOrEmpty() *Operations {
	if r.Operations == nil {
		return NewOperations()
	}
	return r.Operations
}

// OperationList returns operations in declaration order
func (r *ResourceDescription) OperationList() []*OperationDescription {
	if r.Operations == nil {
		return nil
	}
	ops := make([]*OperationDescription, 0, r.Operations.Len())
	for pair := r.Operations.Oldest(); pair != nil; pair = pair.Next() {
		ops = append(ops, pair.Value)
	}
	return ops
}

// HasOperation reports whether kind is declared
func (r *ResourceDescription) HasOperation(kind OperationKind) bool {
	if r.Operations == nil {
		return false
	}
	_, ok := r.Operations.Get(kind)
	return ok
}

// Clone returns a deep copy
func (r *ResourceDescription) Clone() *ResourceDescription {
	out := *r
	if r.Properties != nil {
		out.Properties = NewProperties()
		for pair := r.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties.Set(pair.Key, pair.Value.Clone())
		}
	}
	if r.Operations != nil {
		out.Operations = NewOperations()
		for pair := r.Operations.Oldest(); pair != nil; pair = pair.Next() {
			out.Operations.Set(pair.Key, pair.Value.Clone())
		}
	}
	out.PaginationItemsPerPage = clonePtr(r.PaginationItemsPerPage)
	if r.OpenAPIContext != nil {
		out.OpenAPIContext = document.Clone(r.OpenAPIContext).(*document.Map)
	}
	out.Invalid = cloneInvalid(r.Invalid)
	out.Validation = make([]*validation.Table, len(r.Validation))
	for i, t := range r.Validation {
		out.Validation[i] = t.Clone()
	}
	out.ValidationFiles = append([]string(nil), r.ValidationFiles...)
	return &out
}

// Source is one provenance entry: the files a layer contributed
type Source struct {
	Layer Layer    `json:"layer" yaml:"layer"`
	Files []string `json:"files" yaml:"files"`
}

// MergedResourceDescription is the authoritative description of a resource
// after all layers have been applied.
type MergedResourceDescription struct {
	*ResourceDescription

	// Sources lists contributing layers in ascending precedence
	Sources []Source
	// LayerRecords holds the composed record of each contributing layer
	LayerRecords map[Layer]*ResourceDescription
	// Constraints is the merged constraint table
	Constraints *validation.Table
}

// IsEmpty reports whether the merge had no input
func (m *MergedResourceDescription) IsEmpty() bool {
	return m == nil || m.ResourceDescription == nil || len(m.Sources) == 0
}

// SourceFiles returns every contributing file in layer order
func (m *MergedResourceDescription) SourceFiles() []string {
	var files []string
	for _, s := range m.Sources {
		files = append(files, s.Files...)
	}
	return files
}

// TopLayer returns the highest contributing layer
func (m *MergedResourceDescription) TopLayer() Layer {
	if len(m.Sources) == 0 {
		return ""
	}
	return m.Sources[len(m.Sources)-1].Layer
}

// LayerRecord returns the composed record of one layer
func (m *MergedResourceDescription) LayerRecord(layer Layer) (*ResourceDescription, bool) {
	r, ok := m.LayerRecords[layer]
	return r, ok
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInvalid(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = document.Clone(v)
	}
	return out
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool { return &b }

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i
func IntPtr(i int) *int { return &i }
