package validation

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/conduit-lang/apischema/internal/schema/document"
)

type propertyConstraints = orderedmap.OrderedMap[string, []*Constraint]

// Table maps operation -> property -> ordered constraint tokens. Operation
// keys are the lower-case operation kind ("post", "getcollection").
type Table struct {
	operations *orderedmap.OrderedMap[string, *propertyConstraints]
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{operations: orderedmap.New[string, *propertyConstraints]()}
}

// OperationKey normalizes an operation kind into a table key
func OperationKey(operation string) string {
	return strings.ToLower(operation)
}

// Add appends tokens to the list of (operation, property)
func (t *Table) Add(operation, property string, constraints ...*Constraint) {
	key := OperationKey(operation)
	props, ok := t.operations.Get(key)
	if !ok {
		props = orderedmap.New[string, []*Constraint]()
		t.operations.Set(key, props)
	}
	existing, _ := props.Get(property)
	props.Set(property, append(existing, constraints...))
}

// Set replaces the list of (operation, property)
func (t *Table) Set(operation, property string, constraints []*Constraint) {
	key := OperationKey(operation)
	props, ok := t.operations.Get(key)
	if !ok {
		props = orderedmap.New[string, []*Constraint]()
		t.operations.Set(key, props)
	}
	props.Set(property, constraints)
}

// Get returns the tokens of (operation, property)
func (t *Table) Get(operation, property string) []*Constraint {
	if t == nil {
		return nil
	}
	props, ok := t.operations.Get(OperationKey(operation))
	if !ok {
		return nil
	}
	list, _ := props.Get(property)
	return list
}

// HasOperation reports whether any constraints exist for operation
func (t *Table) HasOperation(operation string) bool {
	if t == nil {
		return false
	}
	_, ok := t.operations.Get(OperationKey(operation))
	return ok
}

// Operations returns operation keys in insertion order
func (t *Table) Operations() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, t.operations.Len())
	for pair := t.operations.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Properties returns the property names of operation in insertion order
func (t *Table) Properties(operation string) []string {
	if t == nil {
		return nil
	}
	props, ok := t.operations.Get(OperationKey(operation))
	if !ok {
		return nil
	}
	keys := make([]string, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every (operation, property) pair in insertion order
func (t *Table) Each(fn func(operation, property string, constraints []*Constraint)) {
	if t == nil {
		return
	}
	for op := t.operations.Oldest(); op != nil; op = op.Next() {
		for prop := op.Value.Oldest(); prop != nil; prop = prop.Next() {
			fn(op.Key, prop.Key, prop.Value)
		}
	}
}

// Len returns the number of (operation, property) pairs
func (t *Table) Len() int {
	n := 0
	t.Each(func(string, string, []*Constraint) { n++ })
	return n
}

// IsEmpty reports whether the table holds no pairs
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := NewTable()
	t.Each(func(op, prop string, constraints []*Constraint) {
		out.Set(op, prop, cloneList(constraints))
	})
	return out
}

// Raw converts the table back into its document form
func (t *Table) Raw() *document.Map {
	out := document.NewMap()
	t.Each(func(op, prop string, constraints []*Constraint) {
		v, ok := out.Get(op)
		if !ok {
			v = document.NewMap()
			out.Set(op, v)
		}
		list := make([]any, len(constraints))
		for i, c := range constraints {
			list[i] = c.Raw()
		}
		v.(*document.Map).Set(prop, list)
	})
	return out
}

// MarshalYAML renders the table in its source form
func (t *Table) MarshalYAML() (any, error) {
	return t.Raw(), nil
}
