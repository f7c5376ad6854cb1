// Package validation models the per-resource constraint tables: constraint
// tokens, their identity for deduplication, loading from validation schema
// files and merging tables across layers.
package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/conduit-lang/apischema/internal/schema/document"
)

// NestedKey is the parameter that carries nested tokens in composite
// constraints (Optional, All, Sequentially, Composite, ...).
const NestedKey = "constraints"

// Constraint is one named validation rule. The name is either a bare,
// well-known constraint name ("NotBlank") or a fully-qualified identifier
// ("Pyz\Glue\Constraints\Iban"). Tokens are opaque: parameters are carried
// through and compared, never interpreted.
type Constraint struct {
	// Name as declared in the source
	Name string
	// Argument is a scalar or list shorthand value ({Regex: '/x/'})
	Argument any
	// Params holds named parameters in declaration order. A "constraints"
	// parameter holds []*Constraint.
	Params *document.Map
}

// NewConstraint creates a bare token
func NewConstraint(name string) *Constraint {
	return &Constraint{Name: name}
}

// WithParam sets a named parameter and returns the token
func (c *Constraint) WithParam(key string, value any) *Constraint {
	if c.Params == nil {
		c.Params = document.NewMap()
	}
	c.Params.Set(key, value)
	return c
}

// IsQualified reports whether the name is a fully-qualified identifier
func (c *Constraint) IsQualified() bool {
	return IsQualifiedName(c.Name)
}

// NormalizedName returns the name with any leading namespace separator removed
func (c *Constraint) NormalizedName() string {
	return NormalizeName(c.Name)
}

// ShortName returns the trailing segment of a qualified name, or the name itself
func (c *Constraint) ShortName() string {
	name := c.NormalizedName()
	if i := strings.LastIndex(name, `\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Nested returns the nested tokens of a composite constraint
func (c *Constraint) Nested() []*Constraint {
	if c.Params == nil {
		return nil
	}
	v, ok := c.Params.Get(NestedKey)
	if !ok {
		return nil
	}
	nested, _ := v.([]*Constraint)
	return nested
}

// IsBare reports whether the token carries no argument and no parameters
func (c *Constraint) IsBare() bool {
	return c.Argument == nil && (c.Params == nil || c.Params.Len() == 0)
}

// Identity returns the deduplication key: the normalized name, plus a hash
// of the key-sorted parameters when the token is parameterized. Composite
// tokens hash their full nested content, so two wrappers are equal only when
// everything inside them matches.
func (c *Constraint) Identity() string {
	name := c.NormalizedName()
	if c.IsBare() {
		return name
	}

	d := xxhash.New()
	c.writeCanonicalBody(d)
	return name + "_" + strconv.FormatUint(d.Sum64(), 16)
}

// Equal reports whether two tokens share an identity
func (c *Constraint) Equal(other *Constraint) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Identity() == other.Identity()
}

// Clone returns a deep copy of the token
func (c *Constraint) Clone() *Constraint {
	out := &Constraint{Name: c.Name, Argument: document.Clone(c.Argument)}
	if c.Params != nil {
		out.Params = document.NewMap()
		for pair := c.Params.Oldest(); pair != nil; pair = pair.Next() {
			if nested, ok := pair.Value.([]*Constraint); ok {
				out.Params.Set(pair.Key, cloneList(nested))
				continue
			}
			out.Params.Set(pair.Key, document.Clone(pair.Value))
		}
	}
	return out
}

// Raw converts the token back into its document form: a bare name, or a
// single-key mapping of name to argument or parameters.
func (c *Constraint) Raw() any {
	if c.IsBare() {
		return c.Name
	}
	m := document.NewMap()
	if c.Params == nil || c.Params.Len() == 0 {
		m.Set(c.Name, c.Argument)
		return m
	}
	params := document.NewMap()
	for pair := c.Params.Oldest(); pair != nil; pair = pair.Next() {
		if nested, ok := pair.Value.([]*Constraint); ok {
			raw := make([]any, len(nested))
			for i, n := range nested {
				raw[i] = n.Raw()
			}
			params.Set(pair.Key, raw)
			continue
		}
		params.Set(pair.Key, pair.Value)
	}
	m.Set(c.Name, params)
	return m
}

// String renders the token for logs and debug output
func (c *Constraint) String() string {
	if c.IsBare() {
		return c.Name
	}
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString("(")
	var parts []string
	if c.Argument != nil {
		parts = append(parts, fmt.Sprintf("%v", c.Argument))
	}
	if c.Params != nil {
		for pair := c.Params.Oldest(); pair != nil; pair = pair.Next() {
			if nested, ok := pair.Value.([]*Constraint); ok {
				inner := make([]string, len(nested))
				for i, n := range nested {
					inner[i] = n.String()
				}
				parts = append(parts, fmt.Sprintf("%s: [%s]", pair.Key, strings.Join(inner, ", ")))
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %v", pair.Key, pair.Value))
		}
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	return b.String()
}

type stringWriter interface {
	WriteString(s string) (int, error)
}

func (c *Constraint) writeCanonical(w stringWriter) {
	w.WriteString("c(")
	w.WriteString(strconv.Quote(c.NormalizedName()))
	c.writeCanonicalBody(w)
	w.WriteString(")")
}

func (c *Constraint) writeCanonicalBody(w stringWriter) {
	w.WriteString("a=")
	writeCanonicalValue(w, c.Argument)
	w.WriteString(";p=")
	if c.Params == nil {
		w.WriteString("{}")
		return
	}
	writeCanonicalValue(w, c.Params)
}

// writeCanonicalValue encodes v so that equal content always produces equal
// bytes: mapping keys are sorted, sequences keep their order.
func writeCanonicalValue(w stringWriter, v any) {
	switch t := v.(type) {
	case nil:
		w.WriteString("null")
	case bool:
		w.WriteString(strconv.FormatBool(t))
	case string:
		w.WriteString("s")
		w.WriteString(strconv.Quote(t))
	case int:
		w.WriteString("i" + strconv.Itoa(t))
	case int64:
		w.WriteString("i" + strconv.FormatInt(t, 10))
	case uint64:
		w.WriteString("i" + strconv.FormatUint(t, 10))
	case float64:
		w.WriteString("f" + strconv.FormatFloat(t, 'g', -1, 64))
	case *Constraint:
		t.writeCanonical(w)
	case []*Constraint:
		w.WriteString("[")
		for i, item := range t {
			if i > 0 {
				w.WriteString(",")
			}
			item.writeCanonical(w)
		}
		w.WriteString("]")
	case []any:
		w.WriteString("[")
		for i, item := range t {
			if i > 0 {
				w.WriteString(",")
			}
			writeCanonicalValue(w, item)
		}
		w.WriteString("]")
	case *document.Map:
		keys := document.Keys(t)
		sort.Strings(keys)
		w.WriteString("{")
		for i, key := range keys {
			if i > 0 {
				w.WriteString(",")
			}
			w.WriteString(strconv.Quote(key))
			w.WriteString(":")
			value, _ := t.Get(key)
			writeCanonicalValue(w, value)
		}
		w.WriteString("}")
	default:
		w.WriteString(fmt.Sprintf("%T:%v", v, v))
	}
}

// IsQualifiedName reports whether name contains a namespace separator
func IsQualifiedName(name string) bool {
	return strings.Contains(name, `\`)
}

// NormalizeName trims a leading namespace separator
func NormalizeName(name string) string {
	return strings.TrimLeft(name, `\`)
}

func cloneList(list []*Constraint) []*Constraint {
	out := make([]*Constraint, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}
