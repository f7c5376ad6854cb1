package generator

import (
	"sort"
	"time"

	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/document"
	"github.com/conduit-lang/apischema/internal/schema/validation"
)

// NamespacePrefix is the namespace generated symbols live under
const NamespacePrefix = `Generated\Api`

// Model is the language-neutral description of one artifact. Renderers
// turn it into bytes; nothing in it is specific to an output language.
type Model struct {
	Symbol    string
	Namespace string
	APIType   string
	Resource  string

	ShortName   string
	Description string
	Provider    string
	Processor   string
	Pagination  *int

	Operations []OperationModel
	Properties []PropertyModel
	Symbols    *SymbolTable

	SourceFiles     []string
	ValidationFiles []string
	GeneratedAt     time.Time
}

// OperationModel is one declared operation
type OperationModel struct {
	Kind schema.OperationKind
	// Groups is the validation context of the operation, nil for none
	Groups   []string
	Security string
}

// PropertyModel is one property with its rendered constraints
type PropertyModel struct {
	Name           string
	Type           string
	Description    string
	Writable       bool
	Readable       bool
	Identifier     bool
	Required       bool
	Default        any
	OpenAPIContext *document.Map
	Constraints    []GroupedConstraint
}

// GroupedConstraint is a constraint together with every validation group
// it applies to
type GroupedConstraint struct {
	Constraint *validation.Constraint
	Groups     []string
}

// buildModel assembles the artifact model of a merged resource
func buildModel(merged *schema.MergedResourceDescription, symbol, apiType string, reserved func(*schema.MergedResourceDescription) map[string]bool) (*Model, error) {
	resource := merged.Identifier()
	table := merged.Constraints
	ops := merged.OperationList()

	var lists [][]*validation.Constraint
	for _, op := range ops {
		for _, prop := range table.Properties(string(op.Kind)) {
			lists = append(lists, table.Get(string(op.Kind), prop))
		}
	}
	symbols, err := ResolveSymbols(resource, collectQualified(lists...), reserved(merged))
	if err != nil {
		return nil, err
	}

	m := &Model{
		Symbol:          symbol,
		Namespace:       NamespacePrefix + `\` + apiType,
		APIType:         apiType,
		Resource:        resource,
		ShortName:       merged.ShortName,
		Description:     merged.Description,
		Provider:        merged.Provider,
		Processor:       merged.Processor,
		Pagination:      merged.PaginationItemsPerPage,
		Symbols:         symbols,
		SourceFiles:     merged.SourceFiles(),
		ValidationFiles: merged.ValidationFiles,
	}
	if len(m.SourceFiles) == 0 && merged.SourceFile != "" {
		m.SourceFiles = []string{merged.SourceFile}
	}

	for _, op := range ops {
		om := OperationModel{Kind: op.Kind, Security: op.Security}
		switch {
		case op.ValidationGroups != nil:
			om.Groups = append([]string(nil), op.ValidationGroups...)
		case table.HasOperation(string(op.Kind)):
			om.Groups = []string{validation.GroupFor(string(op.Kind), resource)}
		}
		m.Operations = append(m.Operations, om)
	}

	for pair := merged.PropertiesOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value
		m.Properties = append(m.Properties, PropertyModel{
			Name:           pair.Key,
			Type:           p.EffectiveType(),
			Description:    p.DescriptionText(),
			Writable:       p.IsWritable(),
			Readable:       p.IsReadable(),
			Identifier:     p.IsIdentifier(),
			Required:       p.IsRequired(),
			Default:        p.Default,
			OpenAPIContext: p.OpenAPIContext,
			Constraints:    groupConstraints(table, ops, pair.Key, resource),
		})
	}

	return m, nil
}

// groupConstraints gathers the constraints of one property across every
// declared operation. Optional wrappers are unwrapped, dropping NotBlank
// since an optional field may be absent. Identical constraints declared
// for several operations collapse into one with the union of their groups.
func groupConstraints(table *validation.Table, ops []*schema.OperationDescription, property, resource string) []GroupedConstraint {
	var out []GroupedConstraint
	index := make(map[string]int)

	add := func(c *validation.Constraint, group string) {
		id := c.Identity()
		i, ok := index[id]
		if !ok {
			index[id] = len(out)
			out = append(out, GroupedConstraint{Constraint: c})
			i = len(out) - 1
		}
		for _, g := range out[i].Groups {
			if g == group {
				return
			}
		}
		out[i].Groups = append(out[i].Groups, group)
	}

	for _, op := range ops {
		constraints := table.Get(string(op.Kind), property)
		if len(constraints) == 0 {
			continue
		}
		group := validation.GroupFor(string(op.Kind), resource)
		for _, c := range constraints {
			if c.NormalizedName() != "Optional" {
				add(c, group)
				continue
			}
			for _, nested := range c.Nested() {
				if nested.NormalizedName() == "NotBlank" {
					continue
				}
				add(nested, group)
			}
		}
	}

	for i := range out {
		sort.Strings(out[i].Groups)
	}
	return out
}
