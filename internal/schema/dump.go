package schema

import (
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/apischema/internal/schema/document"
)

// Dump renders the merged description in resource-file form, followed by
// its merged constraints and provenance. Declaration order is preserved.
func (m *MergedResourceDescription) Dump() ([]byte, error) {
	root, err := m.DumpNode()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(root)
}

// DumpNode is Dump as a YAML node tree
func (m *MergedResourceDescription) DumpNode() (*yaml.Node, error) {
	resource, err := resourceNode(m.ResourceDescription)
	if err != nil {
		return nil, err
	}

	root := mapping()
	appendPair(root, "resource", resource)

	if m.Constraints != nil && !m.Constraints.IsEmpty() {
		v, err := valueNode(m.Constraints.Raw())
		if err != nil {
			return nil, err
		}
		appendPair(root, "validation", v)
	}

	sources := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range m.Sources {
		entry := mapping()
		appendPair(entry, "layer", scalar(string(s.Layer)))
		files := &yaml.Node{Kind: yaml.SequenceNode}
		for _, f := range s.Files {
			files.Content = append(files.Content, scalar(f))
		}
		appendPair(entry, "files", files)
		sources.Content = append(sources.Content, entry)
	}
	appendPair(root, "sources", sources)

	return root, nil
}

func resourceNode(r *ResourceDescription) (*yaml.Node, error) {
	n := mapping()
	appendString(n, "name", r.Name)
	appendString(n, "shortName", r.ShortName)
	appendString(n, "description", r.Description)
	appendString(n, "provider", r.Provider)
	appendString(n, "processor", r.Processor)
	if r.PaginationItemsPerPage != nil {
		if err := appendValue(n, "paginationItemsPerPage", *r.PaginationItemsPerPage); err != nil {
			return nil, err
		}
	}
	if r.OpenAPIContext != nil {
		if err := appendValue(n, "openapiContext", r.OpenAPIContext); err != nil {
			return nil, err
		}
	}

	props := mapping()
	for pair := r.PropertiesOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		p, err := propertyNode(pair.Value)
		if err != nil {
			return nil, err
		}
		appendPair(props, pair.Key, p)
	}
	appendPair(n, "properties", props)

	ops := mapping()
	for _, op := range r.OperationList() {
		o := mapping()
		if len(op.ValidationGroups) > 0 {
			if err := appendValue(o, "validationGroups", op.ValidationGroups); err != nil {
				return nil, err
			}
		}
		appendString(o, "security", op.Security)
		appendPair(ops, string(op.Kind), o)
	}
	appendPair(n, "operations", ops)

	return n, nil
}

func propertyNode(p *PropertyDescription) (*yaml.Node, error) {
	n := mapping()
	appendString(n, "type", p.Type)
	if p.Description != nil {
		appendPair(n, "description", scalar(*p.Description))
	}
	flags := []struct {
		key   string
		value *bool
	}{
		{"writable", p.Writable},
		{"readable", p.Readable},
		{"identifier", p.Identifier},
		{"required", p.Required},
	}
	for _, f := range flags {
		if f.value != nil {
			if err := appendValue(n, f.key, *f.value); err != nil {
				return nil, err
			}
		}
	}
	if p.Default != nil {
		if err := appendValue(n, "default", p.Default); err != nil {
			return nil, err
		}
	}
	if p.OpenAPIContext != nil {
		if err := appendValue(n, "openapiContext", p.OpenAPIContext); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// valueNode converts an ordered document tree into nodes
func valueNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *document.Map:
		n := mapping()
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			child, err := valueNode(pair.Value)
			if err != nil {
				return nil, err
			}
			appendPair(n, pair.Key, child)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t {
			child, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func appendPair(n *yaml.Node, key string, value *yaml.Node) {
	n.Content = append(n.Content, scalar(key), value)
}

func appendString(n *yaml.Node, key, value string) {
	if value != "" {
		appendPair(n, key, scalar(value))
	}
}

func appendValue(n *yaml.Node, key string, value any) error {
	v, err := valueNode(value)
	if err != nil {
		return err
	}
	appendPair(n, key, v)
	return nil
}
