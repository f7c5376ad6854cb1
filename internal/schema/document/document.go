// Package document decodes YAML schema files into ordered, generic
// key/value trees. Mappings keep their declaration order so that everything
// derived from them (properties, operations, constraint parameters) renders
// deterministically.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Map is the ordered mapping type documents decode into
type Map = orderedmap.OrderedMap[string, any]

// NewMap creates an empty ordered mapping
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// SyntaxError reports a document that is not well-formed YAML
type SyntaxError struct {
	File string
	Line int
	Err  error
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Unwrap returns the underlying YAML error
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// DecodeFile reads and decodes one YAML file
func DecodeFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := Decode(data)
	if err != nil {
		return nil, &SyntaxError{File: path, Line: ErrorLine(err), Err: err}
	}
	return v, nil
}

// Decode parses YAML into ordered values: mappings become *Map, sequences
// []any and scalars their natural Go types. Timestamps stay strings. An empty
// document decodes to nil.
func Decode(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, nil
	}
	return convert(&root)
}

func convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convert(n.Content[0])

	case yaml.MappingNode:
		return convertMapping(n)

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			value, err := convert(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil

	case yaml.AliasNode:
		return convert(n.Alias)

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!timestamp", "!!binary":
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

// convertMapping expands merge keys (<<) the way YAML 1.1 defines them: keys
// written in the mapping itself win over merged ones, and within a merged
// sequence earlier mappings win over later ones.
func convertMapping(n *yaml.Node) (*Map, error) {
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if !isMergeKey(n.Content[i]) {
			explicit[n.Content[i].Value] = true
		}
	}

	m := NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, valueNode := n.Content[i], n.Content[i+1]

		if isMergeKey(key) {
			sources, err := mergeSources(valueNode)
			if err != nil {
				return nil, err
			}
			for _, source := range sources {
				for pair := source.Oldest(); pair != nil; pair = pair.Next() {
					if explicit[pair.Key] {
						continue
					}
					if _, seen := m.Get(pair.Key); seen {
						continue
					}
					m.Set(pair.Key, pair.Value)
				}
			}
			continue
		}

		value, err := convert(valueNode)
		if err != nil {
			return nil, err
		}
		m.Set(key.Value, value)
	}
	return m, nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

func mergeSources(n *yaml.Node) ([]*Map, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	nodes := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		nodes = n.Content
	}

	sources := make([]*Map, 0, len(nodes))
	for _, node := range nodes {
		if node.Kind == yaml.AliasNode {
			node = node.Alias
		}
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: merge key (<<) must reference a mapping or a sequence of mappings", node.Line)
		}
		m, err := convertMapping(node)
		if err != nil {
			return nil, err
		}
		sources = append(sources, m)
	}
	return sources, nil
}

// ErrorLine extracts the line number from a YAML decode error, or 0
func ErrorLine(err error) int {
	m := yamlLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	line, _ := strconv.Atoi(m[1])
	return line
}

// Plain converts an ordered tree into plain JSON-compatible values
// (map[string]any, []any, string, float64, bool, nil). Used where a consumer
// expects encoding/json shapes, such as the JSON Schema envelope check.
func Plain(v any) (any, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AsMap returns v as an ordered mapping
func AsMap(v any) (*Map, bool) {
	m, ok := v.(*Map)
	return m, ok && m != nil
}

// AsList returns v as a sequence
func AsList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// AsInt returns v as an int if it is an integral number
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}

// Keys returns the keys of m in declaration order
func Keys(m *Map) []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a deep copy of an ordered tree
func Clone(v any) any {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return t
		}
		out := NewMap()
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, Clone(pair.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}
