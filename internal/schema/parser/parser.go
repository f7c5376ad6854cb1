// Package parser normalizes loaded resource schema documents into canonical
// resource descriptions and attaches validation tables to them.
package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/document"
	"github.com/conduit-lang/apischema/internal/schema/finder"
	"github.com/conduit-lang/apischema/internal/schema/loader"
)

// Resource-level keys
const (
	keyName           = "name"
	keyShortName      = "shortName"
	keyDescription    = "description"
	keyProperties     = "properties"
	keyOperations     = "operations"
	keyProvider       = "provider"
	keyProcessor      = "processor"
	keyPagination     = "paginationItemsPerPage"
	keyOpenAPIContext = "openapiContext"
)

// Property and operation keys
const (
	keyType             = "type"
	keyWritable         = "writable"
	keyReadable         = "readable"
	keyIdentifier       = "identifier"
	keyRequired         = "required"
	keyDefault          = "default"
	keyValidationGroups = "validationGroups"
	keySecurity         = "security"
)

// Parser converts loaded documents into resource descriptions
type Parser struct {
	resolver *schema.LayerResolver
	logger   *zap.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithLayerResolver sets the layer resolver
func WithLayerResolver(resolver *schema.LayerResolver) Option {
	return func(p *Parser) {
		p.resolver = resolver
	}
}

// New creates a parser
func New(opts ...Option) *Parser {
	p := &Parser{
		resolver: schema.DefaultLayerResolver(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse normalizes one loaded document. Values of the wrong shape never fail
// the parse; they are kept in the Invalid maps for the validator to report.
func (p *Parser) Parse(doc *loader.Document) *schema.ResourceDescription {
	r := schema.NewResourceDescription(finder.ResourceKey(doc.Path))
	r.SourceFile = doc.Path
	r.Layer = p.resolver.Resolve(doc.Path)

	res := doc.Resource
	if res == nil {
		return r
	}

	for pair := res.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case keyName:
			p.setString(r, pair.Key, pair.Value, &r.Name)
		case keyShortName:
			p.setString(r, pair.Key, pair.Value, &r.ShortName)
		case keyDescription:
			p.setString(r, pair.Key, pair.Value, &r.Description)
		case keyProvider:
			p.setString(r, pair.Key, pair.Value, &r.Provider)
		case keyProcessor:
			p.setString(r, pair.Key, pair.Value, &r.Processor)
		case keyPagination:
			if pair.Value == nil {
				continue
			}
			if n, ok := document.AsInt(pair.Value); ok {
				r.PaginationItemsPerPage = schema.IntPtr(n)
			} else {
				invalid(&r.Invalid, pair.Key, pair.Value)
			}
		case keyOpenAPIContext:
			if pair.Value == nil {
				continue
			}
			if m, ok := document.AsMap(pair.Value); ok {
				r.OpenAPIContext = m
			} else {
				invalid(&r.Invalid, pair.Key, pair.Value)
			}
		case keyProperties:
			p.parseProperties(r, pair.Value)
		case keyOperations:
			p.parseOperations(r, pair.Value)
		default:
			p.logger.Debug("ignoring unknown resource attribute",
				zap.String("file", doc.Path),
				zap.String("attribute", pair.Key),
			)
		}
	}

	return r
}

func (p *Parser) setString(r *schema.ResourceDescription, key string, value any, dst *string) {
	if value == nil {
		return
	}
	s, ok := value.(string)
	if !ok {
		invalid(&r.Invalid, key, value)
		return
	}
	*dst = s
}

func (p *Parser) parseProperties(r *schema.ResourceDescription, value any) {
	switch v := value.(type) {
	case nil:
	case *document.Map:
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			r.Properties.Set(pair.Key, parseProperty(pair.Key, pair.Value, r.SourceFile))
		}
	case []any:
		for i, entry := range v {
			m, ok := document.AsMap(entry)
			if !ok {
				invalid(&r.Invalid, fmt.Sprintf("%s[%d]", keyProperties, i), entry)
				continue
			}
			nameValue, _ := m.Get(keyName)
			name, ok := nameValue.(string)
			if !ok || name == "" {
				invalid(&r.Invalid, fmt.Sprintf("%s[%d]", keyProperties, i), entry)
				continue
			}
			r.Properties.Set(name, parseProperty(name, m, r.SourceFile))
		}
	default:
		invalid(&r.Invalid, keyProperties, value)
	}
}

func parseProperty(name string, value any, file string) *schema.PropertyDescription {
	prop := &schema.PropertyDescription{Name: name, SourceFile: file}

	switch v := value.(type) {
	case nil:
		return prop
	case string:
		// shorthand: "id: integer"
		prop.Type = schema.NormalizePropertyType(v)
		return prop
	case *document.Map:
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			switch pair.Key {
			case keyName:
			case keyType:
				if s, ok := pair.Value.(string); ok {
					prop.Type = schema.NormalizePropertyType(s)
				} else if pair.Value != nil {
					invalid(&prop.Invalid, pair.Key, pair.Value)
				}
			case keyDescription:
				if s, ok := pair.Value.(string); ok {
					prop.Description = schema.StringPtr(s)
				} else if pair.Value != nil {
					invalid(&prop.Invalid, pair.Key, pair.Value)
				}
			case keyWritable:
				prop.Writable = parseFlag(prop, pair.Key, pair.Value)
			case keyReadable:
				prop.Readable = parseFlag(prop, pair.Key, pair.Value)
			case keyIdentifier:
				prop.Identifier = parseFlag(prop, pair.Key, pair.Value)
			case keyRequired:
				prop.Required = parseFlag(prop, pair.Key, pair.Value)
			case keyDefault:
				prop.Default = pair.Value
			case keyOpenAPIContext:
				if m, ok := document.AsMap(pair.Value); ok {
					prop.OpenAPIContext = m
				} else if pair.Value != nil {
					invalid(&prop.Invalid, pair.Key, pair.Value)
				}
			}
		}
		return prop
	default:
		invalid(&prop.Invalid, "definition", value)
		return prop
	}
}

func parseFlag(prop *schema.PropertyDescription, key string, value any) *bool {
	if value == nil {
		return nil
	}
	b, ok := value.(bool)
	if !ok {
		invalid(&prop.Invalid, key, value)
		return nil
	}
	return schema.BoolPtr(b)
}

func (p *Parser) parseOperations(r *schema.ResourceDescription, value any) {
	switch v := value.(type) {
	case nil:
	case *document.Map:
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			op := parseOperation(pair.Key, pair.Value, r.SourceFile)
			r.Operations.Set(op.Kind, op)
		}
	case []any:
		for i, entry := range v {
			var kind string
			switch e := entry.(type) {
			case string:
				kind = e
			case *document.Map:
				kind, _ = mapString(e, keyType)
			}
			if kind == "" {
				invalid(&r.Invalid, fmt.Sprintf("%s[%d]", keyOperations, i), entry)
				continue
			}
			op := parseOperation(kind, entry, r.SourceFile)
			r.Operations.Set(op.Kind, op)
		}
	default:
		invalid(&r.Invalid, keyOperations, value)
	}
}

func parseOperation(kind string, value any, file string) *schema.OperationDescription {
	k, _ := schema.ParseOperationKind(kind)
	op := &schema.OperationDescription{Kind: k, SourceFile: file}

	options, ok := document.AsMap(value)
	if !ok {
		if _, isString := value.(string); value != nil && !isString {
			invalid(&op.Invalid, "options", value)
		}
		return op
	}

	for pair := options.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case keyValidationGroups:
			groups, ok := stringList(pair.Value)
			if !ok {
				invalid(&op.Invalid, pair.Key, pair.Value)
				continue
			}
			op.ValidationGroups = groups
		case keySecurity:
			if pair.Value == nil {
				continue
			}
			s, ok := pair.Value.(string)
			if !ok {
				invalid(&op.Invalid, pair.Key, pair.Value)
				continue
			}
			op.Security = s
		}
	}

	return op
}

func mapString(m *document.Map, key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// stringList accepts a single string or a list of strings
func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		return []string{t}, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func invalid(m *map[string]any, key string, value any) {
	if *m == nil {
		*m = make(map[string]any)
	}
	(*m)[key] = value
}
