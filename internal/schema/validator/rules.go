package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/expression"
	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/document"
)

var (
	propertyNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	classNamePattern    = regexp.MustCompile(`^\\?[a-zA-Z_\x{80}-\x{10FFFF}][a-zA-Z0-9_\x{80}-\x{10FFFF}]*(\\[a-zA-Z_\x{80}-\x{10FFFF}][a-zA-Z0-9_\x{80}-\x{10FFFF}]*)*$`)
)

var booleanFlags = []string{"writable", "readable", "identifier", "required"}

// StructureRule requires a resolvable display name and a property map, and
// reports resource-level attributes of the wrong shape.
type StructureRule struct{}

func (r *StructureRule) Name() string { return "structure" }

func (r *StructureRule) Check(ctx *Context) []*apierrors.PipelineError {
	m := ctx.Merged
	resource := ctx.Resource()

	var out []*apierrors.PipelineError
	if m.DisplayName() == "" {
		out = append(out, apierrors.NewMissingShortName(resource))
	}
	if m.Properties == nil {
		out = append(out, apierrors.NewMissingProperties(resource))
	}

	for _, key := range sortedKeys(m.Invalid) {
		value := m.Invalid[key]
		switch key {
		case "name", "shortName", "description", "provider", "processor":
			out = append(out, apierrors.NewInvalidAttribute(resource, key, "a string", value))
		case "openapiContext":
			out = append(out, apierrors.NewInvalidOpenAPIContext(resource, key, value))
		case "paginationItemsPerPage":
			// reported by PaginationRule
		default:
			out = append(out, apierrors.NewInvalidAttribute(resource, key, "a mapping with a name or type", value))
		}
	}
	return out
}

// ResourceNameRule requires a non-empty resource name
type ResourceNameRule struct{}

func (r *ResourceNameRule) Name() string { return "resource_name" }

func (r *ResourceNameRule) Check(ctx *Context) []*apierrors.PipelineError {
	if strings.TrimSpace(ctx.Merged.Name) == "" {
		if _, invalid := ctx.Merged.Invalid["name"]; invalid {
			return nil
		}
		return []*apierrors.PipelineError{apierrors.NewEmptyResourceName(ctx.Merged.Key)}
	}
	return nil
}

// PropertyRule checks property names, types, defaults, flags and contexts
type PropertyRule struct{}

func (r *PropertyRule) Name() string { return "property" }

func (r *PropertyRule) Check(ctx *Context) []*apierrors.PipelineError {
	resource := ctx.Resource()

	var out []*apierrors.PipelineError
	for pair := ctx.Merged.PropertiesOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		name, prop := pair.Key, pair.Value
		withFile := func(e *apierrors.PipelineError) *apierrors.PipelineError {
			if prop.SourceFile != "" {
				e.WithFile(prop.SourceFile)
			}
			return e
		}

		if !propertyNamePattern.MatchString(name) {
			out = append(out, withFile(apierrors.NewInvalidPropertyName(resource, name)))
		}

		if v, ok := prop.Invalid["definition"]; ok {
			out = append(out, withFile(apierrors.NewInvalidAttribute(resource, "properties."+name, "a mapping", v)))
		}

		typeValid := true
		if v, ok := prop.Invalid["type"]; ok {
			typeValid = false
			out = append(out, withFile(apierrors.NewInvalidPropertyType(resource, name, fmt.Sprint(v), schema.PropertyTypes)))
		} else if prop.Type != "" && !schema.IsPropertyType(prop.Type) {
			typeValid = false
			out = append(out, withFile(apierrors.NewInvalidPropertyType(resource, name, prop.Type, schema.PropertyTypes)))
		}

		if typeValid && prop.Default != nil && !compatible(prop.Default, prop.EffectiveType()) {
			out = append(out, withFile(apierrors.NewIncompatibleDefault(resource, name, prop.EffectiveType(), prop.Default)))
		}

		for _, flag := range booleanFlags {
			if v, ok := prop.Invalid[flag]; ok {
				out = append(out, withFile(apierrors.NewNonBooleanFlag(resource, name, flag, v)))
			}
		}

		if v, ok := prop.Invalid["openapiContext"]; ok {
			out = append(out, withFile(apierrors.NewInvalidOpenAPIContext(resource, "properties."+name+".openapiContext", v)))
		}
		if v, ok := prop.Invalid["description"]; ok {
			out = append(out, withFile(apierrors.NewInvalidAttribute(resource, "properties."+name+".description", "a string", v)))
		}
	}
	return out
}

// compatible reports whether a decoded default value fits the declared type
func compatible(value any, typ string) bool {
	switch typ {
	case schema.TypeString:
		_, ok := value.(string)
		return ok
	case schema.TypeInteger:
		_, ok := document.AsInt(value)
		return ok
	case schema.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case schema.TypeArray, schema.TypeObject:
		if _, ok := document.AsList(value); ok {
			return true
		}
		_, ok := document.AsMap(value)
		return ok
	default:
		return true
	}
}

// OperationRule requires at least one operation and known kinds
type OperationRule struct{}

func (r *OperationRule) Name() string { return "operation" }

func (r *OperationRule) Check(ctx *Context) []*apierrors.PipelineError {
	resource := ctx.Resource()
	ops := ctx.Merged.OperationList()
	if len(ops) == 0 {
		return []*apierrors.PipelineError{apierrors.NewNoOperations(resource)}
	}

	var out []*apierrors.PipelineError
	for _, op := range ops {
		if !op.Kind.Valid() {
			out = append(out, apierrors.NewInvalidOperationKind(resource, string(op.Kind), schema.OperationKindNames()).
				WithFile(op.SourceFile))
		}
		for _, key := range sortedKeys(op.Invalid) {
			if key == "security" {
				continue
			}
			expected := "a list of strings"
			if key == "options" {
				expected = "a mapping"
			}
			out = append(out, apierrors.NewInvalidAttribute(resource,
				fmt.Sprintf("operations.%s.%s", op.Kind, key), expected, op.Invalid[key]).WithFile(op.SourceFile))
		}
	}
	return out
}

// PaginationRule requires a positive page size when one is set
type PaginationRule struct{}

func (r *PaginationRule) Name() string { return "pagination" }

func (r *PaginationRule) Check(ctx *Context) []*apierrors.PipelineError {
	m := ctx.Merged
	if v, ok := m.Invalid["paginationItemsPerPage"]; ok {
		return []*apierrors.PipelineError{apierrors.NewInvalidPagination(ctx.Resource(), v)}
	}
	if m.PaginationItemsPerPage != nil && *m.PaginationItemsPerPage <= 0 {
		return []*apierrors.PipelineError{apierrors.NewInvalidPagination(ctx.Resource(), *m.PaginationItemsPerPage)}
	}
	return nil
}

// SecurityExpressionRule syntax-checks access-control expressions
type SecurityExpressionRule struct{}

func (r *SecurityExpressionRule) Name() string { return "security_expression" }

func (r *SecurityExpressionRule) Check(ctx *Context) []*apierrors.PipelineError {
	resource := ctx.Resource()

	var out []*apierrors.PipelineError
	for _, op := range ctx.Merged.OperationList() {
		if !op.Kind.Valid() {
			continue
		}
		if v, ok := op.Invalid["security"]; ok {
			out = append(out, apierrors.NewInvalidAttribute(resource,
				fmt.Sprintf("operations.%s.security", op.Kind), "a string", v).WithFile(op.SourceFile))
			continue
		}
		if op.Security == "" {
			continue
		}
		if err := expression.Lint(op.Security); err != nil {
			out = append(out, apierrors.NewInvalidSecurityExpression(resource, string(op.Kind), op.Security, err).
				WithFile(op.SourceFile))
		}
	}
	return out
}

// SymbolReferenceRule warns about provider and processor references that
// are not well-formed class names. It never fails validation.
type SymbolReferenceRule struct{}

func (r *SymbolReferenceRule) Name() string { return "symbol_reference" }

func (r *SymbolReferenceRule) Check(ctx *Context) []*apierrors.PipelineError {
	var out []*apierrors.PipelineError
	refs := []struct{ field, value string }{
		{"provider", ctx.Merged.Provider},
		{"processor", ctx.Merged.Processor},
	}
	for _, ref := range refs {
		if ref.value != "" && !classNamePattern.MatchString(ref.value) {
			out = append(out, apierrors.NewInvalidSymbolReference(ctx.Resource(), ref.field, ref.value))
		}
	}
	return out
}

// ImmutabilityRule prevents the project layer from changing property types
// or identifier flags of the base layer, or from omitting base-required
// properties. It only runs when both records are available.
type ImmutabilityRule struct{}

func (r *ImmutabilityRule) Name() string { return "merge" }

func (r *ImmutabilityRule) Check(ctx *Context) []*apierrors.PipelineError {
	base := ctx.Base
	override, ok := ctx.Merged.LayerRecord(schema.LayerProject)
	if base == nil || !ok || override == nil || override == base {
		return nil
	}
	resource := ctx.Resource()

	var out []*apierrors.PipelineError
	for pair := override.PropertiesOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		baseProp, ok := base.Property(pair.Key)
		if !ok {
			continue
		}
		prop := pair.Value
		file := firstNonEmpty(prop.SourceFile, override.SourceFile)

		if baseProp.Type != "" && prop.Type != "" && baseProp.Type != prop.Type {
			out = append(out, apierrors.NewImmutableTypeChanged(resource, pair.Key, baseProp.Type, prop.Type).
				WithFile(file).WithLayer(string(schema.LayerProject)))
		}
		if baseProp.Identifier != nil && prop.Identifier != nil && *baseProp.Identifier != *prop.Identifier {
			out = append(out, apierrors.NewImmutableIdentifierChanged(resource, pair.Key, *baseProp.Identifier, *prop.Identifier).
				WithFile(file).WithLayer(string(schema.LayerProject)))
		}
	}

	for pair := base.PropertiesOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Value.IsRequired() {
			continue
		}
		if _, ok := override.Property(pair.Key); !ok {
			baseFile := firstNonEmpty(pair.Value.SourceFile, base.SourceFile)
			out = append(out, apierrors.NewRequiredPropertyDropped(resource, pair.Key, baseFile).
				WithFile(override.SourceFile).WithLayer(string(schema.LayerProject)))
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
