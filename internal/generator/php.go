package generator

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/document"
	"github.com/conduit-lang/apischema/internal/schema/validation"
	utilstrings "github.com/conduit-lang/apischema/internal/util/strings"
)

const (
	apiResourceClass = `ApiPlatform\Metadata\ApiResource`
	apiPropertyClass = `ApiPlatform\Metadata\ApiProperty`
	operationPackage = `ApiPlatform\Metadata\`
	assertImport     = `Symfony\Component\Validator\Constraints as Assert`
)

var phpTypes = map[string]string{
	schema.TypeString:  "string",
	schema.TypeInteger: "int",
	schema.TypeBoolean: "bool",
	schema.TypeArray:   "array",
	schema.TypeObject:  "object",
	schema.TypeMixed:   "mixed",
}

// PHPRenderer renders an API Platform resource class
type PHPRenderer struct{}

// NewPHPRenderer creates the PHP renderer
func NewPHPRenderer() *PHPRenderer {
	return &PHPRenderer{}
}

func (r *PHPRenderer) Name() string      { return "php" }
func (r *PHPRenderer) Extension() string { return ".php" }

// Reserved returns the short names imported for every class: the metadata
// attributes, the operation classes, the Assert alias and the provider and
// processor classes.
func (r *PHPRenderer) Reserved(merged *schema.MergedResourceDescription) map[string]bool {
	reserved := map[string]bool{
		"ApiResource": true,
		"ApiProperty": true,
		"Assert":      true,
	}
	for _, kind := range schema.OperationKinds {
		reserved[string(kind)] = true
	}
	for _, class := range []string{merged.Provider, merged.Processor} {
		if class != "" {
			reserved[shortClassName(class)] = true
		}
	}
	return reserved
}

// Render produces the class source
func (r *PHPRenderer) Render(m *Model) ([]byte, error) {
	w := &phpWriter{buf: &bytes.Buffer{}}

	w.header(m)
	w.line("namespace %s;", m.Namespace)
	w.line("")
	for _, use := range phpUses(m) {
		w.line("use %s;", use)
	}
	w.line("")
	w.line("%s", resourceAttribute(m))
	w.line("final class %s", m.Symbol)
	w.line("{")
	w.indent++

	for i, p := range m.Properties {
		if i > 0 {
			w.line("")
		}
		for _, attr := range propertyAttributes(m, p) {
			w.line("%s", attr)
		}
		w.line("%s", propertyDeclaration(p))
	}

	for _, p := range m.Properties {
		w.accessors(p)
	}
	w.toArray(m)
	w.fromArray(m)

	w.indent--
	w.line("}")
	return w.buf.Bytes(), nil
}

type phpWriter struct {
	buf    *bytes.Buffer
	indent int
}

func (w *phpWriter) line(format string, args ...interface{}) {
	if format == "" {
		w.buf.WriteString("\n")
		return
	}
	w.buf.WriteString(strings.Repeat("    ", w.indent))
	w.buf.WriteString(fmt.Sprintf(format, args...))
	w.buf.WriteString("\n")
}

func (w *phpWriter) header(m *Model) {
	w.line("<?php")
	w.line("")
	w.line("/**")
	if !m.GeneratedAt.IsZero() {
		w.line(" * @generated %s", m.GeneratedAt.Format("2006-01-02 15:04:05"))
		w.line(" *")
	}
	w.line(" * Source schema files:")
	if len(m.SourceFiles) == 0 {
		w.line(" * - unknown")
	}
	for _, f := range m.SourceFiles {
		w.line(" * - %s", f)
	}
	if len(m.ValidationFiles) > 0 {
		w.line(" *")
		w.line(" * Validation schema files:")
		for _, f := range m.ValidationFiles {
			w.line(" * - %s", f)
		}
	}
	w.line(" *")
	w.line(" * Documentation: https://api-platform.com/docs/core/")
	w.line(" *")
	w.line(" * !!! THIS FILE IS AUTO-GENERATED, EVERY CHANGE WILL BE LOST WITH THE NEXT RUN OF apischema generate")
	w.line(" * !!! DO NOT CHANGE ANYTHING IN THIS FILE; edit the source schema files listed above instead.")
	w.line(" */")
	w.line("")
	w.line("declare(strict_types=1);")
	w.line("")
}

func (w *phpWriter) accessors(p PropertyModel) {
	typ := nullableType(p.Type)
	method := utilstrings.UpperFirst(p.Name)

	w.line("")
	w.line("public function set%s(%s $%s): self", method, typ, p.Name)
	w.line("{")
	w.line("    $this->%s = $%s;", p.Name, p.Name)
	w.line("")
	w.line("    return $this;")
	w.line("}")
	w.line("")
	w.line("public function get%s(): %s", method, typ)
	w.line("{")
	w.line("    return $this->%s;", p.Name)
	w.line("}")
}

func (w *phpWriter) toArray(m *Model) {
	w.line("")
	w.line("/**")
	w.line(" * @return array<string, mixed>")
	w.line(" */")
	w.line("public function toArray(): array")
	w.line("{")
	if len(m.Properties) == 0 {
		w.line("    return [];")
		w.line("}")
		return
	}
	w.line("    return [")
	for _, p := range m.Properties {
		w.line("        %s => $this->%s,", phpString(p.Name), p.Name)
	}
	w.line("    ];")
	w.line("}")
}

func (w *phpWriter) fromArray(m *Model) {
	w.line("")
	w.line("/**")
	w.line(" * @param array<string, mixed> $data")
	w.line(" */")
	w.line("public static function fromArray(array $data): self")
	w.line("{")
	if len(m.Properties) == 0 {
		w.line("    return new self();")
		w.line("}")
		return
	}
	w.line("    $instance = new self();")
	for _, p := range m.Properties {
		fallback := "null"
		if p.Type == schema.TypeArray {
			fallback = "[]"
		}
		w.line("    $instance->%s = $data[%s] ?? %s;", p.Name, phpString(p.Name), fallback)
	}
	w.line("")
	w.line("    return $instance;")
	w.line("}")
}

// phpUses lists the use statements of a class in a stable order
func phpUses(m *Model) []string {
	uses := []string{apiResourceClass}

	hasAPIProperty, hasAssert := false, false
	for _, p := range m.Properties {
		if len(apiPropertyArguments(p)) > 0 {
			hasAPIProperty = true
		}
		for _, gc := range p.Constraints {
			if usesAssert(gc.Constraint) {
				hasAssert = true
			}
		}
	}
	if hasAPIProperty {
		uses = append(uses, apiPropertyClass)
	}
	if hasAssert {
		uses = append(uses, assertImport)
	}

	for _, s := range m.Symbols.Symbols() {
		if s.IsAliased() {
			uses = append(uses, fmt.Sprintf("%s as %s", s.FQCN, s.Alias))
			continue
		}
		uses = append(uses, s.FQCN)
	}

	declared := make(map[schema.OperationKind]bool)
	for _, op := range m.Operations {
		declared[op.Kind] = true
	}
	for _, kind := range schema.OperationKinds {
		if declared[kind] {
			uses = append(uses, operationPackage+string(kind))
		}
	}

	for _, class := range []string{m.Provider, m.Processor} {
		if validation.IsQualifiedName(class) {
			uses = append(uses, validation.NormalizeName(class))
		}
	}

	seen := make(map[string]bool, len(uses))
	out := uses[:0]
	for _, use := range uses {
		if !seen[use] {
			seen[use] = true
			out = append(out, use)
		}
	}
	return out
}

func usesAssert(c *validation.Constraint) bool {
	if !c.IsQualified() {
		return true
	}
	for _, nested := range c.Nested() {
		if usesAssert(nested) {
			return true
		}
	}
	return false
}

func resourceAttribute(m *Model) string {
	var parts []string

	if len(m.Operations) > 0 {
		ops := make([]string, len(m.Operations))
		for i, op := range m.Operations {
			ops[i] = operationExpression(op)
		}
		parts = append(parts, "operations: ["+strings.Join(ops, ", ")+"]")
	}
	if m.ShortName != "" {
		parts = append(parts, "shortName: "+phpString(m.ShortName))
	}
	if m.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider: %s::class", shortClassName(m.Provider)))
	}
	if m.Processor != "" {
		parts = append(parts, fmt.Sprintf("processor: %s::class", shortClassName(m.Processor)))
	}
	if m.Description != "" {
		parts = append(parts, "description: "+phpString(m.Description))
	}
	if m.Pagination != nil {
		parts = append(parts, fmt.Sprintf("paginationItemsPerPage: %d", *m.Pagination))
	}

	if len(parts) == 0 {
		return "#[ApiResource]"
	}
	return "#[ApiResource(" + strings.Join(parts, ", ") + ")]"
}

func operationExpression(op OperationModel) string {
	var args []string
	if op.Groups != nil {
		args = append(args, fmt.Sprintf("validationContext: ['groups' => %s]", phpStringList(op.Groups)))
	}
	if op.Security != "" {
		args = append(args, "security: "+phpString(op.Security))
	}
	return fmt.Sprintf("new %s(%s)", op.Kind, strings.Join(args, ", "))
}

func apiPropertyArguments(p PropertyModel) []string {
	var args []string
	if p.Description != "" {
		args = append(args, "description: "+phpString(p.Description))
	}
	if !p.Writable {
		args = append(args, "writable: false")
	}
	if !p.Readable {
		args = append(args, "readable: false")
	}
	if p.Identifier {
		args = append(args, "identifier: true")
	}
	if p.Required {
		args = append(args, "required: true")
	}
	if p.OpenAPIContext != nil && p.OpenAPIContext.Len() > 0 {
		args = append(args, "openapiContext: "+phpValue(p.OpenAPIContext, nil))
	}
	return args
}

func propertyAttributes(m *Model, p PropertyModel) []string {
	var attrs []string
	if args := apiPropertyArguments(p); len(args) > 0 {
		attrs = append(attrs, "#[ApiProperty("+strings.Join(args, ", ")+")]")
	}
	for _, gc := range p.Constraints {
		args := constraintArguments(gc.Constraint, m.Symbols)
		args = append(args, "groups: "+phpStringList(gc.Groups))
		attrs = append(attrs, fmt.Sprintf("#[%s(%s)]", constraintClass(gc.Constraint, m.Symbols), strings.Join(args, ", ")))
	}
	return attrs
}

func propertyDeclaration(p PropertyModel) string {
	if p.Type == schema.TypeArray {
		value := "[]"
		if p.Default != nil {
			value = phpValue(p.Default, nil)
		}
		return fmt.Sprintf("public array $%s = %s;", p.Name, value)
	}

	value := "null"
	if p.Default != nil {
		value = phpValue(p.Default, nil)
	}
	return fmt.Sprintf("public %s $%s = %s;", nullableType(p.Type), p.Name, value)
}

func constraintClass(c *validation.Constraint, symbols *SymbolTable) string {
	if c.IsQualified() {
		return symbols.Alias(c.Name)
	}
	return `Assert\` + c.Name
}

func constraintArguments(c *validation.Constraint, symbols *SymbolTable) []string {
	var args []string
	if c.Argument != nil {
		args = append(args, phpValue(c.Argument, symbols))
	}
	if c.Params != nil {
		for pair := c.Params.Oldest(); pair != nil; pair = pair.Next() {
			args = append(args, fmt.Sprintf("%s: %s", pair.Key, phpValue(pair.Value, symbols)))
		}
	}
	return args
}

func constraintExpression(c *validation.Constraint, symbols *SymbolTable) string {
	return fmt.Sprintf("new %s(%s)", constraintClass(c, symbols), strings.Join(constraintArguments(c, symbols), ", "))
}

func phpValue(v any, symbols *SymbolTable) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return phpString(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case *validation.Constraint:
		return constraintExpression(t, symbols)
	case []*validation.Constraint:
		items := make([]string, len(t))
		for i, c := range t {
			items[i] = constraintExpression(c, symbols)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []any:
		items := make([]string, len(t))
		for i, item := range t {
			items[i] = phpValue(item, symbols)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *document.Map:
		items := make([]string, 0, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			items = append(items, fmt.Sprintf("%s => %s", phpString(pair.Key), phpValue(pair.Value, symbols)))
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return phpString(fmt.Sprint(t))
	}
}

func phpString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "'" + escaped + "'"
}

func phpStringList(values []string) string {
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = phpString(v)
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func nullableType(typ string) string {
	php, ok := phpTypes[typ]
	if !ok || php == "mixed" {
		return "mixed"
	}
	if php == "array" {
		return "array"
	}
	return "?" + php
}

func shortClassName(class string) string {
	name := validation.NormalizeName(class)
	if i := strings.LastIndex(name, `\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
