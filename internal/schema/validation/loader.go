package validation

import (
	"errors"
	"fmt"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema/document"
)

// Loader reads validation schema files. The document root maps an operation
// (http method or operation kind, case-insensitive) to properties, and each
// property to a list of constraint tokens:
//
//	post:
//	  email:
//	    - NotBlank
//	    - Email
//	patch:
//	  email:
//	    - Optional:
//	        constraints: [Email]
type Loader struct{}

// NewLoader creates a validation schema loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads one validation file into a table. An empty file yields an empty table.
func (l *Loader) Load(path string) (*Table, error) {
	raw, err := document.DecodeFile(path)
	if err != nil {
		var syntaxErr *document.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, apierrors.NewMalformedYAML(path, syntaxErr.Line, syntaxErr.Err)
		}
		return nil, apierrors.NewFileUnreadable(path, err)
	}
	return l.Parse(path, raw)
}

// Parse converts a decoded validation document into a table
func (l *Loader) Parse(path string, raw any) (*Table, error) {
	table := NewTable()
	if raw == nil {
		return table, nil
	}

	root, ok := document.AsMap(raw)
	if !ok {
		return nil, apierrors.NewInvalidValidationFile(path, fmt.Sprintf("root must be a mapping, got %T", raw))
	}

	for op := root.Oldest(); op != nil; op = op.Next() {
		if op.Value == nil {
			continue
		}
		props, ok := document.AsMap(op.Value)
		if !ok {
			return nil, apierrors.NewInvalidValidationFile(path,
				fmt.Sprintf("operation %q must map property names to constraint lists", op.Key))
		}

		for prop := props.Oldest(); prop != nil; prop = prop.Next() {
			field := op.Key + "." + prop.Key
			if prop.Value == nil {
				table.Set(op.Key, prop.Key, []*Constraint{})
				continue
			}
			list, ok := document.AsList(prop.Value)
			if !ok {
				return nil, apierrors.NewInvalidConstraint(path, field, "constraints must be a list")
			}
			constraints, err := ParseConstraintList(list)
			if err != nil {
				return nil, apierrors.NewInvalidConstraint(path, field, err.Error())
			}
			table.Add(op.Key, prop.Key, constraints...)
		}
	}

	return table, nil
}
