package validation

import (
	"fmt"

	"github.com/conduit-lang/apischema/internal/schema/document"
)

// ParseConstraint converts one document value into a token. Accepted forms:
//
//	NotBlank                          bare name
//	Pyz\Glue\Constraints\Iban         qualified name
//	{Length: {min: 1, max: 64}}       name with parameters
//	{Regex: '/^\d+$/'}                name with a shorthand argument
//	{NotNull: ~}                      name without options
//	{Optional: {constraints: [...]}}  composite with nested tokens
func ParseConstraint(v any) (*Constraint, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, fmt.Errorf("constraint name must not be empty")
		}
		return NewConstraint(t), nil

	case *document.Map:
		if t.Len() != 1 {
			return nil, fmt.Errorf("constraint mapping must have exactly one key, got %d", t.Len())
		}
		pair := t.Oldest()
		if pair.Key == "" {
			return nil, fmt.Errorf("constraint name must not be empty")
		}
		c := NewConstraint(pair.Key)

		switch opts := pair.Value.(type) {
		case nil:
		case *document.Map:
			for p := opts.Oldest(); p != nil; p = p.Next() {
				if p.Key == NestedKey {
					list, ok := document.AsList(p.Value)
					if !ok {
						return nil, fmt.Errorf("%s.%s must be a list of constraints", c.Name, NestedKey)
					}
					nested, err := ParseConstraintList(list)
					if err != nil {
						return nil, fmt.Errorf("%s.%s: %w", c.Name, NestedKey, err)
					}
					c.WithParam(NestedKey, nested)
					continue
				}
				c.WithParam(p.Key, document.Clone(p.Value))
			}
		default:
			c.Argument = document.Clone(opts)
		}
		return c, nil
	}

	return nil, fmt.Errorf("unsupported constraint of type %T", v)
}

// ParseConstraintList converts a document sequence into tokens
func ParseConstraintList(list []any) ([]*Constraint, error) {
	out := make([]*Constraint, 0, len(list))
	for i, item := range list {
		c, err := ParseConstraint(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
