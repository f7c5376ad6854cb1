package generator

import (
	"sort"
	"strings"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema/validation"
)

// Symbol is one fully-qualified constraint class imported by an artifact
type Symbol struct {
	FQCN      string `json:"fqcn"`
	ShortName string `json:"short_name"`
	Alias     string `json:"alias"`

	namespace []string
}

// IsAliased reports whether the import needs an explicit alias
func (s Symbol) IsAliased() bool {
	return s.Alias != s.ShortName
}

func newSymbol(name string) Symbol {
	fqcn := validation.NormalizeName(name)
	parts := strings.Split(fqcn, `\`)
	short := parts[len(parts)-1]
	return Symbol{
		FQCN:      fqcn,
		ShortName: short,
		Alias:     short,
		namespace: parts[:len(parts)-1],
	}
}

func (s Symbol) vendor() string {
	if len(s.namespace) == 0 {
		return ""
	}
	return s.namespace[0]
}

// disambiguator is the namespace segment used when a vendor ships two
// classes with the same short name: the third segment, else the second.
func (s Symbol) disambiguator() string {
	switch {
	case len(s.namespace) >= 3:
		return s.namespace[2]
	case len(s.namespace) >= 2:
		return s.namespace[1]
	default:
		return ""
	}
}

// SymbolTable maps fully-qualified constraint names to import aliases. A
// table is built for one artifact and never shared.
type SymbolTable struct {
	symbols map[string]Symbol
}

// Alias returns the alias a constraint name renders with. Unknown names
// fall back to their short name.
func (t *SymbolTable) Alias(name string) string {
	fqcn := validation.NormalizeName(name)
	if t != nil {
		if s, ok := t.symbols[fqcn]; ok {
			return s.Alias
		}
	}
	return newSymbol(fqcn).ShortName
}

// Symbols returns every resolved symbol sorted by fully-qualified name
func (t *SymbolTable) Symbols() []Symbol {
	if t == nil {
		return nil
	}
	out := make([]Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FQCN < out[j].FQCN })
	return out
}

// Len returns the number of resolved symbols
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols)
}

// ResolveSymbols assigns a unique alias to every fully-qualified name.
//
// A short name used by one class stays as is unless it collides with a
// reserved import, in which case the vendor segment is prefixed. Short names
// shared by several classes are prefixed with the vendor; classes sharing
// both vendor and short name also get a disambiguating namespace segment.
func ResolveSymbols(resource string, names []string, reserved map[string]bool) (*SymbolTable, error) {
	table := &SymbolTable{symbols: make(map[string]Symbol)}
	for _, name := range names {
		s := newSymbol(name)
		if _, ok := table.symbols[s.FQCN]; !ok {
			table.symbols[s.FQCN] = s
		}
	}

	byShort := make(map[string][]string)
	for fqcn, s := range table.symbols {
		byShort[s.ShortName] = append(byShort[s.ShortName], fqcn)
	}

	for short, fqcns := range byShort {
		sort.Strings(fqcns)

		if len(fqcns) == 1 {
			s := table.symbols[fqcns[0]]
			if reserved[short] {
				s.Alias = s.vendor() + short
				table.symbols[s.FQCN] = s
			}
			continue
		}

		byVendor := make(map[string][]string)
		for _, fqcn := range fqcns {
			v := table.symbols[fqcn].vendor()
			byVendor[v] = append(byVendor[v], fqcn)
		}
		for vendor, group := range byVendor {
			for _, fqcn := range group {
				s := table.symbols[fqcn]
				if len(group) == 1 {
					s.Alias = vendor + short
				} else {
					s.Alias = vendor + s.disambiguator() + short
				}
				table.symbols[fqcn] = s
			}
		}
	}

	if err := table.ensureUnique(resource, reserved); err != nil {
		return nil, err
	}
	return table, nil
}

// ensureUnique falls back to the full namespace for aliases that still
// collide, and fails when even that is ambiguous.
func (t *SymbolTable) ensureUnique(resource string, reserved map[string]bool) error {
	claims := t.claims()
	for alias, fqcns := range claims {
		if len(fqcns) < 2 && !reserved[alias] {
			continue
		}
		for _, fqcn := range fqcns {
			s := t.symbols[fqcn]
			s.Alias = strings.Join(s.namespace, "") + s.ShortName
			t.symbols[fqcn] = s
		}
	}

	for alias, fqcns := range t.claims() {
		if len(fqcns) > 1 || reserved[alias] {
			return apierrors.NewAliasCollision(resource, alias, fqcns)
		}
	}
	return nil
}

func (t *SymbolTable) claims() map[string][]string {
	claims := make(map[string][]string)
	for fqcn, s := range t.symbols {
		claims[s.Alias] = append(claims[s.Alias], fqcn)
	}
	for _, fqcns := range claims {
		sort.Strings(fqcns)
	}
	return claims
}

// collectQualified walks constraint lists, nested tokens included, and
// returns every fully-qualified constraint name.
func collectQualified(lists ...[]*validation.Constraint) []string {
	var names []string
	var walk func([]*validation.Constraint)
	walk = func(list []*validation.Constraint) {
		for _, c := range list {
			if c.IsQualified() {
				names = append(names, c.NormalizedName())
			}
			walk(c.Nested())
		}
	}
	for _, list := range lists {
		walk(list)
	}
	return names
}
