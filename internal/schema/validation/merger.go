package validation

// Merger combines constraint tables of several layers.
type Merger struct{}

// NewMerger creates a validation merger
func NewMerger() *Merger {
	return &Merger{}
}

// Merge walks tables in order (layer-ascending) and, per (operation,
// property), concatenates their lists and deduplicates by Identity. For a
// repeated identity the later token wins while the position of the first
// occurrence is kept; distinct tokens from earlier tables always survive.
func (m *Merger) Merge(tables ...*Table) *Table {
	var inputs []*Table
	for _, t := range tables {
		if t != nil {
			inputs = append(inputs, t)
		}
	}

	switch len(inputs) {
	case 0:
		return NewTable()
	case 1:
		return Dedupe(inputs[0])
	}

	concatenated := NewTable()
	for _, t := range inputs {
		t.Each(func(op, prop string, constraints []*Constraint) {
			concatenated.Add(op, prop, cloneList(constraints)...)
		})
	}

	return Dedupe(concatenated)
}

// Dedupe returns a copy of t with every list deduplicated
func Dedupe(t *Table) *Table {
	out := NewTable()
	t.Each(func(op, prop string, constraints []*Constraint) {
		out.Set(op, prop, DedupeList(constraints))
	})
	return out
}

// DedupeList removes repeated identities from a list: the last occurrence's
// token is kept at the first occurrence's position.
func DedupeList(constraints []*Constraint) []*Constraint {
	out := make([]*Constraint, 0, len(constraints))
	index := make(map[string]int, len(constraints))

	for _, c := range constraints {
		id := c.Identity()
		if i, seen := index[id]; seen {
			out[i] = c.Clone()
			continue
		}
		index[id] = len(out)
		out = append(out, c.Clone())
	}

	return out
}
