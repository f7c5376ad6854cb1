package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(constraints []*Constraint) []string {
	out := make([]string, len(constraints))
	for i, c := range constraints {
		out[i] = c.Name
	}
	return out
}

func TestMergeDeduplicatesAcrossLayers(t *testing.T) {
	core := NewTable()
	core.Add("post", "email", NewConstraint("NotBlank"), NewConstraint("Email"))

	project := NewTable()
	project.Add("post", "email", NewConstraint("NotBlank"))

	merged := NewMerger().Merge(core, project)

	assert.Equal(t, []string{"NotBlank", "Email"}, names(merged.Get("post", "email")))
}

func TestMergeIsIdempotent(t *testing.T) {
	table := NewTable()
	table.Add("post", "email",
		NewConstraint("NotBlank"),
		NewConstraint("Email"),
		NewConstraint("Length").WithParam("max", 128),
	)

	merged := NewMerger().Merge(table, table)

	got := merged.Get("post", "email")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"NotBlank", "Email", "Length"}, names(got))
}

func TestMergeKeyOrderDuplicates(t *testing.T) {
	a := NewTable()
	a.Add("patch", "name", NewConstraint("Length").WithParam("min", 1).WithParam("max", 10))

	b := NewTable()
	b.Add("patch", "name", NewConstraint("Length").WithParam("max", 10).WithParam("min", 1))

	merged := NewMerger().Merge(a, b)
	assert.Len(t, merged.Get("patch", "name"), 1)
}

func TestMergeKeepsDistinctParameterizations(t *testing.T) {
	core := NewTable()
	core.Add("post", "name", NewConstraint("Length").WithParam("max", 10))

	project := NewTable()
	project.Add("post", "name", NewConstraint("Length").WithParam("max", 20))

	merged := NewMerger().Merge(core, project)
	got := merged.Get("post", "name")
	require.Len(t, got, 2)

	first, _ := got[0].Params.Get("max")
	second, _ := got[1].Params.Get("max")
	assert.Equal(t, 10, first)
	assert.Equal(t, 20, second)
}

func TestMergeLastOccurrenceWinsAtFirstPosition(t *testing.T) {
	core := NewTable()
	core.Add("post", "iban", NewConstraint(`\Pyz\Constraints\Iban`), NewConstraint("NotBlank"))

	project := NewTable()
	project.Add("post", "iban", NewConstraint(`Pyz\Constraints\Iban`))

	got := NewMerger().Merge(core, project).Get("post", "iban")
	require.Len(t, got, 2)
	assert.Equal(t, `Pyz\Constraints\Iban`, got[0].Name)
	assert.Equal(t, "NotBlank", got[1].Name)
}

func TestMergeUnionOfPairs(t *testing.T) {
	core := NewTable()
	core.Add("post", "email", NewConstraint("Email"))
	core.Add("patch", "email", NewConstraint("Email"))

	feature := NewTable()
	feature.Add("post", "phone", NewConstraint("NotBlank"))

	merged := NewMerger().Merge(core, feature)

	assert.Equal(t, []string{"post", "patch"}, merged.Operations())
	assert.Equal(t, []string{"email", "phone"}, merged.Properties("post"))
	assert.Equal(t, []string{"Email"}, names(merged.Get("patch", "email")))
}

func TestMergeCompositesCompareWholeStructure(t *testing.T) {
	core := NewTable()
	core.Add("patch", "email",
		NewConstraint("Optional").WithParam(NestedKey, []*Constraint{NewConstraint("NotBlank"), NewConstraint("Email")}))

	project := NewTable()
	project.Add("patch", "email",
		NewConstraint("Optional").WithParam(NestedKey, []*Constraint{NewConstraint("Email")}))

	got := NewMerger().Merge(core, project).Get("patch", "email")
	assert.Len(t, got, 2)
}

func TestMergeEmptyAndSingle(t *testing.T) {
	m := NewMerger()

	assert.True(t, m.Merge().IsEmpty())
	assert.True(t, m.Merge(nil, nil).IsEmpty())

	single := NewTable()
	single.Add("post", "email", NewConstraint("Email"), NewConstraint("Email"))

	merged := m.Merge(single)
	assert.Len(t, merged.Get("post", "email"), 1)
	assert.Len(t, single.Get("post", "email"), 2, "input must not be mutated")
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	core := NewTable()
	core.Add("post", "name", NewConstraint("Length").WithParam("max", 10))

	merged := NewMerger().Merge(core, NewTable())
	merged.Get("post", "name")[0].Params.Set("max", 99)

	original, _ := core.Get("post", "name")[0].Params.Get("max")
	assert.Equal(t, 10, original)
}

func TestGroupFor(t *testing.T) {
	tests := []struct {
		operation string
		expected  string
	}{
		{"Post", "customers:create"},
		{"Patch", "customers:update"},
		{"Put", "customers:replace"},
		{"Get", "customers:get"},
		{"GetCollection", "customers:getcollection"},
		{"Delete", "customers:delete"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GroupFor(tt.operation, "Customers"))
	}
}
