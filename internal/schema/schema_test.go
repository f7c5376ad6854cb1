package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/apischema/internal/schema/validation"
)

func TestLayerOrdering(t *testing.T) {
	assert.Equal(t, 0, LayerCore.Rank())
	assert.Equal(t, 1, LayerFeature.Rank())
	assert.Equal(t, 2, LayerProject.Rank())
	assert.Equal(t, -1, Layer("vendor").Rank())

	assert.True(t, LayerFeature.Valid())
	assert.False(t, Layer("").Valid())
	assert.Equal(t, "PROJECT", LayerProject.Label())
}

func TestParseLayer(t *testing.T) {
	l, err := ParseLayer(" Project ")
	require.NoError(t, err)
	assert.Equal(t, LayerProject, l)

	_, err = ParseLayer("vendor")
	assert.Error(t, err)
}

func TestLayerResolver(t *testing.T) {
	r := DefaultLayerResolver()

	tests := []struct {
		path     string
		expected Layer
	}{
		{"/app/src/Pyz/Glue/Customers/resources/api/backend/customers.resource.yml", LayerProject},
		{"/app/vendor/spryker-feature/SprykerFeature/Glue/Customers/resources/api/backend/customers.resource.yml", LayerFeature},
		{"/app/vendor/spryker/customer/src/Spryker/Glue/Customers/resources/api/backend/customers.resource.yml", LayerCore},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, r.Resolve(tt.path), tt.path)
	}
}

func TestLayerResolverCustomMarkers(t *testing.T) {
	r := NewLayerResolver([]string{"/Acme/"}, []string{"/Features/"})

	assert.Equal(t, LayerProject, r.Resolve("/src/Acme/x.resource.yml"))
	assert.Equal(t, LayerFeature, r.Resolve("/src/Features/x.resource.yml"))
	assert.Equal(t, LayerCore, r.Resolve("/src/Pyz/x.resource.yml"))
}

func TestNormalizePropertyType(t *testing.T) {
	assert.Equal(t, "integer", NormalizePropertyType("int"))
	assert.Equal(t, "boolean", NormalizePropertyType(" Bool "))
	assert.Equal(t, "string", NormalizePropertyType("STR"))
	assert.Equal(t, "array", NormalizePropertyType("arr"))
	assert.Equal(t, "object", NormalizePropertyType("Object"))
	assert.Equal(t, "text", NormalizePropertyType("text"))

	assert.True(t, IsPropertyType("mixed"))
	assert.False(t, IsPropertyType("text"))
}

func TestOperationKind(t *testing.T) {
	assert.True(t, OperationGetCollection.Valid())
	assert.False(t, OperationKind("get").Valid())
	assert.False(t, OperationKind("Head").Valid())
	assert.Len(t, OperationKindNames(), 6)
}

func TestPropertyDefaults(t *testing.T) {
	p := &PropertyDescription{Name: "id"}

	assert.Equal(t, "string", p.EffectiveType())
	assert.True(t, p.IsWritable())
	assert.True(t, p.IsReadable())
	assert.False(t, p.IsIdentifier())
	assert.False(t, p.IsRequired())
	assert.Equal(t, "", p.DescriptionText())

	p.Writable = BoolPtr(false)
	p.Type = TypeInteger
	assert.False(t, p.IsWritable())
	assert.Equal(t, "integer", p.EffectiveType())
}

func TestResourceCloneIsDeep(t *testing.T) {
	r := NewResourceDescription("orders")
	r.Name = "orders"
	r.Properties.Set("id", &PropertyDescription{Name: "id", Identifier: BoolPtr(true)})
	r.Operations.Set(OperationPost, &OperationDescription{Kind: OperationPost, ValidationGroups: []string{"a"}})
	r.PaginationItemsPerPage = IntPtr(10)
	table := validation.NewTable()
	table.Add("post", "id", validation.NewConstraint("NotBlank"))
	r.Validation = []*validation.Table{table}

	clone := r.Clone()

	id, _ := clone.Property("id")
	*id.Identifier = false
	post, _ := clone.Operations.Get(OperationPost)
	post.ValidationGroups[0] = "b"
	*clone.PaginationItemsPerPage = 20
	clone.Validation[0].Add("post", "id", validation.NewConstraint("Uuid"))

	original, _ := r.Property("id")
	assert.True(t, original.IsIdentifier())
	origPost, _ := r.Operations.Get(OperationPost)
	assert.Equal(t, []string{"a"}, origPost.ValidationGroups)
	assert.Equal(t, 10, *r.PaginationItemsPerPage)
	assert.Len(t, r.Validation[0].Get("post", "id"), 1)
}

func TestResourceAccessors(t *testing.T) {
	r := NewResourceDescription("orders")
	assert.Equal(t, "orders", r.Identifier())
	assert.Equal(t, "", r.DisplayName())

	r.Name = "Order"
	assert.Equal(t, "Order", r.DisplayName())
	r.ShortName = "OrderResource"
	assert.Equal(t, "OrderResource", r.DisplayName())

	r.Properties.Set("b", &PropertyDescription{Name: "b"})
	r.Properties.Set("a", &PropertyDescription{Name: "a"})
	assert.Equal(t, []string{"b", "a"}, r.PropertyNames())

	r.Operations.Set(OperationGet, &OperationDescription{Kind: OperationGet})
	assert.True(t, r.HasOperation(OperationGet))
	assert.False(t, r.HasOperation(OperationDelete))
}

func TestMergedAccessors(t *testing.T) {
	var empty *MergedResourceDescription
	assert.True(t, empty.IsEmpty())

	m := &MergedResourceDescription{
		ResourceDescription: NewResourceDescription("orders"),
		Sources: []Source{
			{Layer: LayerCore, Files: []string{"a.yml"}},
			{Layer: LayerProject, Files: []string{"b.yml", "c.yml"}},
		},
	}
	assert.False(t, m.IsEmpty())
	assert.Equal(t, []string{"a.yml", "b.yml", "c.yml"}, m.SourceFiles())
	assert.Equal(t, LayerProject, m.TopLayer())
}

func TestMergedDump(t *testing.T) {
	r := NewResourceDescription("orders")
	r.Name = "orders"
	r.ShortName = "Order"
	r.PaginationItemsPerPage = IntPtr(25)
	r.Properties.Set("reference", &PropertyDescription{
		Name:        "reference",
		Type:        TypeString,
		Description: StringPtr("Order reference"),
		Required:    BoolPtr(true),
	})
	r.Properties.Set("id", &PropertyDescription{Name: "id", Type: TypeInteger, Identifier: BoolPtr(true)})
	r.Operations.Set(OperationGet, &OperationDescription{Kind: OperationGet})
	r.Operations.Set(OperationPost, &OperationDescription{Kind: OperationPost, ValidationGroups: []string{"create"}})

	table := validation.NewTable()
	table.Add("post", "reference", validation.NewConstraint("NotBlank"))

	m := &MergedResourceDescription{
		ResourceDescription: r,
		Sources:             []Source{{Layer: LayerCore, Files: []string{"core/orders.resource.yml"}}},
		Constraints:         table,
	}

	out, err := m.Dump()
	require.NoError(t, err)

	dump := string(out)
	assert.True(t, strings.HasPrefix(dump, "resource:\n    name: orders\n    shortName: Order\n    paginationItemsPerPage: 25\n"))
	assert.Contains(t, dump, "        reference:\n            type: string\n            description: Order reference\n            required: true\n")
	assert.Contains(t, dump, "        Get: {}\n")
	assert.Contains(t, dump, "- create")
	assert.Contains(t, dump, "validation:\n    post:\n        reference:\n")
	assert.Contains(t, dump, "- NotBlank")
	assert.Contains(t, dump, "layer: core")
	assert.Less(t, strings.Index(dump, "reference:"), strings.Index(dump, "id:"))
	assert.Less(t, strings.Index(dump, "validation:"), strings.Index(dump, "sources:"))
}
