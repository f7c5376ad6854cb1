package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/apischema/internal/schema"
)

func TestResources(t *testing.T) {
	f := newFixture(t)

	resources, err := f.orchestrator(t).Resources("Backend")
	require.NoError(t, err)
	require.Len(t, resources, 2)

	assert.Equal(t, "customers", resources[0].Key)
	assert.Equal(t, []schema.Layer{schema.LayerCore, schema.LayerProject}, resources[0].Layers)
	assert.Len(t, resources[0].Files, 2)

	assert.Equal(t, "orders", resources[1].Key)
	assert.Equal(t, []schema.Layer{schema.LayerCore}, resources[1].Layers)
}

func TestResourcesEmptyAPIType(t *testing.T) {
	f := newFixture(t)

	resources, err := f.orchestrator(t).Resources("storefront")
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestInspect(t *testing.T) {
	f := newFixture(t)

	insp, err := f.orchestrator(t).Inspect("backend", "Customers")
	require.NoError(t, err)

	assert.Equal(t, "customers", insp.Resource)
	require.Len(t, insp.Records, 2)
	assert.Equal(t, schema.LayerCore, insp.Records[0].Layer)
	assert.Equal(t, schema.LayerProject, insp.Records[1].Layer)

	require.NotNil(t, insp.Merged)
	assert.Equal(t, []string{"id", "email", "nickname"}, insp.Merged.PropertyNames())
	assert.True(t, insp.Valid())
	assert.NotEmpty(t, insp.Merged.Constraints.Get("post", "email"))
}

func TestInspectReportsViolations(t *testing.T) {
	f := newFixture(t)
	write(t, f.path("Pyz", "Orders", "orders.resource.yml"), `
resource:
  name: orders
  properties:
    reference:
      type: integer
`)

	insp, err := f.orchestrator(t).Inspect("backend", "orders")
	require.NoError(t, err)

	assert.False(t, insp.Valid())
	require.NotEmpty(t, insp.Violations)
	assert.Equal(t, "VAL213", string(insp.Violations[0].Code))
}

func TestInspectUnknownResource(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator(t).Inspect("backend", "carts")

	var notFound *ErrResourceNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "carts", notFound.Resource)
	assert.EqualError(t, err, `resource "carts" not found for api type "backend"`)
}

func TestInspectMalformedFile(t *testing.T) {
	f := newFixture(t)
	write(t, f.path("Spryker", "Broken", "broken.resource.yml"), "resource: [\n")

	_, err := f.orchestrator(t).Inspect("backend", "broken")
	assert.Error(t, err)
}
