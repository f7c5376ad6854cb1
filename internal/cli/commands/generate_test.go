package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conduit-lang/apischema/internal/cli/config"
	"github.com/conduit-lang/apischema/internal/pipeline"
)

func TestNewGenerateCommand(t *testing.T) {
	cmd := NewGenerateCommand()

	assert.Equal(t, "generate [api-type]", cmd.Use)
	assert.Contains(t, cmd.Aliases, "g")
	for _, flag := range []string{"dry-run", "validate-only", "resource", "verbose", "no-interaction"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}

func TestGenerateWritesResources(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, dir, "generate", "-v")
	require.NoError(t, err)

	assert.Contains(t, out, "Generating API resources for api type: backend")
	assert.Contains(t, out, "  ✓ customers → ")
	assert.Contains(t, out, "  ✓ orders → ")
	assert.Contains(t, out, "      source: "+schemaPath(dir, "Pyz", "Customers", "customers.resource.yml"))
	assert.Contains(t, out, "      validation: "+schemaPath(dir, "Pyz", "Customers", "customers.validation.yml"))
	assert.Contains(t, out, "✓ backend: generated 2 file(s)")

	code, err := os.ReadFile(filepath.Join(dir, "generated", "Backend", "CustomersBackendResource.php"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "CustomersBackendResource")
}

func TestGenerateVerboseHonorsNoColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	cfg, err := config.LoadFrom(newProject(t))
	require.NoError(t, err)

	var out bytes.Buffer
	e := &env{cfg: cfg, logger: zap.NewNop(), out: &out, noColor: true}
	o, err := e.orchestrator()
	require.NoError(t, err)

	require.True(t, generateAPIType(e, o, "backend", pipeline.Options{DryRun: true}, true))
	assert.Contains(t, out.String(), "Generating API resources for api type: backend (dry-run)")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestGenerateAlias(t *testing.T) {
	out, err := execute(t, newProject(t), "g", "BACKEND")
	require.NoError(t, err)
	assert.Contains(t, out, "backend: generated 2 file(s)")
}

func TestGenerateDryRun(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, dir, "generate", "backend", "--dry-run", "-v")
	require.NoError(t, err)

	assert.Contains(t, out, "(dry-run)")
	assert.Contains(t, out, "backend: would generate 2 file(s)")
	assert.NoDirExists(t, filepath.Join(dir, "generated", "Backend"))
}

func TestGenerateValidateOnly(t *testing.T) {
	dir := newProject(t)

	out, err := execute(t, dir, "generate", "--validate-only", "-r", "customers", "-v")
	require.NoError(t, err)

	assert.Contains(t, out, "  ✓ customers (valid)")
	assert.NotContains(t, out, "orders")
	assert.Contains(t, out, "backend: 1 resource(s) valid")
	assert.NoDirExists(t, filepath.Join(dir, "generated", "Backend"))
}

func TestGenerateUnknownAPITypeWithoutInteraction(t *testing.T) {
	original := askAPIType
	askAPIType = func(string, []string, string) (string, error) {
		t.Fatal("prompt must not be shown with --no-interaction")
		return "", nil
	}
	defer func() { askAPIType = original }()

	out, err := execute(t, newProject(t), "generate", "bakend", "-n")
	require.Error(t, err)

	assert.Contains(t, err.Error(), `api type "bakend" is not configured`)
	assert.Contains(t, out, "API TYPE NOT FOUND")
	assert.Contains(t, out, "Did you mean: backend?")
}

func TestGenerateUnknownAPITypePrompts(t *testing.T) {
	var gotOptions []string
	var gotDefault string

	original := askAPIType
	askAPIType = func(message string, options []string, suggested string) (string, error) {
		assert.Contains(t, message, `"bakend"`)
		gotOptions, gotDefault = options, suggested
		return "backend", nil
	}
	defer func() { askAPIType = original }()

	out, err := execute(t, newProject(t, "backend", "storefront"), "generate", "bakend")
	require.NoError(t, err)

	assert.Equal(t, []string{"backend", "storefront"}, gotOptions)
	assert.Equal(t, "backend", gotDefault)
	assert.Contains(t, out, "backend: generated 2 file(s)")
}

func TestGeneratePromptCancelled(t *testing.T) {
	original := askAPIType
	askAPIType = func(string, []string, string) (string, error) {
		return "", errors.New("interrupt")
	}
	defer func() { askAPIType = original }()

	_, err := execute(t, newProject(t), "generate", "bakend")
	require.Error(t, err)
	assert.Equal(t, "interrupt", err.Error())
}

func TestGenerateReportsFailedAPITypes(t *testing.T) {
	dir := newProject(t, "backend", "storefront")

	out, err := execute(t, dir, "generate")
	require.Error(t, err)

	assert.Equal(t, "generation failed for 1 api type(s): storefront", err.Error())
	assert.Contains(t, out, "Processing api type 1 of 2: backend")
	assert.Contains(t, out, "Processing api type 2 of 2: storefront")
	assert.Contains(t, out, "backend: generated 2 file(s)")
	assert.Contains(t, out, "Generation failed with 1 error(s):")
	assert.Contains(t, out, "Diagnostics")
	assert.NotContains(t, out, "All 2 api types generated successfully!")
}

func TestGenerateAllAPITypes(t *testing.T) {
	dir := newProject(t, "backend", "storefront")
	writeFile(t, filepath.Join(dir, "src", "Spryker", "Carts", "resources", "api", "storefront", "carts.resource.yml"), `
resource:
  name: carts
  properties:
    id:
      type: string
      identifier: true
  operations: [Get]
`)

	out, err := execute(t, dir, "generate")
	require.NoError(t, err)

	assert.Contains(t, out, "storefront: generated 1 file(s)")
	assert.Contains(t, out, "All 2 api types generated successfully!")
	assert.FileExists(t, filepath.Join(dir, "generated", "Storefront", "CartsStorefrontResource.php"))
}
