package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/apischema/internal/cli/config"
)

const coreCustomers = `
resource:
  name: customers
  shortName: Customer
  provider: Spryker\Glue\Customers\Api\CustomerProvider
  properties:
    id:
      type: integer
      identifier: true
    email:
      type: string
      required: true
  operations:
    - type: Get
    - type: Post
`

const projectCustomers = `
resource:
  name: customers
  properties:
    nickname:
      type: string
  operations:
    Patch: ~
`

const projectCustomersValidation = `
post:
  email:
    - NotBlank
    - Email
`

const coreOrders = `
resource:
  name: orders
  properties:
    reference:
      type: string
  operations: [Get, GetCollection]
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func schemaPath(dir, org, module, file string) string {
	return filepath.Join(dir, "src", org, module, "resources", "api", "backend", file)
}

// newProject lays out a project with two backend resources and a config
// file naming apiTypes.
func newProject(t *testing.T, apiTypes ...string) string {
	t.Helper()
	if len(apiTypes) == 0 {
		apiTypes = []string{"backend"}
	}

	dir := t.TempDir()
	cfg := "source_directories: [src]\ngenerated_dir: generated\napi_types:\n"
	for _, apiType := range apiTypes {
		cfg += "  - " + apiType + "\n"
	}
	writeFile(t, filepath.Join(dir, "apischema.yml"), cfg)

	writeFile(t, schemaPath(dir, "Spryker", "Customers", "customers.resource.yml"), coreCustomers)
	writeFile(t, schemaPath(dir, "Pyz", "Customers", "customers.resource.yml"), projectCustomers)
	writeFile(t, schemaPath(dir, "Pyz", "Customers", "customers.validation.yml"), projectCustomersValidation)
	writeFile(t, schemaPath(dir, "Spryker", "Orders", "orders.resource.yml"), coreOrders)
	return dir
}

// execute runs the root command against the project in dir and returns
// everything written to stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--dir", dir, "--no-color"))

	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "apischema", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("dir"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("no-color"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "generate", "debug", "clear", "warmup", "watch", "completion"} {
		assert.Contains(t, names, expected)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "unknown"
	defer func() { Version, GitCommit, BuildDate = "dev", "unknown", "unknown" }()

	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)

	assert.Contains(t, out, "apischema version: 1.0.0-test")
	assert.Contains(t, out, "Git commit: abc123")
	assert.Contains(t, out, "Build date: 2025-01-01")
	assert.Contains(t, out, "Go version: "+runtime.Version())
	assert.NotContains(t, out, "\x1b[")
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "apischema")

	_, err = execute(t, t.TempDir(), "completion", "tcsh")
	assert.Error(t, err)
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "apischema.yml"), "renderer: xml\n")

	_, err := execute(t, dir, "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer must be one of json, php")
}

func TestCommandsLogLoadedConfiguration(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	original := newLogger
	newLogger = func(*config.Config) *zap.Logger { return zap.New(core) }
	defer func() { newLogger = original }()

	_, err := execute(t, newProject(t), "generate", "--dry-run")
	require.NoError(t, err)

	loaded := logs.FilterMessage("configuration loaded").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, "generated", filepath.Base(loaded[0].ContextMap()["generated_dir"].(string)))
}
