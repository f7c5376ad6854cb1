package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/pipeline"
	"github.com/conduit-lang/apischema/internal/schema/finder"
)

func TestFormatError(t *testing.T) {
	out := FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "api type not found",
		Problem:      "backnd",
		Details:      []string{"Api type 'backnd' is not configured."},
		Suggestions:  []string{"backend"},
		HelpCommands: []string{"List discovered types: apischema debug --list"},
		NoColor:      true,
	})

	assert.Contains(t, out, "❌ API TYPE NOT FOUND: backnd\n")
	assert.Contains(t, out, "   Api type 'backnd' is not configured.\n")
	assert.Contains(t, out, "   Did you mean: backend?\n")
	assert.Contains(t, out, "   → List discovered types: apischema debug --list\n")
}

func TestFormatErrorLevels(t *testing.T) {
	assert.Contains(t, Warning("careful", true), "⚠️ careful")
	assert.Contains(t, Info("note", true), "ℹ️ note")
	assert.Equal(t, "✓ done", FormatSuccess("done", true))
}

func TestAPITypeNotFoundError(t *testing.T) {
	out := APITypeNotFoundError("storefrnt", []string{"backend", "storefront"}, true)

	assert.Contains(t, out, "API TYPE NOT FOUND: storefrnt")
	assert.Contains(t, out, "configured: backend, storefront")
	assert.Contains(t, out, "Did you mean: storefront?")
}

func TestConfigError(t *testing.T) {
	out := ConfigError(errors.New("renderer must be one of json, php, got: twig"), true)
	assert.Contains(t, out, "CONFIGURATION ERROR: renderer must be one of json, php, got: twig")
	assert.Contains(t, out, "cat apischema.yml")
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer

	WriteEvent(&buf, pipeline.Event{
		Status:   pipeline.StatusGenerated,
		Resource: "customers",
		File:     "out/Backend/CustomersBackendResource.php",
	}, false, true)
	WriteEvent(&buf, pipeline.Event{Status: pipeline.StatusValidated, Resource: "orders"}, false, true)

	violation := apierrors.NewInvalidPagination("orders", 0).WithSuggestion("Use a positive integer")
	WriteEvent(&buf, pipeline.Event{
		Status:  pipeline.StatusError,
		Message: "Validation failed for resource orders",
		Errors:  apierrors.ErrorList{violation},
	}, true, true)

	out := buf.String()
	assert.Contains(t, out, "  ✓ customers → out/Backend/CustomersBackendResource.php\n")
	assert.Contains(t, out, "  ✓ orders (valid)\n")
	assert.Contains(t, out, "  ✗ Validation failed for resource orders\n")
	assert.Contains(t, out, "    • "+apierrors.FormatCompact(violation)+"\n")
	assert.Contains(t, out, "      Use a positive integer\n")
}

func TestWriteEventListsContributingFiles(t *testing.T) {
	ev := pipeline.Event{
		Status:          pipeline.StatusGenerated,
		Resource:        "customers",
		File:            "out/Backend/CustomersBackendResource.php",
		SourceFiles:     []string{"core/customers.resource.yml", "pyz/customers.resource.yml"},
		ValidationFiles: []string{"pyz/customers.validation.yml"},
	}

	var verbose bytes.Buffer
	WriteEvent(&verbose, ev, true, true)
	assert.Equal(t, "  ✓ customers → out/Backend/CustomersBackendResource.php\n"+
		"      source: core/customers.resource.yml\n"+
		"      source: pyz/customers.resource.yml\n"+
		"      validation: pyz/customers.validation.yml\n", verbose.String())

	var quiet bytes.Buffer
	WriteEvent(&quiet, ev, false, true)
	assert.NotContains(t, quiet.String(), "source:")
}

func TestWriteEventQuiet(t *testing.T) {
	var buf bytes.Buffer
	WriteEvent(&buf, pipeline.Event{
		Status:  pipeline.StatusError,
		Message: "boom",
		Errors:  apierrors.ErrorList{apierrors.NewNoOperations("orders")},
	}, false, true)

	assert.Equal(t, "  ✗ boom\n", buf.String())
}

func TestWriteDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	WriteDiagnostics(&buf, &pipeline.Diagnostics{
		Diagnostics: finder.Diagnostics{
			APIType:            "storefront",
			ConfiguredSources:  []string{"/app/src/Pyz"},
			SearchPattern:      "{OrganizationName}/{ModuleName}/resources/api/storefront",
			SkippedDirectories: []string{"/app/src/Missing"},
		},
		FailedMerges: []pipeline.Failure{{Resource: "orders", Error: "conflict"}},
	}, true)

	out := buf.String()
	assert.Contains(t, out, "Diagnostics\n")
	assert.Contains(t, out, "API type:")
	assert.Contains(t, out, "storefront")
	assert.Contains(t, out, "Skipped directories (missing):\n  • /app/src/Missing\n")
	assert.Contains(t, out, "Failed merges:\n  • orders: conflict\n")
	assert.NotContains(t, out, "Failed schema files")

	buf.Reset()
	WriteDiagnostics(&buf, nil, true)
	assert.Empty(t, buf.String())
}
