package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema/document"
)

func load(t *testing.T, content string) (*Document, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.resource.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return NewLoader().Load(path)
}

func codeOf(t *testing.T, err error) apierrors.ErrorCode {
	t.Helper()
	var pe *apierrors.PipelineError
	require.True(t, errors.As(err, &pe), "expected a pipeline error, got %v", err)
	return pe.Code
}

func TestLoadValidDocument(t *testing.T) {
	doc, err := load(t, `
resource:
  name: Customers
  properties:
    id:
      type: string
  operations:
    - type: Get
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "properties", "operations"}, document.Keys(doc.Resource))
	assert.Contains(t, doc.Path, "customers.resource.yml")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    apierrors.ErrorCode
	}{
		{"missing root key", "something: else\n", apierrors.ErrMissingRootKey},
		{"list root", "- resource\n", apierrors.ErrInvalidRootShape},
		{"scalar resource", "resource: customers\n", apierrors.ErrInvalidRootShape},
		{"null resource", "resource: ~\n", apierrors.ErrInvalidRootShape},
		{"empty document", "", apierrors.ErrInvalidRootShape},
		{"scalar properties", "resource:\n  properties: 3\n", apierrors.ErrInvalidSection},
		{"scalar operations", "resource:\n  operations: Get\n", apierrors.ErrInvalidSection},
		{"malformed yaml", "resource:\n  name: [unclosed\n", apierrors.ErrMalformedYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.content)
			require.Error(t, err)
			assert.Equal(t, tt.code, codeOf(t, err))
		})
	}
}

func TestLoadErrorNamesFile(t *testing.T) {
	_, err := load(t, "resource:\n  properties: true\n")
	require.Error(t, err)

	var pe *apierrors.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.File, "customers.resource.yml")
	assert.Contains(t, pe.Message, "properties")
}

func TestLoadMalformedReportsLine(t *testing.T) {
	_, err := load(t, "resource:\n  name: ok\n  bad: [x\n")
	require.Error(t, err)

	var pe *apierrors.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Greater(t, pe.Line, 0)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.resource.yml"))
	require.Error(t, err)
	assert.Equal(t, apierrors.ErrFileUnreadable, codeOf(t, err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadNullSectionsAccepted(t *testing.T) {
	doc, err := load(t, "resource:\n  properties: ~\n  operations: ~\n")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Resource.Len())
}
