package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearRemovesGeneratedResources(t *testing.T) {
	dir := newProject(t)
	_, err := execute(t, dir, "generate")
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(dir, "generated", "Backend"))

	out, err := execute(t, dir, "clear")
	require.NoError(t, err)

	assert.Contains(t, out, "removed "+filepath.Join(dir, "generated", "Backend"))
	assert.Contains(t, out, "✓ Cleared 1 api type(s)")
	assert.NoDirExists(t, filepath.Join(dir, "generated", "Backend"))

	out, err = execute(t, dir, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to clear")
}

func TestWarmupGeneratesEveryAPIType(t *testing.T) {
	dir := newProject(t, "backend", "storefront")

	out, err := execute(t, dir, "warmup")
	require.NoError(t, err)

	assert.Contains(t, out, "API TYPE")
	assert.Regexp(t, `backend\s+2\s+0`, out)
	assert.Regexp(t, `storefront\s+0\s+1`, out)
	assert.Contains(t, out, "  ✗ ")

	assert.FileExists(t, filepath.Join(dir, "generated", "Backend", "OrdersBackendResource.php"))
	assert.DirExists(t, filepath.Join(dir, "generated", "Storefront"))
}
