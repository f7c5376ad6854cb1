package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "src/Spryker"),
		filepath.Join(dir, "src/SprykerFeature"),
		filepath.Join(dir, "src/Pyz"),
	}, cfg.SourceDirectories)
	assert.Equal(t, filepath.Join(dir, "src/Generated/Api"), cfg.GeneratedDir)
	assert.Equal(t, []string{"backend", "storefront"}, cfg.APITypes)
	assert.Equal(t, "php", cfg.Renderer)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Equal(t, []string{"/Pyz/"}, cfg.Layers.Project)
	assert.Equal(t, []string{"/SprykerFeature/"}, cfg.Layers.Feature)
	assert.Empty(t, cfg.File)

	// The package defaults must survive path resolution
	assert.Equal(t, "src/Spryker", DefaultSourceDirectories[0])
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
source_directories:
  - vendor/acme
  - /abs/project
generated_dir: build/api
api_types: [Backend]
renderer: json
debug: true
log_level: debug
layers:
  project: ["/Acme/Project/"]
  feature: ["/Acme/Features/"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apischema.yml"), []byte(content), 0644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "vendor/acme"), "/abs/project"}, cfg.SourceDirectories)
	assert.Equal(t, filepath.Join(dir, "build/api"), cfg.GeneratedDir)
	assert.Equal(t, []string{"Backend"}, cfg.APITypes)
	assert.Equal(t, "json", cfg.Renderer)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"/Acme/Project/"}, cfg.Layers.Project)
	assert.Equal(t, filepath.Join(dir, "apischema.yml"), cfg.File)

	p := cfg.Pipeline()
	assert.Equal(t, cfg.SourceDirectories, p.SourceDirectories)
	assert.Equal(t, "json", p.Renderer)
	assert.Equal(t, []string{"/Acme/Features/"}, p.FeatureMarkers)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APISCHEMA_GENERATED_DIR", "/tmp/generated")
	t.Setenv("APISCHEMA_API_TYPES", "backend storefront admin")
	t.Setenv("APISCHEMA_RENDERER", "json")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/generated", cfg.GeneratedDir)
	assert.Equal(t, []string{"backend", "storefront", "admin"}, cfg.APITypes)
	assert.Equal(t, "json", cfg.Renderer)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown renderer", "renderer: twig\n", "renderer must be one of json, php"},
		{"bad api type", "api_types: [\"back/end\"]\n", "api_types contains an invalid entry"},
		{"empty generated dir", "generated_dir: \"  \"\n", "generated_dir must not be empty"},
		{"bad log level", "log_level: loud\n", "log_level \"loud\" is not a valid level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "apischema.yml"), []byte(tt.content), 0644))

			_, err := LoadFrom(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apischema.yml"), []byte("api_types: [\n"), 0644))

	_, err := LoadFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestResolveAPIType(t *testing.T) {
	cfg := &Config{APITypes: []string{"backend", "Storefront"}}

	got, ok := cfg.ResolveAPIType("BACKEND")
	assert.True(t, ok)
	assert.Equal(t, "backend", got)

	got, ok = cfg.ResolveAPIType("storefront")
	assert.True(t, ok)
	assert.Equal(t, "Storefront", got)

	_, ok = cfg.ResolveAPIType("admin")
	assert.False(t, ok)
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "error"}
	logger := cfg.NewLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	cfg = &Config{Debug: true, LogLevel: "error"}
	assert.True(t, cfg.NewLogger().Core().Enabled(zapcore.DebugLevel))
}

func TestGetProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "Pyz")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "apischema.yaml"), []byte(""), 0644))

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(oldWd)

	got, err := GetProjectRoot()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotResolved)
}
