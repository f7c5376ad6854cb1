package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conduit-lang/apischema/internal/cli/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch [api-type]", cmd.Use)
	flag := cmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "100ms", flag.DefValue)
}

func TestWatchRegeneratesOnChange(t *testing.T) {
	dir := newProject(t)
	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	out := &syncBuffer{}
	e := &env{cfg: cfg, logger: zap.NewNop(), out: out, noColor: true}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, e, "backend", 20*time.Millisecond, false) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "backend: generated 2 file(s)")

	writeFile(t, schemaPath(dir, "Spryker", "Orders", "invoices.resource.yml"), `
resource:
  name: invoices
  properties:
    number:
      type: string
  operations: [Get]
`)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "backend: generated 3 file(s)")
	}, 5*time.Second, 20*time.Millisecond)
	assert.FileExists(t, filepath.Join(dir, "generated", "Backend", "InvoicesBackendResource.php"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out.String(), "Stopping watcher...")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestWatchWithoutSchemaDirectories(t *testing.T) {
	dir := newProject(t)
	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	e := &env{cfg: cfg, logger: zap.NewNop(), out: &syncBuffer{}, noColor: true}
	err = runWatch(context.Background(), e, "storefront", time.Millisecond, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no schema directories found for api type "storefront"`)
}
