// Package generator turns merged resource descriptions into artifacts: a
// language-neutral model with resolved constraint symbols, rendered by a
// pluggable renderer and written below the generated directory.
package generator

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema"
	utilstrings "github.com/conduit-lang/apischema/internal/util/strings"
)

// Artifact is one rendered resource
type Artifact struct {
	Resource  string
	Symbol    string
	Namespace string
	// Path is where the artifact is (or would be) written
	Path    string
	Content []byte
}

// Generator renders merged resources with one renderer
type Generator struct {
	generatedDir string
	renderer     Renderer
	logger       *zap.Logger
	clock        func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithRenderer sets the renderer (default: php)
func WithRenderer(r Renderer) Option {
	return func(g *Generator) {
		g.renderer = r
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithClock sets the time source for artifact headers. A nil clock omits
// the timestamp.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		g.clock = clock
	}
}

// New creates a generator writing below generatedDir
func New(generatedDir string, opts ...Option) *Generator {
	g := &Generator{
		generatedDir: generatedDir,
		renderer:     NewPHPRenderer(),
		logger:       zap.NewNop(),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Renderer returns the configured renderer
func (g *Generator) Renderer() Renderer {
	return g.renderer
}

// OutputDir returns the directory artifacts of apiType are written to
func (g *Generator) OutputDir(apiType string) string {
	return filepath.Join(g.generatedDir, utilstrings.NormalizeAPITypeForGeneration(apiType))
}

// SymbolName returns the artifact symbol of a resource:
// {Resource}{ApiType}Resource.
func SymbolName(resourceName, apiType string) (string, error) {
	name, err := utilstrings.NormalizeResourceName(resourceName)
	if err != nil {
		reason := err.Error()
		var invalid *utilstrings.ErrInvalidName
		if errors.As(err, &invalid) {
			reason = invalid.Reason
		}
		return "", apierrors.NewInvalidResourceName(resourceName, reason).WithCause(err)
	}

	typ := utilstrings.NormalizeAPITypeForGeneration(apiType)
	if !utilstrings.IsIdentifier(typ) {
		return "", apierrors.NewInvalidAPIType(apiType)
	}

	return name + typ + "Resource", nil
}

// Build assembles the artifact model without rendering it
func (g *Generator) Build(merged *schema.MergedResourceDescription, apiType string) (*Model, error) {
	symbol, err := SymbolName(merged.Identifier(), apiType)
	if err != nil {
		var pe *apierrors.PipelineError
		if errors.As(err, &pe) {
			pe.WithFile(merged.SourceFile)
		}
		return nil, err
	}

	m, err := buildModel(merged, symbol, utilstrings.NormalizeAPITypeForGeneration(apiType), g.renderer.Reserved)
	if err != nil {
		var pe *apierrors.PipelineError
		if errors.As(err, &pe) {
			pe.WithFile(merged.SourceFile)
		}
		return nil, err
	}
	if g.clock != nil {
		m.GeneratedAt = g.clock()
	}
	return m, nil
}

// Render builds and renders an artifact without writing it
func (g *Generator) Render(merged *schema.MergedResourceDescription, apiType string) (*Artifact, error) {
	m, err := g.Build(merged, apiType)
	if err != nil {
		return nil, err
	}

	content, err := g.renderer.Render(m)
	if err != nil {
		return nil, apierrors.NewRenderFailed(m.Resource, g.renderer.Name(), err).WithFile(merged.SourceFile)
	}

	return &Artifact{
		Resource:  m.Resource,
		Symbol:    m.Symbol,
		Namespace: m.Namespace,
		Path:      filepath.Join(g.OutputDir(apiType), m.Symbol+g.renderer.Extension()),
		Content:   content,
	}, nil
}

// Generate renders an artifact and writes it to disk
func (g *Generator) Generate(merged *schema.MergedResourceDescription, apiType string) (*Artifact, error) {
	artifact, err := g.Render(merged, apiType)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(artifact.Path), 0755); err != nil {
		return nil, apierrors.NewWriteFailed(artifact.Resource, artifact.Path, err)
	}
	if err := os.WriteFile(artifact.Path, artifact.Content, 0644); err != nil {
		return nil, apierrors.NewWriteFailed(artifact.Resource, artifact.Path, err)
	}

	g.logger.Debug("artifact written",
		zap.String("resource", artifact.Resource),
		zap.String("symbol", artifact.Symbol),
		zap.String("path", artifact.Path),
		zap.Int("bytes", len(artifact.Content)),
	)

	return artifact, nil
}
