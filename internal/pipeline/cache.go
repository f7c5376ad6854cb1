package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/apischema/internal/generator"
	utilstrings "github.com/conduit-lang/apischema/internal/util/strings"
)

// Clearer removes generated artifacts
type Clearer struct {
	generator *generator.Generator
	logger    *zap.Logger
}

// NewClearer creates a clearer for the artifacts under generatedDir
func NewClearer(generatedDir string, logger *zap.Logger) *Clearer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clearer{generator: generator.New(generatedDir), logger: logger}
}

// Clear removes the output directory of every api type and returns the
// directories that existed.
func (c *Clearer) Clear(apiTypes []string) ([]string, error) {
	var removed []string
	for _, apiType := range apiTypes {
		dir := c.generator.OutputDir(apiType)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		c.logger.Info("generated artifacts removed", zap.String("api_type", apiType), zap.String("dir", dir))
		removed = append(removed, dir)
	}
	return removed, nil
}

// Warmer regenerates every api type
type Warmer struct {
	cfg  Config
	opts []Option
}

// NewWarmer creates a warmer; every api type gets its own orchestrator
// built from cfg and opts.
func NewWarmer(cfg Config, opts ...Option) *Warmer {
	return &Warmer{cfg: cfg, opts: opts}
}

// WarmUp generates all api types concurrently, then makes sure every
// output directory exists even when nothing was generated into it. Api
// types sharing an output directory are generated once, under the first
// spelling. Summaries are returned in the order of the remaining types.
func (w *Warmer) WarmUp(ctx context.Context, apiTypes []string) ([]Summary, error) {
	apiTypes = distinctOutputs(apiTypes)
	summaries := make([]Summary, len(apiTypes))

	g, ctx := errgroup.WithContext(ctx)
	for i, apiType := range apiTypes {
		g.Go(func() error {
			o, err := New(w.cfg, w.opts...)
			if err != nil {
				return err
			}

			summary := Summary{APIType: apiType}
			for e := range o.Generate(apiType, Options{}) {
				if err := ctx.Err(); err != nil {
					return err
				}
				summary.Add(e)
			}

			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := generator.New(w.cfg.GeneratedDir)
	for _, apiType := range apiTypes {
		dir := out.OutputDir(apiType)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return summaries, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return summaries, nil
}

// distinctOutputs drops api types whose output directory an earlier entry
// already claims
func distinctOutputs(apiTypes []string) []string {
	seen := make(map[string]bool, len(apiTypes))
	out := make([]string, 0, len(apiTypes))
	for _, apiType := range apiTypes {
		key := utilstrings.NormalizeAPITypeForGeneration(apiType)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, apiType)
	}
	return out
}
