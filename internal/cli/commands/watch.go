package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/apischema/internal/cli/ui"
	"github.com/conduit-lang/apischema/internal/pipeline"
	"github.com/conduit-lang/apischema/internal/schema/finder"
	"github.com/conduit-lang/apischema/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var (
		debounce time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [api-type]",
		Short: "Regenerate an api type whenever its schema files change",
		Long: `Watch the schema directories of an api type and regenerate it on every
change to a resource or validation schema file.

Examples:
  apischema watch backend
  apischema watch storefront --debounce 500ms`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			apiType := ""
			switch {
			case len(args) == 1:
				apiType, err = e.resolveAPIType(args[0], false)
				if err != nil {
					return err
				}
			case len(e.cfg.APITypes) > 0:
				apiType = e.cfg.APITypes[0]
			default:
				return fmt.Errorf("no api types configured, pass an api type argument")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, e, apiType, debounce, verbose)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every generated resource")

	return cmd
}

// runWatch generates apiType once, then again after every batch of schema
// changes until ctx is done.
func runWatch(ctx context.Context, e *env, apiType string, debounce time.Duration, verbose bool) error {
	o, err := e.orchestrator()
	if err != nil {
		return err
	}

	dirs, err := o.Finder().Directories(apiType)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no schema directories found for api type %q", apiType)
	}

	regenerate := func(files []string) error {
		e.logger.Info("schema files changed", zap.Strings("files", files))
		generateAPIType(e, o, apiType, pipeline.Options{}, verbose)
		return nil
	}

	isSchema := func(path string) bool {
		return finder.IsResourceFile(path) || finder.IsValidationFile(path)
	}

	watcher, err := watch.NewFileWatcher(isSchema, regenerate,
		watch.WithLogger(e.logger),
		watch.WithDebounce(debounce),
	)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	generateAPIType(e, o, apiType, pipeline.Options{}, verbose)

	if err := watcher.Start(dirs); err != nil {
		return err
	}

	fmt.Fprintln(e.out)
	ui.Color(e.noColor, color.FgCyan, color.Bold).Fprintf(e.out, "Watching %d schema director(ies) for api type %s\n", len(dirs), apiType)
	ui.Color(e.noColor, color.FgYellow).Fprintln(e.out, "Press Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(e.out, "\nStopping watcher...")
	return nil
}
