package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/apischema/internal/cli/ui"
	"github.com/conduit-lang/apischema/internal/pipeline"
)

// NewClearCommand creates the clear command
func NewClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove generated resources of every configured api type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			removed, err := pipeline.NewClearer(e.cfg.GeneratedDir, e.logger).Clear(e.cfg.APITypes)
			for _, dir := range removed {
				fmt.Fprintf(e.out, "  removed %s\n", dir)
			}
			if err != nil {
				return err
			}

			if len(removed) == 0 {
				fmt.Fprint(e.out, ui.Info("Nothing to clear", e.noColor))
				return nil
			}
			ui.WriteSuccess(e.out, fmt.Sprintf("Cleared %d api type(s)", len(removed)), e.noColor)
			return nil
		},
	}
}

// NewWarmupCommand creates the warmup command
func NewWarmupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "warmup",
		Short: "Generate every configured api type concurrently",
		Long: `Generate every configured api type concurrently, each with its own
pipeline, and make sure every output directory exists afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			warmer := pipeline.NewWarmer(e.cfg.Pipeline(), pipeline.WithLogger(e.logger))

			var summaries []pipeline.Summary
			err = ui.WithSpinner(e.out, fmt.Sprintf("Warming up %d api type(s)", len(e.cfg.APITypes)), e.noColor, func() error {
				var werr error
				summaries, werr = warmer.WarmUp(context.Background(), e.cfg.APITypes)
				return werr
			})
			if err != nil {
				return err
			}

			table := ui.NewTable(e.out, []string{"API TYPE", "GENERATED", "ERRORS"}, e.noColor)
			for _, s := range summaries {
				table.AddRow(s.APIType, fmt.Sprintf("%d", s.Generated), fmt.Sprintf("%d", s.Errors))
			}
			table.Render()

			for _, s := range summaries {
				for _, ev := range s.Events {
					if ev.IsError() {
						ui.WriteEvent(e.out, ev, false, e.noColor)
					}
				}
			}
			return nil
		},
	}
}
