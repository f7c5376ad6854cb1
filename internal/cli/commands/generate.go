package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/apischema/internal/cli/ui"
	"github.com/conduit-lang/apischema/internal/pipeline"
)

type generateFlags struct {
	dryRun        bool
	validateOnly  bool
	resource      string
	verbose       bool
	noInteraction bool
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:     "generate [api-type]",
		Aliases: []string{"g"},
		Short:   "Generate API resources from schema files",
		Long: `Generate one resource class per resource from the layered schema files.

Without an api type every configured api type is generated in turn. The
output directory of an api type is replaced on every run.

Examples:
  apischema generate
  apischema generate backend
  apischema generate storefront --dry-run -v
  apischema generate backend --validate-only -r customers`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			return runGenerate(e, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be generated without writing files")
	cmd.Flags().BoolVar(&flags.validateOnly, "validate-only", false, "Only validate schemas without generating")
	cmd.Flags().StringVarP(&flags.resource, "resource", "r", "", "Generate only the named resource")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show every generated resource")
	cmd.Flags().BoolVarP(&flags.noInteraction, "no-interaction", "n", false, "Never prompt; fail on unknown api types")

	return cmd
}

func runGenerate(e *env, args []string, flags generateFlags) error {
	apiTypes := e.cfg.APITypes
	if len(args) == 1 {
		apiType, err := e.resolveAPIType(args[0], !flags.noInteraction)
		if err != nil {
			return err
		}
		apiTypes = []string{apiType}
	}
	if len(apiTypes) == 0 {
		return fmt.Errorf("no api types configured, pass an api type argument")
	}

	o, err := e.orchestrator()
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		DryRun:       flags.dryRun,
		ValidateOnly: flags.validateOnly,
		Resource:     flags.resource,
	}

	var failed []string
	for i, apiType := range apiTypes {
		if len(apiTypes) > 1 {
			if i > 0 {
				fmt.Fprintln(e.out)
			}
			ui.Header(e.out, fmt.Sprintf("Processing api type %d of %d: %s", i+1, len(apiTypes), apiType), e.noColor)
		}

		if !generateAPIType(e, o, apiType, opts, flags.verbose) {
			failed = append(failed, apiType)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintln(e.out)
		return fmt.Errorf("generation failed for %d api type(s): %s", len(failed), strings.Join(failed, ", "))
	}

	if len(apiTypes) > 1 {
		fmt.Fprintln(e.out)
		ui.WriteSuccess(e.out, fmt.Sprintf("All %d api types generated successfully!", len(apiTypes)), e.noColor)
	}
	return nil
}

// generateAPIType runs one api type and reports whether it succeeded
func generateAPIType(e *env, o *pipeline.Orchestrator, apiType string, opts pipeline.Options, verbose bool) bool {
	if verbose {
		title := fmt.Sprintf("Generating API resources for api type: %s", apiType)
		if opts.DryRun {
			title += " (dry-run)"
		}
		if opts.ValidateOnly {
			title += " (validate-only)"
		}
		ui.Color(e.noColor, color.FgCyan, color.Bold).Fprintln(e.out, title)
	}

	summary := pipeline.Summary{APIType: apiType}
	var failures []pipeline.Event
	for ev := range o.Generate(apiType, opts) {
		summary.Add(ev)
		if ev.IsError() {
			failures = append(failures, ev)
			continue
		}
		if verbose {
			ui.WriteEvent(e.out, ev, verbose, e.noColor)
		}
	}

	if len(failures) > 0 {
		ui.WriteError(e.out, ui.ErrorOptions{
			Level:   ui.ErrorLevelError,
			Problem: fmt.Sprintf("Generation failed with %d error(s):", len(failures)),
			NoColor: e.noColor,
		})
		for _, ev := range failures {
			ui.WriteEvent(e.out, ev, true, e.noColor)
			if ev.Diagnostics != nil {
				fmt.Fprintln(e.out)
				ui.WriteDiagnostics(e.out, ev.Diagnostics, e.noColor)
			}
		}
		return false
	}

	switch {
	case opts.ValidateOnly:
		ui.WriteSuccess(e.out, fmt.Sprintf("%s: %d resource(s) valid", apiType, summary.Validated), e.noColor)
	case opts.DryRun:
		ui.WriteSuccess(e.out, fmt.Sprintf("%s: would generate %d file(s)", apiType, summary.Generated), e.noColor)
	default:
		ui.WriteSuccess(e.out, fmt.Sprintf("%s: generated %d file(s)", apiType, summary.Generated), e.noColor)
	}
	return true
}
