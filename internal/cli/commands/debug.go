package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/apischema/internal/cli/ui"
	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/generator"
	"github.com/conduit-lang/apischema/internal/pipeline"
)

// maxListedProperties bounds the property table of the details view
const maxListedProperties = 10

type debugFlags struct {
	apiType     string
	list        bool
	showMerged  bool
	showSources bool
}

// NewDebugCommand creates the debug command
func NewDebugCommand() *cobra.Command {
	var flags debugFlags

	cmd := &cobra.Command{
		Use:   "debug [resource]",
		Short: "Debug and inspect API resources",
		Long: `Inspect how a resource is assembled from its layers.

Examples:
  apischema debug --list
  apischema debug customers -t backend
  apischema debug customers -t backend --show-sources
  apischema debug customers -t backend --show-merged`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			return runDebug(e, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.apiType, "api-type", "t", "", "Api type to inspect")
	cmd.Flags().BoolVarP(&flags.list, "list", "l", false, "List all resources across api types")
	cmd.Flags().BoolVarP(&flags.showMerged, "show-merged", "m", false, "Print the merged schema as YAML")
	cmd.Flags().BoolVarP(&flags.showSources, "show-sources", "s", false, "List contributing files in priority order")

	return cmd
}

func runDebug(e *env, args []string, flags debugFlags) error {
	o, err := e.orchestrator()
	if err != nil {
		return err
	}

	apiType := flags.apiType
	if apiType != "" {
		if configured, ok := e.cfg.ResolveAPIType(apiType); ok {
			apiType = configured
		}
	}

	if flags.list {
		return listResources(e, o, apiType)
	}

	if len(args) == 0 {
		return fmt.Errorf("specify a resource name or use --list to show all resources")
	}

	if apiType == "" {
		switch len(e.cfg.APITypes) {
		case 0:
			return fmt.Errorf("no api types configured, pass --api-type")
		case 1:
			apiType = e.cfg.APITypes[0]
		default:
			return fmt.Errorf("multiple api types configured (%s), pass --api-type", strings.Join(e.cfg.APITypes, ", "))
		}
	}

	insp, err := o.Inspect(apiType, args[0])
	if err != nil {
		var notFound *pipeline.ErrResourceNotFound
		if errors.As(err, &notFound) {
			known, _ := o.Resources(apiType)
			keys := make([]string, len(known))
			for i, r := range known {
				keys[i] = r.Key
			}
			fmt.Fprint(e.out, ui.ResourceNotFoundError(args[0], apiType, keys, e.noColor))
		}
		return err
	}

	switch {
	case flags.showSources:
		ui.Header(e.out, fmt.Sprintf("Source files for resource: %s (%s)", insp.Resource, apiType), e.noColor)
		writeSources(e, insp)
		return nil
	case flags.showMerged:
		return showMerged(e, insp, apiType)
	default:
		showDetails(e, insp, apiType, o.Generator().Renderer().Extension())
		return nil
	}
}

func listResources(e *env, o *pipeline.Orchestrator, apiType string) error {
	ui.Header(e.out, "API Resources", e.noColor)

	apiTypes := []string{apiType}
	if apiType == "" {
		discovered, err := o.Finder().DiscoverAPITypes()
		if err != nil {
			return err
		}
		apiTypes = discovered
		if len(apiTypes) == 0 {
			apiTypes = e.cfg.APITypes
		}
	}

	found := 0
	for _, t := range apiTypes {
		resources, err := o.Resources(t)
		if err != nil {
			return err
		}
		if len(resources) == 0 {
			continue
		}
		found += len(resources)

		fmt.Fprintln(e.out)
		ui.Color(e.noColor, color.FgYellow, color.Bold).Fprintf(e.out, "Api type: %s (%d resources)\n", t, len(resources))
		table := ui.NewTable(e.out, []string{"RESOURCE", "SCHEMA FILES", "LAYERS"}, e.noColor)
		for _, r := range resources {
			labels := make([]string, len(r.Layers))
			for i, l := range r.Layers {
				labels[i] = l.Label()
			}
			table.AddRow(r.Key, fmt.Sprintf("%d", len(r.Files)), strings.Join(labels, ", "))
		}
		table.Render()
	}

	if found == 0 {
		fmt.Fprint(e.out, ui.Warning("No resource schema files found", e.noColor))
	}
	return nil
}

func writeSources(e *env, insp *pipeline.Inspection) {
	comment := ui.Color(e.noColor, color.FgYellow)
	fmt.Fprintln(e.out, "Source files (priority order):")
	for _, r := range insp.Records {
		fmt.Fprintf(e.out, "  ✓ %s ", r.SourceFile)
		comment.Fprintf(e.out, "(%s)\n", r.Layer.Label())
	}
	for _, r := range insp.Records {
		for _, f := range r.ValidationFiles {
			fmt.Fprintf(e.out, "  ✓ %s ", f)
			comment.Fprintf(e.out, "(%s validation)\n", r.Layer.Label())
		}
	}
	fmt.Fprintln(e.out)
}

func validationStatus(insp *pipeline.Inspection, noColor bool) string {
	green := ui.Color(noColor, color.FgGreen)
	red := ui.Color(noColor, color.FgRed)

	if insp.MergeError != nil {
		return red.Sprintf("✗ Invalid: %v", insp.MergeError)
	}
	if errs := insp.Violations.Errors(); len(errs) > 0 {
		return red.Sprintf("✗ Invalid: %d error(s)", len(errs))
	}
	return green.Sprint("✓ Valid")
}

func writeViolations(e *env, violations apierrors.ErrorList) {
	for _, v := range violations {
		ui.WritePipelineError(e.out, v, e.noColor)
	}
}

func showMerged(e *env, insp *pipeline.Inspection, apiType string) error {
	ui.Header(e.out, fmt.Sprintf("Merged schema for resource: %s (%s)", insp.Resource, apiType), e.noColor)
	fmt.Fprintf(e.out, "Validation status: %s\n", validationStatus(insp, e.noColor))
	writeViolations(e, insp.Violations)
	fmt.Fprintln(e.out)

	if insp.Merged == nil {
		return insp.MergeError
	}

	out, err := insp.Merged.Dump()
	if err != nil {
		return fmt.Errorf("failed to dump merged schema: %w", err)
	}
	fmt.Fprint(e.out, string(out))
	return nil
}

func showDetails(e *env, insp *pipeline.Inspection, apiType, ext string) {
	ui.Header(e.out, fmt.Sprintf("Resource: %s (%s)", insp.Resource, apiType), e.noColor)
	fmt.Fprintln(e.out)
	writeSources(e, insp)

	kv := ui.NewKeyValueTable(e.out, e.noColor)
	if insp.Merged != nil {
		if symbol, err := generator.SymbolName(insp.Merged.Name, apiType); err == nil {
			kv.AddRow("Generated class", symbol+ext)
		}
		if insp.Merged.ShortName != "" {
			kv.AddRow("Short name", insp.Merged.ShortName)
		}
		if insp.Merged.Provider != "" {
			kv.AddRow("Provider", insp.Merged.Provider)
		}
		if insp.Merged.Processor != "" {
			kv.AddRow("Processor", insp.Merged.Processor)
		}
	}
	kv.AddRow("Validation status", validationStatus(insp, e.noColor))
	kv.Render()
	writeViolations(e, insp.Violations)

	if insp.Merged == nil {
		return
	}

	names := insp.Merged.PropertyNames()
	fmt.Fprintln(e.out)
	ui.Header(e.out, fmt.Sprintf("Properties: %d", len(names)), e.noColor)
	if len(names) > 0 {
		table := ui.NewTable(e.out, []string{"PROPERTY", "TYPE"}, e.noColor)
		for _, name := range names[:min(len(names), maxListedProperties)] {
			p, _ := insp.Merged.Property(name)
			attrs := []string{p.EffectiveType()}
			if p.IsIdentifier() {
				attrs = append(attrs, "identifier")
			}
			if p.IsRequired() {
				attrs = append(attrs, "required")
			}
			table.AddRow(name, "("+strings.Join(attrs, ", ")+")")
		}
		if len(names) > maxListedProperties {
			table.AddRow("...", fmt.Sprintf("(%d more)", len(names)-maxListedProperties))
		}
		table.Render()
	}

	ops := insp.Merged.OperationList()
	fmt.Fprintln(e.out)
	ui.Header(e.out, fmt.Sprintf("Operations: %d", len(ops)), e.noColor)
	for _, op := range ops {
		fmt.Fprintf(e.out, "  - %s\n", op.Kind)
	}
	fmt.Fprintln(e.out)
}
