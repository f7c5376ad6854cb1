package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/pipeline"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized message with suggestions and help commands
//
// Example output:
//
//	❌ API TYPE NOT FOUND: backnd
//	   Api type 'backnd' is not configured.
//
//	   Did you mean: backend?
//
//	   → List configured types: apischema debug --list
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor, bodyColor, symbol := levelStyle(opts.Level)
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Details) > 0 {
		b.WriteString("\n")
		for _, d := range opts.Details {
			bodyColor.Fprintf(&b, "   %s\n", d)
		}
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := Color(opts.NoColor, color.FgYellow)
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := Color(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

func levelStyle(level ErrorLevel) (*color.Color, *color.Color, string) {
	switch level {
	case ErrorLevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
}

// Color returns a printer for attrs that prints plain text when noColor is set
func Color(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// WriteError writes a formatted message to w
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return Color(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// APITypeNotFoundError reports a requested api type that is not configured
func APITypeNotFoundError(apiType string, configured []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "API TYPE NOT FOUND",
		Problem:     apiType,
		Details:     []string{fmt.Sprintf("Api type '%s' is not configured (configured: %s).", apiType, strings.Join(configured, ", "))},
		Suggestions: FindSimilar(apiType, configured, nil),
		HelpCommands: []string{
			"List discovered types: apischema debug --list",
			"Configure types: api_types in apischema.yml",
		},
		NoColor: noColor,
	})
}

// ResourceNotFoundError reports a resource missing from an api type
func ResourceNotFoundError(resource, apiType string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "RESOURCE NOT FOUND",
		Problem:     resource,
		Details:     []string{fmt.Sprintf("No schema file defines resource '%s' for api type '%s'.", resource, apiType)},
		Suggestions: FindSimilar(resource, known, nil),
		HelpCommands: []string{
			fmt.Sprintf("See all resources: apischema debug --list --api-type %s", apiType),
		},
		NoColor: noColor,
	})
}

// ConfigError reports a configuration that could not be loaded
func ConfigError(err error, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: err.Error(),
		HelpCommands: []string{
			"View config: cat apischema.yml",
			"Get help: apischema --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// Info creates an info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: message, NoColor: noColor})
}

// WriteEvent prints one pipeline event as a single status line. Errors
// carried by the event are listed below it when verbose is set.
func WriteEvent(w io.Writer, ev pipeline.Event, verbose, noColor bool) {
	switch ev.Status {
	case pipeline.StatusGenerated:
		Color(noColor, color.FgGreen).Fprintf(w, "  ✓ %s", ev.Resource)
		fmt.Fprintf(w, " → %s\n", ev.File)
		if verbose {
			writeContributors(w, ev, noColor)
		}
	case pipeline.StatusValidated:
		Color(noColor, color.FgGreen).Fprintf(w, "  ✓ %s", ev.Resource)
		fmt.Fprintln(w, " (valid)")
		if verbose {
			writeContributors(w, ev, noColor)
		}
	default:
		Color(noColor, color.FgRed).Fprintf(w, "  ✗ %s\n", ev.Message)
		if !verbose {
			return
		}
		for _, e := range ev.Errors {
			WritePipelineError(w, e, noColor)
		}
		if ev.Suggestion != "" {
			Color(noColor, color.FgYellow).Fprintf(w, "    💡 %s\n", ev.Suggestion)
		}
	}
}

// writeContributors lists the schema files behind a generated resource
func writeContributors(w io.Writer, ev pipeline.Event, noColor bool) {
	dim := Color(noColor, color.FgHiBlack)
	for _, f := range ev.SourceFiles {
		dim.Fprintf(w, "      source: %s\n", f)
	}
	for _, f := range ev.ValidationFiles {
		dim.Fprintf(w, "      validation: %s\n", f)
	}
}

// WritePipelineError prints one structured error indented under an event
func WritePipelineError(w io.Writer, e *apierrors.PipelineError, noColor bool) {
	c := Color(noColor, color.FgRed)
	if e.Severity == apierrors.SeverityWarning {
		c = Color(noColor, color.FgYellow)
	}
	c.Fprintf(w, "    • %s\n", apierrors.FormatCompact(e))
	if e.Suggestion != "" {
		fmt.Fprintf(w, "      %s\n", e.Suggestion)
	}
}

// WriteDiagnostics explains a run that produced nothing
func WriteDiagnostics(w io.Writer, d *pipeline.Diagnostics, noColor bool) {
	if d == nil {
		return
	}

	Header(w, "Diagnostics", noColor)
	kv := NewKeyValueTable(w, noColor)
	kv.AddRow("API type", d.APIType)
	kv.AddRow("Search pattern", d.SearchPattern)
	kv.AddRow("Directories found", fmt.Sprintf("%d", d.DirectoriesFound))
	kv.Render()

	writeList(w, "Configured sources", d.ConfiguredSources, noColor)
	writeList(w, "Searched paths", d.SearchedPaths, noColor)
	writeList(w, "Skipped directories (missing)", d.SkippedDirectories, noColor)

	writeFailures(w, "Failed schema files", d.FailedSchemaFiles, noColor)
	writeFailures(w, "Failed validation files", d.FailedValidationFiles, noColor)
	writeFailures(w, "Failed merges", d.FailedMerges, noColor)
	writeFailures(w, "Failed validations", d.FailedValidations, noColor)
}

func writeList(w io.Writer, title string, items []string, noColor bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	Color(noColor, color.FgCyan).Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}

func writeFailures(w io.Writer, title string, failures []pipeline.Failure, noColor bool) {
	if len(failures) == 0 {
		return
	}
	items := make([]string, len(failures))
	for i, f := range failures {
		subject := f.Resource
		if subject == "" {
			subject = f.File
		}
		items[i] = fmt.Sprintf("%s: %s", subject, f.Error)
	}
	writeList(w, title, items, noColor)
}
