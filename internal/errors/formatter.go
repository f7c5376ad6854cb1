package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *PipelineError) string {
	var b strings.Builder

	file := e.File
	if file == "" {
		file = "<pipeline>"
	}

	fmt.Fprintf(&b, "%s %s in %s\n", severityIcon(e.Severity), categoryDisplayName(e.Category), file)

	if e.Line > 0 {
		fmt.Fprintf(&b, "Line %d:\n", e.Line)
	}

	fmt.Fprintf(&b, "  %s\n", e.Message)

	if e.Resource != "" || e.Field != "" || e.Layer != "" {
		b.WriteString("\n")
		if e.Resource != "" {
			fmt.Fprintf(&b, "  Resource: %s\n", e.Resource)
		}
		if e.Field != "" {
			fmt.Fprintf(&b, "  Field:    %s\n", e.Field)
		}
		if e.Layer != "" {
			fmt.Fprintf(&b, "  Layer:    %s\n", e.Layer)
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder

	errCount, warnCount, infoCount := errors.ErrorCount()
	fmt.Fprintf(&b, "Schema pipeline failed with %d error(s), %d warning(s), %d info\n\n",
		errCount, warnCount, infoCount)

	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format:
//
//	[VAL213] resource "orders", field "properties.id.type": message (file: a.yml, layer: project)
func FormatCompact(e *PipelineError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] ", e.Code)

	var subject []string
	if e.Resource != "" {
		subject = append(subject, fmt.Sprintf("resource %q", e.Resource))
	}
	if e.Field != "" {
		subject = append(subject, fmt.Sprintf("field %q", e.Field))
	}
	if len(subject) > 0 {
		b.WriteString(strings.Join(subject, ", "))
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	var origin []string
	if e.File != "" {
		file := e.File
		if e.Line > 0 {
			file = fmt.Sprintf("%s:%d", file, e.Line)
		}
		origin = append(origin, "file: "+file)
	}
	if e.Layer != "" {
		origin = append(origin, "layer: "+e.Layer)
	}
	if len(origin) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(origin, ", "))
	}

	return b.String()
}

// severityIcon returns the emoji/icon for a severity level
func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	case SeverityInfo:
		return "ℹ️ "
	default:
		return "❓"
	}
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryDiscovery:
		return "Discovery Error"
	case CategoryMerge:
		return "Merge Error"
	case CategoryValidation:
		return "Validation Error"
	case CategoryGeneration:
		return "Generation Error"
	default:
		return "Pipeline Error"
	}
}
