// Package errors provides structured error handling for the schema pipeline.
// It defines error codes, categories and formatting for both terminal output
// and machine-parseable JSON attached to progress events.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code in the schema pipeline
type ErrorCode string

// ErrorCategory represents the pipeline stage an error belongs to
type ErrorCategory string

const (
	// CategoryDiscovery represents discovery and load errors (DIS001-099)
	CategoryDiscovery ErrorCategory = "discovery"
	// CategoryMerge represents layer merge errors (MRG100-199)
	CategoryMerge ErrorCategory = "merge"
	// CategoryValidation represents schema validation errors (VAL200-299)
	CategoryValidation ErrorCategory = "validation"
	// CategoryGeneration represents artifact generation errors (GEN300-399)
	CategoryGeneration ErrorCategory = "generation"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that stops the resource from being generated
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a recoverable condition worth reporting
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo indicates informational messages
	SeverityInfo ErrorSeverity = "info"
)

// PipelineError represents a structured pipeline error. Every error carries
// enough context (resource, file, layer, rule) to be actionable on its own.
type PipelineError struct {
	// Code is the unique error code (e.g., "VAL213", "DIS002")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Resource is the resource identifier the error is about (optional)
	Resource string `json:"resource,omitempty"`
	// Field is the offending field, e.g. "properties.id.type" (optional)
	Field string `json:"field,omitempty"`
	// File is the source file the offending value came from (optional)
	File string `json:"file,omitempty"`
	// Line is the 1-indexed line inside File (optional)
	Line int `json:"line,omitempty"`
	// Layer is the layer tag of File (optional)
	Layer string `json:"layer,omitempty"`
	// Rule names the violated validation rule (optional)
	Rule string `json:"rule,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`

	cause error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	return FormatCompact(e)
}

// Unwrap returns the underlying cause, if any
func (e *PipelineError) Unwrap() error {
	return e.cause
}

// Format returns a human-readable multi-line message for terminal output
func (e *PipelineError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as an indented JSON string
func (e *PipelineError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithResource sets the resource identifier
func (e *PipelineError) WithResource(resource string) *PipelineError {
	e.Resource = resource
	return e
}

// WithField sets the offending field
func (e *PipelineError) WithField(field string) *PipelineError {
	e.Field = field
	return e
}

// WithFile sets the source file
func (e *PipelineError) WithFile(file string) *PipelineError {
	e.File = file
	return e
}

// WithLine sets the line inside the source file
func (e *PipelineError) WithLine(line int) *PipelineError {
	e.Line = line
	return e
}

// WithLayer sets the layer tag
func (e *PipelineError) WithLayer(layer string) *PipelineError {
	e.Layer = layer
	return e
}

// WithRule sets the violated rule name
func (e *PipelineError) WithRule(rule string) *PipelineError {
	e.Rule = rule
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *PipelineError) WithSuggestion(suggestion string) *PipelineError {
	e.Suggestion = suggestion
	return e
}

// WithCause records the underlying error so errors.Is/As keep working
func (e *PipelineError) WithCause(cause error) *PipelineError {
	e.cause = cause
	return e
}

// ErrorList is a collection of pipeline errors
type ErrorList []*PipelineError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if the list contains any warnings
func (el ErrorList) HasWarnings() bool {
	for _, err := range el {
		if err.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only the entries with error severity
func (el ErrorList) Errors() ErrorList {
	return el.filter(SeverityError)
}

// Warnings returns only the entries with warning severity
func (el ErrorList) Warnings() ErrorList {
	return el.filter(SeverityWarning)
}

func (el ErrorList) filter(severity ErrorSeverity) ErrorList {
	var out ErrorList
	for _, err := range el {
		if err.Severity == severity {
			out = append(out, err)
		}
	}
	return out
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// Messages returns the compact form of every entry
func (el ErrorList) Messages() []string {
	out := make([]string, 0, len(el))
	for _, err := range el {
		out = append(out, err.Error())
	}
	return out
}

// newError creates a new PipelineError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
) *PipelineError {
	return &PipelineError{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// quoteList renders values as a comma-separated list of quoted strings
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
