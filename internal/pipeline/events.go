package pipeline

import (
	"errors"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema/finder"
	"github.com/conduit-lang/apischema/internal/schema/validator"
)

// Status is the kind of a progress event
type Status string

const (
	// StatusGenerated reports an artifact that was written (or rendered in dry-run)
	StatusGenerated Status = "generated"
	// StatusValidated reports a resource that passed validation in validate-only mode
	StatusValidated Status = "validated"
	// StatusError reports a failure; the batch continues with other resources
	StatusError Status = "error"
)

// Event is one progress record of a generation run
type Event struct {
	Status   Status `json:"status" yaml:"status"`
	RunID    string `json:"run_id" yaml:"run_id"`
	APIType  string `json:"api_type" yaml:"api_type"`
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`
	// File is the artifact path for generated events and the offending
	// schema file otherwise
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Symbol  string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// SourceFiles and ValidationFiles list the schema files that
	// contributed to a generated or validated resource, in layer order
	SourceFiles     []string `json:"source_files,omitempty" yaml:"source_files,omitempty"`
	ValidationFiles []string `json:"validation_files,omitempty" yaml:"validation_files,omitempty"`
	// Errors holds the structured errors behind an error event
	Errors      apierrors.ErrorList `json:"errors,omitempty" yaml:"errors,omitempty"`
	Diagnostics *Diagnostics        `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Suggestion  string              `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	// Content is the rendered artifact, set in dry-run mode only
	Content []byte `json:"-" yaml:"-"`
}

// IsError reports whether the event is an error event
func (e Event) IsError() bool {
	return e.Status == StatusError
}

// Failure records one file or resource that dropped out of a run
type Failure struct {
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`
	Error    string `json:"error" yaml:"error"`
}

// Diagnostics is attached to the trailing event of a run that generated
// nothing. It extends the finder diagnostics with every failure of the run.
type Diagnostics struct {
	finder.Diagnostics `yaml:",inline"`

	FailedSchemaFiles     []Failure           `json:"failed_schema_files" yaml:"failed_schema_files"`
	FailedMerges          []Failure           `json:"failed_merges" yaml:"failed_merges"`
	FailedValidations     []Failure           `json:"failed_validations" yaml:"failed_validations"`
	FailedValidationFiles []Failure           `json:"failed_validation_files" yaml:"failed_validation_files"`
	ValidationDiagnostics *finder.Diagnostics `json:"validation_diagnostics" yaml:"validation_diagnostics"`
}

// errorList extracts the structured errors behind err
func errorList(err error) apierrors.ErrorList {
	var failure *validator.Failure
	if errors.As(err, &failure) {
		return failure.Violations
	}
	var pe *apierrors.PipelineError
	if errors.As(err, &pe) {
		return apierrors.ErrorList{pe}
	}
	return nil
}

// Summary counts the outcome of a run
type Summary struct {
	APIType   string  `json:"api_type" yaml:"api_type"`
	Generated int     `json:"generated" yaml:"generated"`
	Validated int     `json:"validated" yaml:"validated"`
	Errors    int     `json:"errors" yaml:"errors"`
	Events    []Event `json:"-" yaml:"-"`
}

// Succeeded reports whether the run produced anything and reported no errors
func (s Summary) Succeeded() bool {
	return s.Errors == 0 && s.Generated+s.Validated > 0
}

// Add counts one event
func (s *Summary) Add(e Event) {
	switch e.Status {
	case StatusGenerated:
		s.Generated++
	case StatusValidated:
		s.Validated++
	case StatusError:
		s.Errors++
	}
	s.Events = append(s.Events, e)
}
