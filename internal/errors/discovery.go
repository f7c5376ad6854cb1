package errors

import "fmt"

// Discovery and load error codes (DIS001-099)
const (
	// ErrFileUnreadable indicates a schema file could not be read
	ErrFileUnreadable ErrorCode = "DIS001"
	// ErrMalformedYAML indicates a schema file is not well-formed YAML
	ErrMalformedYAML ErrorCode = "DIS002"
	// ErrMissingRootKey indicates the required "resource" root key is absent
	ErrMissingRootKey ErrorCode = "DIS003"
	// ErrInvalidRootShape indicates the document or its root key is not an object
	ErrInvalidRootShape ErrorCode = "DIS004"
	// ErrInvalidSection indicates a section (operations, properties) has the wrong shape
	ErrInvalidSection ErrorCode = "DIS005"
	// ErrInvalidValidationFile indicates a validation schema file has the wrong shape
	ErrInvalidValidationFile ErrorCode = "DIS006"
	// ErrOrphanValidationFile indicates a validation file without a resource in its layer
	ErrOrphanValidationFile ErrorCode = "DIS007"
	// ErrInvalidConstraint indicates a constraint token that cannot be parsed
	ErrInvalidConstraint ErrorCode = "DIS008"
)

// NewFileUnreadable creates a DIS001 error
func NewFileUnreadable(file string, cause error) *PipelineError {
	return newError(
		ErrFileUnreadable,
		"file_unreadable",
		CategoryDiscovery,
		SeverityError,
		fmt.Sprintf("Cannot read schema file: %v", cause),
	).WithFile(file).WithCause(cause)
}

// NewMalformedYAML creates a DIS002 error
func NewMalformedYAML(file string, line int, cause error) *PipelineError {
	return newError(
		ErrMalformedYAML,
		"malformed_yaml",
		CategoryDiscovery,
		SeverityError,
		fmt.Sprintf("Invalid YAML: %v", cause),
	).WithFile(file).WithLine(line).WithCause(cause).
		WithSuggestion("Check indentation and quoting around the reported line")
}

// NewMissingRootKey creates a DIS003 error
func NewMissingRootKey(file, key string) *PipelineError {
	return newError(
		ErrMissingRootKey,
		"missing_root_key",
		CategoryDiscovery,
		SeverityError,
		fmt.Sprintf("Schema must have a %q key", key),
	).WithFile(file).
		WithSuggestion(fmt.Sprintf("Wrap the resource definition in a top-level %q mapping", key))
}

// NewInvalidRootShape creates a DIS004 error
func NewInvalidRootShape(file, what string) *PipelineError {
	return newError(
		ErrInvalidRootShape,
		"invalid_root_shape",
		CategoryDiscovery,
		SeverityError,
		fmt.Sprintf("%s must be a mapping", what),
	).WithFile(file)
}

// NewInvalidSection creates a DIS005 error
func NewInvalidSection(file, section, detail string) *PipelineError {
	return newError(
		ErrInvalidSection,
		"invalid_section",
		CategoryDiscovery,
		SeverityError,
		fmt.Sprintf("Section %q is invalid: %s", section, detail),
	).WithFile(file).WithField(section)
}

// NewInvalidValidationFile creates a DIS006 error
func NewInvalidValidationFile(file, detail string) *PipelineError {
	return newError(
		ErrInvalidValidationFile,
		"invalid_validation_file",
		CategoryDiscovery,
		SeverityError,
		fmt.Sprintf("Invalid validation schema: %s", detail),
	).WithFile(file).
		WithSuggestion("Validation files map operation -> property -> list of constraints")
}

// NewOrphanValidationFile creates a DIS007 warning
func NewOrphanValidationFile(file, resource, layer string) *PipelineError {
	return newError(
		ErrOrphanValidationFile,
		"orphan_validation_file",
		CategoryDiscovery,
		SeverityWarning,
		fmt.Sprintf("No %s-layer resource schema found for validation file", layer),
	).WithFile(file).WithResource(resource).WithLayer(layer).
		WithSuggestion("Add a resource schema next to the validation file or remove it")
}

// NewInvalidConstraint creates a DIS008 error
func NewInvalidConstraint(file, field, detail string) *PipelineError {
	return newError(
		ErrInvalidConstraint,
		"invalid_constraint",
		CategoryDiscovery,
		SeverityError,
		fmt.Sprintf("Invalid constraint: %s", detail),
	).WithFile(file).WithField(field)
}
