package errors

import "fmt"

// Generation error codes (GEN300-399)
const (
	// ErrNoResourcesGenerated indicates a whole batch produced nothing
	ErrNoResourcesGenerated ErrorCode = "GEN301"
	// ErrInvalidResourceName indicates a resource name that cannot become a symbol
	ErrInvalidResourceName ErrorCode = "GEN302"
	// ErrInvalidAPIType indicates an api type that cannot become a symbol
	ErrInvalidAPIType ErrorCode = "GEN303"
	// ErrRenderFailed indicates the renderer rejected the artifact model
	ErrRenderFailed ErrorCode = "GEN304"
	// ErrWriteFailed indicates the artifact could not be written
	ErrWriteFailed ErrorCode = "GEN305"
	// ErrAliasCollision indicates symbol resolution could not produce unique aliases
	ErrAliasCollision ErrorCode = "GEN306"
	// ErrUnknownRenderer indicates an unregistered renderer name
	ErrUnknownRenderer ErrorCode = "GEN307"
)

// NewNoResourcesGenerated creates a GEN301 error
func NewNoResourcesGenerated(apiType string) *PipelineError {
	return newError(
		ErrNoResourcesGenerated,
		"no_resources_generated",
		CategoryGeneration,
		SeverityError,
		fmt.Sprintf("No resources were generated for API type %q", apiType),
	)
}

// NewInvalidResourceName creates a GEN302 error
func NewInvalidResourceName(name, reason string) *PipelineError {
	return newError(
		ErrInvalidResourceName,
		"invalid_resource_name",
		CategoryGeneration,
		SeverityError,
		fmt.Sprintf("Resource name %q cannot be used as a symbol name: %s", name, reason),
	).WithResource(name).WithField("name")
}

// NewInvalidAPIType creates a GEN303 error
func NewInvalidAPIType(apiType string) *PipelineError {
	return newError(
		ErrInvalidAPIType,
		"invalid_api_type",
		CategoryGeneration,
		SeverityError,
		fmt.Sprintf("API type %q cannot be used as a symbol name", apiType),
	)
}

// NewRenderFailed creates a GEN304 error
func NewRenderFailed(resource, renderer string, cause error) *PipelineError {
	return newError(
		ErrRenderFailed,
		"render_failed",
		CategoryGeneration,
		SeverityError,
		fmt.Sprintf("Renderer %q failed: %v", renderer, cause),
	).WithResource(resource).WithCause(cause)
}

// NewWriteFailed creates a GEN305 error
func NewWriteFailed(resource, file string, cause error) *PipelineError {
	return newError(
		ErrWriteFailed,
		"write_failed",
		CategoryGeneration,
		SeverityError,
		fmt.Sprintf("Cannot write artifact: %v", cause),
	).WithResource(resource).WithFile(file).WithCause(cause)
}

// NewAliasCollision creates a GEN306 error
func NewAliasCollision(resource, alias string, symbols []string) *PipelineError {
	return newError(
		ErrAliasCollision,
		"alias_collision",
		CategoryGeneration,
		SeverityError,
		fmt.Sprintf("Alias %q is claimed by %s", alias, quoteList(symbols)),
	).WithResource(resource)
}

// NewUnknownRenderer creates a GEN307 error
func NewUnknownRenderer(name string, known []string) *PipelineError {
	return newError(
		ErrUnknownRenderer,
		"unknown_renderer",
		CategoryGeneration,
		SeverityError,
		fmt.Sprintf("Unknown renderer %q, available: %s", name, quoteList(known)),
	)
}
