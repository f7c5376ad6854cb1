package errors

import "fmt"

// Merge error codes (MRG100-199)
const (
	// ErrUnknownLayer indicates a record tagged with a layer outside the fixed set
	ErrUnknownLayer ErrorCode = "MRG101"
	// ErrSameLayerConflict indicates two files of one layer disagree on an immutable attribute
	ErrSameLayerConflict ErrorCode = "MRG102"
	// ErrForeignRecord indicates a record belonging to another resource was handed to the merge
	ErrForeignRecord ErrorCode = "MRG103"
	// ErrMissingBaseLayer indicates the base layer is absent and a higher layer was promoted
	ErrMissingBaseLayer ErrorCode = "MRG104"
)

// NewUnknownLayer creates a MRG101 error
func NewUnknownLayer(resource, file, layer string) *PipelineError {
	return newError(
		ErrUnknownLayer,
		"unknown_layer",
		CategoryMerge,
		SeverityError,
		fmt.Sprintf("Unknown layer %q", layer),
	).WithResource(resource).WithFile(file).WithLayer(layer)
}

// NewSameLayerConflict creates a MRG102 error
func NewSameLayerConflict(resource, layer, field string, files []string, values []string) *PipelineError {
	return newError(
		ErrSameLayerConflict,
		"same_layer_conflict",
		CategoryMerge,
		SeverityError,
		fmt.Sprintf("Files of the same layer disagree on %s: %s (files: %s)", field, quoteList(values), quoteList(files)),
	).WithResource(resource).WithField(field).WithLayer(layer).
		WithSuggestion("Only one file per layer may declare immutable property attributes")
}

// NewForeignRecord creates a MRG103 error
func NewForeignRecord(resource, other, file string) *PipelineError {
	return newError(
		ErrForeignRecord,
		"foreign_record",
		CategoryMerge,
		SeverityError,
		fmt.Sprintf("Record for resource %q cannot be merged into %q", other, resource),
	).WithResource(resource).WithFile(file)
}

// NewMissingBaseLayer creates a MRG104 warning
func NewMissingBaseLayer(resource, promoted string) *PipelineError {
	return newError(
		ErrMissingBaseLayer,
		"missing_base_layer",
		CategoryMerge,
		SeverityWarning,
		fmt.Sprintf("No core-layer schema; using the %s layer as base", promoted),
	).WithResource(resource).WithLayer(promoted)
}
