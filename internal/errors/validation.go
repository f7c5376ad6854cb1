package errors

import "fmt"

// Validation error codes (VAL200-299)
const (
	// ErrMissingShortName indicates no display name can be resolved
	ErrMissingShortName ErrorCode = "VAL201"
	// ErrMissingProperties indicates the property map is absent
	ErrMissingProperties ErrorCode = "VAL202"
	// ErrEmptyResourceName indicates the resource identifier is empty
	ErrEmptyResourceName ErrorCode = "VAL203"
	// ErrInvalidPropertyName indicates a property name that is not identifier-safe
	ErrInvalidPropertyName ErrorCode = "VAL204"
	// ErrInvalidPropertyType indicates a type outside the fixed enumeration
	ErrInvalidPropertyType ErrorCode = "VAL205"
	// ErrIncompatibleDefault indicates a default value that does not match the type
	ErrIncompatibleDefault ErrorCode = "VAL206"
	// ErrNonBooleanFlag indicates a flag attribute that is not a boolean
	ErrNonBooleanFlag ErrorCode = "VAL207"
	// ErrInvalidOpenAPIContext indicates an openapiContext that is not a mapping
	ErrInvalidOpenAPIContext ErrorCode = "VAL208"
	// ErrNoOperations indicates a resource without operations
	ErrNoOperations ErrorCode = "VAL209"
	// ErrInvalidOperationKind indicates an operation kind outside the fixed enumeration
	ErrInvalidOperationKind ErrorCode = "VAL210"
	// ErrInvalidPagination indicates a pagination size that is not a positive integer
	ErrInvalidPagination ErrorCode = "VAL211"
	// ErrInvalidSecurityExpression indicates an access-control expression with a syntax error
	ErrInvalidSecurityExpression ErrorCode = "VAL212"
	// ErrImmutableTypeChanged indicates an override layer changing a property type
	ErrImmutableTypeChanged ErrorCode = "VAL213"
	// ErrImmutableIdentifierChanged indicates an override layer changing an identifier flag
	ErrImmutableIdentifierChanged ErrorCode = "VAL214"
	// ErrRequiredPropertyDropped indicates an override layer omitting a base-required property
	ErrRequiredPropertyDropped ErrorCode = "VAL215"
	// ErrInvalidSymbolReference indicates a provider/processor that is not fully qualified
	ErrInvalidSymbolReference ErrorCode = "VAL216"
	// ErrInvalidAttribute indicates a resource-level attribute with the wrong shape
	ErrInvalidAttribute ErrorCode = "VAL217"
)

// NewMissingShortName creates a VAL201 error
func NewMissingShortName(resource string) *PipelineError {
	return newError(
		ErrMissingShortName,
		"missing_short_name",
		CategoryValidation,
		SeverityError,
		"Resource has neither shortName nor name",
	).WithResource(resource).WithField("shortName").WithRule("structure")
}

// NewMissingProperties creates a VAL202 error
func NewMissingProperties(resource string) *PipelineError {
	return newError(
		ErrMissingProperties,
		"missing_properties",
		CategoryValidation,
		SeverityError,
		"Resource must declare a properties map (it may be empty)",
	).WithResource(resource).WithField("properties").WithRule("structure")
}

// NewEmptyResourceName creates a VAL203 error
func NewEmptyResourceName(resource string) *PipelineError {
	return newError(
		ErrEmptyResourceName,
		"empty_resource_name",
		CategoryValidation,
		SeverityError,
		"Resource name must not be empty",
	).WithResource(resource).WithField("name").WithRule("resource_name").
		WithSuggestion(`Set "name" under the "resource" key`)
}

// NewInvalidPropertyName creates a VAL204 error
func NewInvalidPropertyName(resource, property string) *PipelineError {
	return newError(
		ErrInvalidPropertyName,
		"invalid_property_name",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Property name %q must match ^[a-zA-Z_][a-zA-Z0-9_]*$", property),
	).WithResource(resource).WithField("properties." + property).WithRule("property")
}

// NewInvalidPropertyType creates a VAL205 error
func NewInvalidPropertyType(resource, property, typ string, allowed []string) *PipelineError {
	return newError(
		ErrInvalidPropertyType,
		"invalid_property_type",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Invalid type %q, allowed: %s", typ, quoteList(allowed)),
	).WithResource(resource).WithField("properties." + property + ".type").WithRule("property")
}

// NewIncompatibleDefault creates a VAL206 error
func NewIncompatibleDefault(resource, property, typ string, value any) *PipelineError {
	return newError(
		ErrIncompatibleDefault,
		"incompatible_default",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Default value %v (%T) is not compatible with type %q", value, value, typ),
	).WithResource(resource).WithField("properties." + property + ".default").WithRule("property")
}

// NewNonBooleanFlag creates a VAL207 error
func NewNonBooleanFlag(resource, property, flag string, value any) *PipelineError {
	return newError(
		ErrNonBooleanFlag,
		"non_boolean_flag",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Attribute %q must be a boolean, got %v (%T)", flag, value, value),
	).WithResource(resource).WithField("properties." + property + "." + flag).WithRule("property")
}

// NewInvalidOpenAPIContext creates a VAL208 error
func NewInvalidOpenAPIContext(resource, field string, value any) *PipelineError {
	return newError(
		ErrInvalidOpenAPIContext,
		"invalid_openapi_context",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("openapiContext must be a mapping, got %T", value),
	).WithResource(resource).WithField(field).WithRule("property")
}

// NewNoOperations creates a VAL209 error
func NewNoOperations(resource string) *PipelineError {
	return newError(
		ErrNoOperations,
		"no_operations",
		CategoryValidation,
		SeverityError,
		"Resource must declare at least one operation",
	).WithResource(resource).WithField("operations").WithRule("operation")
}

// NewInvalidOperationKind creates a VAL210 error
func NewInvalidOperationKind(resource, kind string, allowed []string) *PipelineError {
	return newError(
		ErrInvalidOperationKind,
		"invalid_operation_kind",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Invalid operation %q, allowed: %s", kind, quoteList(allowed)),
	).WithResource(resource).WithField("operations." + kind).WithRule("operation")
}

// NewInvalidPagination creates a VAL211 error
func NewInvalidPagination(resource string, value any) *PipelineError {
	return newError(
		ErrInvalidPagination,
		"invalid_pagination",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("paginationItemsPerPage must be a positive integer, got %v", value),
	).WithResource(resource).WithField("paginationItemsPerPage").WithRule("pagination")
}

// NewInvalidSecurityExpression creates a VAL212 error
func NewInvalidSecurityExpression(resource, operation, expression string, cause error) *PipelineError {
	return newError(
		ErrInvalidSecurityExpression,
		"invalid_security_expression",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Security expression %q does not parse: %v", expression, cause),
	).WithResource(resource).WithField("operations." + operation + ".security").
		WithRule("security_expression").WithCause(cause)
}

// NewImmutableTypeChanged creates a VAL213 error
func NewImmutableTypeChanged(resource, property, baseType, overrideType string) *PipelineError {
	return newError(
		ErrImmutableTypeChanged,
		"immutable_type_changed",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Property %q changes type from %q to %q; property types cannot change between layers", property, baseType, overrideType),
	).WithResource(resource).WithField("properties." + property + ".type").WithRule("merge").
		WithSuggestion("Introduce a new property instead of changing the type of an existing one")
}

// NewImmutableIdentifierChanged creates a VAL214 error
func NewImmutableIdentifierChanged(resource, property string, baseValue, overrideValue bool) *PipelineError {
	return newError(
		ErrImmutableIdentifierChanged,
		"immutable_identifier_changed",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Property %q changes identifier from %t to %t; identifiers cannot change between layers", property, baseValue, overrideValue),
	).WithResource(resource).WithField("properties." + property + ".identifier").WithRule("merge")
}

// NewRequiredPropertyDropped creates a VAL215 error
func NewRequiredPropertyDropped(resource, property, baseFile string) *PipelineError {
	message := fmt.Sprintf("Required core property %q is missing from the project layer", property)
	if baseFile != "" {
		message = fmt.Sprintf("Required core property %q (declared in %s) is missing from the project layer", property, baseFile)
	}
	return newError(
		ErrRequiredPropertyDropped,
		"required_property_dropped",
		CategoryValidation,
		SeverityError,
		message,
	).WithResource(resource).WithField("properties." + property).WithRule("merge").
		WithSuggestion("Redeclare the property in the project schema; required core properties cannot be removed")
}

// NewInvalidSymbolReference creates a VAL216 warning
func NewInvalidSymbolReference(resource, field, value string) *PipelineError {
	return newError(
		ErrInvalidSymbolReference,
		"invalid_symbol_reference",
		CategoryValidation,
		SeverityWarning,
		fmt.Sprintf("%s %q is not a valid fully-qualified class name", field, value),
	).WithResource(resource).WithField(field).WithRule(field)
}

// NewInvalidAttribute creates a VAL217 error
func NewInvalidAttribute(resource, field, expected string, value any) *PipelineError {
	return newError(
		ErrInvalidAttribute,
		"invalid_attribute",
		CategoryValidation,
		SeverityError,
		fmt.Sprintf("Attribute %q must be %s, got %v (%T)", field, expected, value, value),
	).WithResource(resource).WithField(field).WithRule("structure")
}
