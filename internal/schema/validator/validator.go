// Package validator checks merged resource descriptions against structural,
// typing and cross-layer rules. Every rule runs; all violations are reported.
package validator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema"
)

// Rule is one independent check
type Rule interface {
	// Name identifies the rule in violations and logs
	Name() string
	// Check returns every violation found; warnings are allowed
	Check(ctx *Context) []*apierrors.PipelineError
}

// Context is the input of one validation run
type Context struct {
	Merged *schema.MergedResourceDescription
	// Base is the base-layer record, nil when unavailable
	Base *schema.ResourceDescription
}

// Resource returns the identifier violations are reported against
func (c *Context) Resource() string {
	return c.Merged.Identifier()
}

// Validator runs a fixed list of rules
type Validator struct {
	rules  []Rule
	logger *zap.Logger
}

// Option configures a Validator
type Option func(*Validator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithRules replaces the default rule set
func WithRules(rules ...Rule) Option {
	return func(v *Validator) {
		v.rules = rules
	}
}

// DefaultRules returns the standard rule set in reporting order
func DefaultRules() []Rule {
	return []Rule{
		&StructureRule{},
		&ResourceNameRule{},
		&PropertyRule{},
		&OperationRule{},
		&PaginationRule{},
		&SecurityExpressionRule{},
		&SymbolReferenceRule{},
		&ImmutabilityRule{},
	}
}

// New creates a validator with the default rules
func New(opts ...Option) *Validator {
	v := &Validator{
		rules:  DefaultRules(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Check runs every rule and returns all findings, warnings included
func (v *Validator) Check(merged *schema.MergedResourceDescription, base *schema.ResourceDescription) apierrors.ErrorList {
	ctx := &Context{Merged: merged, Base: base}
	file := merged.SourceFile

	var findings apierrors.ErrorList
	for _, rule := range v.rules {
		for _, finding := range rule.Check(ctx) {
			if finding.File == "" {
				finding.File = file
			}
			if finding.Rule == "" {
				finding.Rule = rule.Name()
			}
			findings = append(findings, finding)
		}
	}
	return findings
}

// Validate returns a *Failure listing every error-severity violation, or
// nil. Warnings are logged and never fail validation.
func (v *Validator) Validate(merged *schema.MergedResourceDescription, base *schema.ResourceDescription) error {
	findings := v.Check(merged, base)

	for _, warning := range findings.Warnings() {
		v.logger.Warn(warning.Message,
			zap.String("resource", merged.Identifier()),
			zap.String("code", string(warning.Code)),
			zap.String("file", warning.File),
		)
	}

	violations := findings.Errors()
	if len(violations) == 0 {
		return nil
	}
	return &Failure{Resource: merged.Identifier(), Violations: violations}
}

// Failure is returned when a resource violates one or more rules
type Failure struct {
	Resource   string
	Violations apierrors.ErrorList
}

// Error renders the numbered violation list
func (f *Failure) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Schema validation failed for resource %s with %d error(s):", f.Resource, len(f.Violations))
	for i, v := range f.Violations {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, apierrors.FormatCompact(v))
	}
	return sb.String()
}
