// Package pipeline runs discovery, loading, merging, validation and
// generation for one api type and streams the outcome as events.
package pipeline

import (
	"fmt"
	"iter"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/generator"
	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/finder"
	"github.com/conduit-lang/apischema/internal/schema/loader"
	"github.com/conduit-lang/apischema/internal/schema/merger"
	"github.com/conduit-lang/apischema/internal/schema/parser"
	"github.com/conduit-lang/apischema/internal/schema/validation"
	"github.com/conduit-lang/apischema/internal/schema/validator"
)

// ConfigKeySourceDirectories is the configuration key named in suggestions
const ConfigKeySourceDirectories = "source_directories"

// Config holds what an orchestrator needs to run
type Config struct {
	SourceDirectories []string
	GeneratedDir      string
	// Renderer names the artifact renderer, "php" when empty
	Renderer       string
	ProjectMarkers []string
	FeatureMarkers []string
}

// Options controls one run
type Options struct {
	// DryRun renders artifacts without touching the output directory
	DryRun bool
	// ValidateOnly stops after validation and reports validated events
	ValidateOnly bool
	// Resource restricts the run to one resource key, case-insensitively
	Resource string
}

// Orchestrator wires the pipeline stages together. An orchestrator holds no
// per-run state; every Generate call starts from scratch.
type Orchestrator struct {
	finder           *finder.Finder
	loader           *loader.Loader
	validationLoader *validation.Loader
	parser           *parser.Parser
	resolver         *schema.LayerResolver
	merger           *merger.Merger
	validator        *validator.Validator
	generator        *generator.Generator
	logger           *zap.Logger
	newRunID         func() string
}

type settings struct {
	logger   *zap.Logger
	registry *generator.Registry
	clock    func() time.Time
	rules    []validator.Rule
	runID    func() string
}

// Option configures an Orchestrator
type Option func(*settings)

// WithLogger sets the logger shared by every stage
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithRegistry sets the renderer registry
func WithRegistry(registry *generator.Registry) Option {
	return func(s *settings) {
		s.registry = registry
	}
}

// WithClock sets the artifact timestamp source
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithRules replaces the validation rules
func WithRules(rules ...validator.Rule) Option {
	return func(s *settings) {
		s.rules = rules
	}
}

// WithRunID sets the run id source
func WithRunID(fn func() string) Option {
	return func(s *settings) {
		s.runID = fn
	}
}

// New creates an orchestrator. It fails when the renderer is unknown.
func New(cfg Config, opts ...Option) (*Orchestrator, error) {
	s := &settings{
		logger:   zap.NewNop(),
		registry: generator.DefaultRegistry(),
		clock:    time.Now,
		runID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	name := cfg.Renderer
	if name == "" {
		name = "php"
	}
	renderer, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}

	resolver := schema.NewLayerResolver(cfg.ProjectMarkers, cfg.FeatureMarkers)

	validatorOpts := []validator.Option{validator.WithLogger(s.logger)}
	if s.rules != nil {
		validatorOpts = append(validatorOpts, validator.WithRules(s.rules...))
	}

	return &Orchestrator{
		finder:           finder.New(cfg.SourceDirectories, finder.WithLogger(s.logger)),
		loader:           loader.NewLoader(),
		validationLoader: validation.NewLoader(),
		parser:           parser.New(parser.WithLogger(s.logger), parser.WithLayerResolver(resolver)),
		resolver:         resolver,
		merger:           merger.New(merger.WithLogger(s.logger)),
		validator:        validator.New(validatorOpts...),
		generator: generator.New(cfg.GeneratedDir,
			generator.WithRenderer(renderer),
			generator.WithLogger(s.logger),
			generator.WithClock(s.clock),
		),
		logger:   s.logger,
		newRunID: s.runID,
	}, nil
}

// Finder returns the finder the orchestrator discovers files with
func (o *Orchestrator) Finder() *finder.Finder {
	return o.finder
}

// Generator returns the artifact generator
func (o *Orchestrator) Generator() *generator.Generator {
	return o.generator
}

// Generate runs the pipeline for apiType. Events are produced lazily as
// the caller iterates; stopping the iteration stops the run.
func (o *Orchestrator) Generate(apiType string, opts Options) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		r := &run{
			o:       o,
			apiType: apiType,
			opts:    opts,
			id:      o.newRunID(),
			diag:    &Diagnostics{},
		}
		r.logger = o.logger.With(zap.String("run_id", r.id), zap.String("api_type", apiType))
		r.yield = func(e Event) bool {
			e.RunID = r.id
			e.APIType = apiType
			return yield(e)
		}
		r.execute()
	}
}

// Collect drains a run into a summary
func Collect(events iter.Seq[Event]) Summary {
	var s Summary
	for e := range events {
		if s.APIType == "" {
			s.APIType = e.APIType
		}
		s.Add(e)
	}
	return s
}

type run struct {
	o       *Orchestrator
	apiType string
	opts    Options
	id      string
	logger  *zap.Logger
	yield   func(Event) bool
	diag    *Diagnostics

	produced int
}

func (r *run) execute() {
	r.logger.Debug("generation started",
		zap.Bool("dry_run", r.opts.DryRun),
		zap.Bool("validate_only", r.opts.ValidateOnly),
		zap.String("resource", r.opts.Resource),
	)

	if !r.opts.DryRun && !r.opts.ValidateOnly {
		dir := r.o.generator.OutputDir(r.apiType)
		if err := os.RemoveAll(dir); err != nil {
			r.yield(r.errorEvent("", dir, fmt.Sprintf("Failed to clean output directory %s", dir), err))
			return
		}
	}

	registry, ok := r.loadValidation()
	if !ok {
		return
	}

	grouped, keys, ok := r.parseResources(registry)
	if !ok {
		return
	}

	for _, orphan := range registry.Orphans() {
		w := apierrors.NewOrphanValidationFile(orphan.File, orphan.Resource, string(orphan.Layer))
		r.logger.Warn(w.Message,
			zap.String("code", string(w.Code)),
			zap.String("file", orphan.File),
			zap.String("resource", orphan.Resource),
		)
	}

	for _, key := range keys {
		if !r.processResource(key, grouped[key]) {
			return
		}
	}

	r.logger.Info("generation finished", zap.Int("produced", r.produced))

	if r.produced == 0 {
		r.yield(r.nothingGenerated())
	}
}

func (r *run) matches(file string) bool {
	if r.opts.Resource == "" {
		return true
	}
	return strings.EqualFold(finder.ResourceKey(file), r.opts.Resource)
}

func (r *run) loadValidation() (*parser.ValidationRegistry, bool) {
	registry := parser.NewValidationRegistry(r.o.resolver)

	files, err := r.o.finder.FindValidationFiles(r.apiType)
	if err != nil {
		r.yield(r.errorEvent("", "", "Failed to discover validation schema files", err))
		return nil, false
	}
	r.logger.Debug("validation schema files found", zap.Int("count", len(files)))

	for _, file := range files {
		if !r.matches(file) {
			continue
		}
		table, err := r.o.validationLoader.Load(file)
		if err != nil {
			r.diag.FailedValidationFiles = append(r.diag.FailedValidationFiles, Failure{File: file, Error: err.Error()})
			msg := fmt.Sprintf("Failed to process validation file %s: %v", file, err)
			if !r.yield(r.errorEvent("", file, msg, err)) {
				return nil, false
			}
			continue
		}
		registry.Add(file, table)
	}

	return registry, true
}

func (r *run) parseResources(registry *parser.ValidationRegistry) (map[string][]*schema.ResourceDescription, []string, bool) {
	files, err := r.o.finder.FindResourceFiles(r.apiType)
	if err != nil {
		r.yield(r.errorEvent("", "", "Failed to discover resource schema files", err))
		return nil, nil, false
	}
	r.logger.Debug("resource schema files found", zap.Int("count", len(files)))

	grouped := make(map[string][]*schema.ResourceDescription)
	for _, file := range files {
		if !r.matches(file) {
			continue
		}
		doc, err := r.o.loader.Load(file)
		if err != nil {
			r.diag.FailedSchemaFiles = append(r.diag.FailedSchemaFiles, Failure{File: file, Error: err.Error()})
			msg := fmt.Sprintf("Failed to process schema file %s: %v", file, err)
			if !r.yield(r.errorEvent("", file, msg, err)) {
				return nil, nil, false
			}
			continue
		}
		record := r.o.parser.Parse(doc)
		registry.Attach(record)
		grouped[record.Key] = append(grouped[record.Key], record)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return grouped, keys, true
}

// processResource merges, validates and generates one resource. It
// returns false when the consumer stopped iterating.
func (r *run) processResource(key string, records []*schema.ResourceDescription) bool {
	merged, err := r.o.merger.Merge(records, key, r.apiType)
	if err != nil {
		r.diag.FailedMerges = append(r.diag.FailedMerges, Failure{Resource: key, Error: err.Error()})
		return r.yield(r.errorEvent(key, records[0].SourceFile, fmt.Sprintf("Failed to merge resource %s: %v", key, err), err))
	}

	if err := r.o.validator.Validate(merged, baseRecord(merged)); err != nil {
		r.diag.FailedValidations = append(r.diag.FailedValidations, Failure{Resource: key, File: merged.SourceFile, Error: err.Error()})
		return r.yield(r.errorEvent(key, merged.SourceFile, fmt.Sprintf("Validation failed for resource %s: %v", key, err), err))
	}

	if r.opts.ValidateOnly {
		r.produced++
		return r.yield(Event{
			Status:          StatusValidated,
			Resource:        key,
			File:            merged.SourceFile,
			Message:         fmt.Sprintf("Resource %s is valid", key),
			SourceFiles:     merged.SourceFiles(),
			ValidationFiles: append([]string(nil), merged.ValidationFiles...),
		})
	}

	var artifact *generator.Artifact
	if r.opts.DryRun {
		artifact, err = r.o.generator.Render(merged, r.apiType)
	} else {
		artifact, err = r.o.generator.Generate(merged, r.apiType)
	}
	if err != nil {
		return r.yield(r.errorEvent(key, merged.SourceFile, fmt.Sprintf("Failed to generate resource %s: %v", key, err), err))
	}

	r.produced++
	e := Event{
		Status:          StatusGenerated,
		Resource:        key,
		File:            artifact.Path,
		Symbol:          artifact.Symbol,
		Message:         fmt.Sprintf("Generated %s", artifact.Symbol),
		SourceFiles:     merged.SourceFiles(),
		ValidationFiles: append([]string(nil), merged.ValidationFiles...),
	}
	if r.opts.DryRun {
		e.Content = artifact.Content
	}
	return r.yield(e)
}

func (r *run) errorEvent(resource, file, message string, err error) Event {
	r.logger.Error(message, zap.String("resource", resource), zap.String("file", file), zap.Error(err))
	return Event{
		Status:   StatusError,
		Resource: resource,
		File:     file,
		Message:  message,
		Errors:   errorList(err),
	}
}

func (r *run) nothingGenerated() Event {
	r.diag.Diagnostics = *r.o.finder.Diagnostics(r.apiType)
	r.diag.ValidationDiagnostics = r.o.finder.ValidationDiagnostics(r.apiType)
	r.diag.ensureLists()

	pe := apierrors.NewNoResourcesGenerated(r.apiType)
	pe.WithSuggestion(fmt.Sprintf(
		"Check the %q setting in your configuration. Verify that source directories exist and contain schema files matching the pattern: %s",
		ConfigKeySourceDirectories, r.diag.SearchPattern,
	))

	return Event{
		Status:      StatusError,
		Message:     pe.Message,
		Errors:      apierrors.ErrorList{pe},
		Diagnostics: r.diag,
		Suggestion:  pe.Suggestion,
	}
}

func (d *Diagnostics) ensureLists() {
	for _, list := range []*[]Failure{&d.FailedSchemaFiles, &d.FailedMerges, &d.FailedValidations, &d.FailedValidationFiles} {
		if *list == nil {
			*list = []Failure{}
		}
	}
}

// baseRecord returns the record of the lowest contributing layer, the one
// cross-layer immutability is checked against.
func baseRecord(merged *schema.MergedResourceDescription) *schema.ResourceDescription {
	if len(merged.Sources) == 0 {
		return nil
	}
	record, _ := merged.LayerRecord(merged.Sources[0].Layer)
	return record
}
