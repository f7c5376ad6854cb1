// Package merger combines the per-layer records of one resource into a single
// merged description, applying layer precedence core < feature < project.
package merger

import (
	"fmt"

	"go.uber.org/zap"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/document"
	"github.com/conduit-lang/apischema/internal/schema/validation"
)

// Merger merges resource records across layers
type Merger struct {
	validation *validation.Merger
	logger     *zap.Logger
}

// Option configures a Merger
type Option func(*Merger)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

// New creates a schema merger
func New(opts ...Option) *Merger {
	m := &Merger{
		validation: validation.NewMerger(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// layerGroup is the composition of every record of one layer
type layerGroup struct {
	layer   schema.Layer
	record  *schema.ResourceDescription
	files   []string
	members []*schema.ResourceDescription
}

// Merge combines records belonging to resource. Input records are never
// mutated. An empty input yields an empty merged record (IsEmpty is true).
func (m *Merger) Merge(records []*schema.ResourceDescription, resource, apiType string) (*schema.MergedResourceDescription, error) {
	if len(records) == 0 {
		return &schema.MergedResourceDescription{
			ResourceDescription: schema.NewResourceDescription(resource),
		}, nil
	}

	for _, r := range records {
		if !r.Layer.Valid() {
			return nil, apierrors.NewUnknownLayer(resource, r.SourceFile, string(r.Layer))
		}
		if r.Key != "" && r.Key != resource {
			return nil, apierrors.NewForeignRecord(resource, r.Key, r.SourceFile)
		}
	}

	if len(records) == 1 {
		return m.single(records[0], resource), nil
	}

	groups, err := m.groupByLayer(records, resource)
	if err != nil {
		return nil, err
	}

	base := groups[0]
	if base.layer != schema.LayerCore {
		warning := apierrors.NewMissingBaseLayer(resource, string(base.layer))
		m.logger.Warn(warning.Message,
			zap.String("resource", resource),
			zap.String("api_type", apiType),
			zap.String("layer", string(base.layer)),
		)
	} else {
		m.logger.Info("using core schema as base",
			zap.String("resource", resource),
			zap.Strings("files", base.files),
		)
	}

	result := base.record.Clone()
	merged := &schema.MergedResourceDescription{
		LayerRecords: make(map[schema.Layer]*schema.ResourceDescription, len(groups)),
	}

	for i, g := range groups {
		if i > 0 {
			apply(result, g.record)
			m.logger.Info(fmt.Sprintf("merged %s schema", g.layer),
				zap.String("resource", resource),
				zap.Strings("files", g.files),
			)
		}
		merged.Sources = append(merged.Sources, schema.Source{Layer: g.layer, Files: g.files})
		merged.LayerRecords[g.layer] = g.record
	}

	var tables []*validation.Table
	var validationFiles []string
	for _, g := range groups {
		for _, member := range g.members {
			tables = append(tables, member.Validation...)
			validationFiles = appendUnique(validationFiles, member.ValidationFiles...)
		}
	}

	top := groups[len(groups)-1]
	result.Key = resource
	result.Layer = top.layer
	result.SourceFile = top.record.SourceFile
	result.Validation = tables
	result.ValidationFiles = validationFiles

	merged.ResourceDescription = result
	merged.Constraints = m.validation.Merge(tables...)

	return merged, nil
}

func (m *Merger) single(r *schema.ResourceDescription, resource string) *schema.MergedResourceDescription {
	record := r.Clone()
	record.Key = resource

	return &schema.MergedResourceDescription{
		ResourceDescription: record,
		Sources:             []schema.Source{{Layer: r.Layer, Files: []string{r.SourceFile}}},
		LayerRecords:        map[schema.Layer]*schema.ResourceDescription{r.Layer: r},
		Constraints:         m.validation.Merge(r.Validation...),
	}
}

// groupByLayer composes records sharing a layer, returning groups in
// ascending precedence. Records within a layer compose in input order.
func (m *Merger) groupByLayer(records []*schema.ResourceDescription, resource string) ([]*layerGroup, error) {
	byLayer := make(map[schema.Layer]*layerGroup)

	for _, r := range records {
		g, ok := byLayer[r.Layer]
		if !ok {
			byLayer[r.Layer] = &layerGroup{
				layer:   r.Layer,
				record:  r.Clone(),
				files:   []string{r.SourceFile},
				members: []*schema.ResourceDescription{r},
			}
			continue
		}

		m.logger.Info("multiple schemas found for same layer, merging them",
			zap.String("resource", resource),
			zap.String("layer", string(r.Layer)),
			zap.Strings("previous", g.files),
			zap.String("current", r.SourceFile),
		)

		if err := checkSameLayer(resource, g, r); err != nil {
			return nil, err
		}

		apply(g.record, r)
		g.files = append(g.files, r.SourceFile)
		g.members = append(g.members, r)
	}

	groups := make([]*layerGroup, 0, len(byLayer))
	for _, layer := range schema.Layers {
		if g, ok := byLayer[layer]; ok {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// checkSameLayer rejects files of one layer that disagree on an immutable
// property attribute. Files within a layer compose; they may not contradict.
func checkSameLayer(resource string, g *layerGroup, incoming *schema.ResourceDescription) error {
	for pair := incoming.PropertiesOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		existing, ok := g.record.Property(pair.Key)
		if !ok {
			continue
		}
		files := append(append([]string(nil), g.files...), incoming.SourceFile)

		if existing.Type != "" && pair.Value.Type != "" && existing.Type != pair.Value.Type {
			return apierrors.NewSameLayerConflict(resource, string(g.layer),
				"properties."+pair.Key+".type", files, []string{existing.Type, pair.Value.Type})
		}
		if existing.Identifier != nil && pair.Value.Identifier != nil && *existing.Identifier != *pair.Value.Identifier {
			return apierrors.NewSameLayerConflict(resource, string(g.layer),
				"properties."+pair.Key+".identifier", files,
				[]string{fmt.Sprint(*existing.Identifier), fmt.Sprint(*pair.Value.Identifier)})
		}
	}
	return nil
}

// apply overlays incoming onto acc. Scalars overwrite when set, properties
// merge attribute by attribute, operations replace per kind.
func apply(acc, incoming *schema.ResourceDescription) {
	overwriteString(acc, &acc.Name, incoming.Name, "name")
	overwriteString(acc, &acc.ShortName, incoming.ShortName, "shortName")
	overwriteString(acc, &acc.Description, incoming.Description, "description")
	overwriteString(acc, &acc.Provider, incoming.Provider, "provider")
	overwriteString(acc, &acc.Processor, incoming.Processor, "processor")

	if incoming.PaginationItemsPerPage != nil {
		n := *incoming.PaginationItemsPerPage
		acc.PaginationItemsPerPage = &n
		delete(acc.Invalid, "paginationItemsPerPage")
	}
	if incoming.OpenAPIContext != nil {
		acc.OpenAPIContext = document.Clone(incoming.OpenAPIContext).(*document.Map)
		delete(acc.Invalid, "openapiContext")
	}
	acc.Invalid = mergeInvalid(acc.Invalid, incoming.Invalid)

	if acc.Properties == nil {
		acc.Properties = schema.NewProperties()
	}
	if acc.Operations == nil {
		acc.Operations = schema.NewOperations()
	}

	for pair := incoming.PropertiesOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		existing, ok := acc.Properties.Get(pair.Key)
		if !ok {
			acc.Properties.Set(pair.Key, pair.Value.Clone())
			continue
		}
		mergeProperty(existing, pair.Value)
	}

	for pair := incoming.OperationsOrEmpty().Oldest(); pair != nil; pair = pair.Next() {
		acc.Operations.Set(pair.Key, pair.Value.Clone())
	}
}

func mergeProperty(acc, incoming *schema.PropertyDescription) {
	if incoming.Type != "" {
		acc.Type = incoming.Type
		delete(acc.Invalid, "type")
	}
	if incoming.Description != nil {
		d := *incoming.Description
		acc.Description = &d
		delete(acc.Invalid, "description")
	}
	overwriteFlag(acc, &acc.Writable, incoming.Writable, "writable")
	overwriteFlag(acc, &acc.Readable, incoming.Readable, "readable")
	overwriteFlag(acc, &acc.Identifier, incoming.Identifier, "identifier")
	overwriteFlag(acc, &acc.Required, incoming.Required, "required")
	if incoming.Default != nil {
		acc.Default = document.Clone(incoming.Default)
	}
	if incoming.OpenAPIContext != nil {
		acc.OpenAPIContext = document.Clone(incoming.OpenAPIContext).(*document.Map)
		delete(acc.Invalid, "openapiContext")
	}
	acc.Invalid = mergeInvalid(acc.Invalid, incoming.Invalid)
	acc.SourceFile = incoming.SourceFile
}

func overwriteString(acc *schema.ResourceDescription, dst *string, value, key string) {
	if value == "" {
		return
	}
	*dst = value
	delete(acc.Invalid, key)
}

func overwriteFlag(acc *schema.PropertyDescription, dst **bool, value *bool, key string) {
	if value == nil {
		return
	}
	b := *value
	*dst = &b
	delete(acc.Invalid, key)
}

func mergeInvalid(acc, incoming map[string]any) map[string]any {
	if len(incoming) == 0 {
		return acc
	}
	if acc == nil {
		acc = make(map[string]any, len(incoming))
	}
	for k, v := range incoming {
		acc[k] = document.Clone(v)
	}
	return acc
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
