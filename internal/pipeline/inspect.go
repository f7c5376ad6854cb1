package pipeline

import (
	"fmt"
	"sort"
	"strings"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/finder"
	"github.com/conduit-lang/apischema/internal/schema/parser"
)

// ResourceSummary lists the files contributing to one resource key
type ResourceSummary struct {
	Key    string
	Layers []schema.Layer
	Files  []string
}

// Resources lists the resource keys of apiType with their contributing
// layers, without parsing anything.
func (o *Orchestrator) Resources(apiType string) ([]ResourceSummary, error) {
	files, err := o.finder.FindResourceFiles(apiType)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*ResourceSummary)
	var keys []string
	for _, file := range files {
		key := finder.ResourceKey(file)
		s, ok := byKey[key]
		if !ok {
			s = &ResourceSummary{Key: key}
			byKey[key] = s
			keys = append(keys, key)
		}
		s.Files = append(s.Files, file)
		layer := o.resolver.Resolve(file)
		if !containsLayer(s.Layers, layer) {
			s.Layers = append(s.Layers, layer)
		}
	}
	sort.Strings(keys)

	out := make([]ResourceSummary, 0, len(keys))
	for _, key := range keys {
		s := byKey[key]
		sort.Slice(s.Layers, func(i, j int) bool { return s.Layers[i].Rank() < s.Layers[j].Rank() })
		out = append(out, *s)
	}
	return out, nil
}

// Inspection is the merged and validated state of one resource
type Inspection struct {
	Resource string
	// Records are the parsed per-file records in layer order
	Records []*schema.ResourceDescription
	// Merged is nil when the merge failed
	Merged     *schema.MergedResourceDescription
	MergeError error
	// Violations holds every validation finding, warnings included
	Violations apierrors.ErrorList
}

// Valid reports whether the resource merged and has no validation errors
func (i *Inspection) Valid() bool {
	return i.MergeError == nil && !i.Violations.HasErrors()
}

// ErrResourceNotFound is returned by Inspect for unknown resource keys
type ErrResourceNotFound struct {
	Resource string
	APIType  string
}

func (e *ErrResourceNotFound) Error() string {
	return fmt.Sprintf("resource %q not found for api type %q", e.Resource, e.APIType)
}

// Inspect loads, merges and validates one resource without generating it.
// Files that fail to load are returned as an error.
func (o *Orchestrator) Inspect(apiType, resource string) (*Inspection, error) {
	matches := func(file string) bool {
		return strings.EqualFold(finder.ResourceKey(file), resource)
	}

	validationFiles, err := o.finder.FindValidationFiles(apiType)
	if err != nil {
		return nil, err
	}
	registry := parser.NewValidationRegistry(o.resolver)
	for _, file := range validationFiles {
		if !matches(file) {
			continue
		}
		table, err := o.validationLoader.Load(file)
		if err != nil {
			return nil, err
		}
		registry.Add(file, table)
	}

	files, err := o.finder.FindResourceFiles(apiType)
	if err != nil {
		return nil, err
	}

	var records []*schema.ResourceDescription
	for _, file := range files {
		if !matches(file) {
			continue
		}
		doc, err := o.loader.Load(file)
		if err != nil {
			return nil, err
		}
		record := o.parser.Parse(doc)
		registry.Attach(record)
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, &ErrResourceNotFound{Resource: resource, APIType: apiType}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Layer.Rank() < records[j].Layer.Rank()
	})

	key := records[0].Key
	insp := &Inspection{Resource: key, Records: records}

	merged, err := o.merger.Merge(records, key, apiType)
	if err != nil {
		insp.MergeError = err
		return insp, nil
	}
	insp.Merged = merged
	insp.Violations = o.validator.Check(merged, baseRecord(merged))

	return insp, nil
}

func containsLayer(layers []schema.Layer, l schema.Layer) bool {
	for _, existing := range layers {
		if existing == l {
			return true
		}
	}
	return false
}
