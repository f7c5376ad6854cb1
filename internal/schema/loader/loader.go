// Package loader reads resource schema files and checks their envelope: an
// object root holding a "resource" object whose properties and operations
// sections are mappings or lists.
package loader

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema/document"
)

// RootKey is the top-level key every resource schema file must declare
const RootKey = "resource"

//go:embed resources/resource-envelope.json
var envelopeSchema []byte

const envelopeURL = "resource-envelope.json"

var compiledEnvelope = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(envelopeURL, bytes.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("failed to add envelope schema: %w", err)
	}
	s, err := c.Compile(envelopeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile envelope schema: %w", err)
	}
	return s, nil
})

// Document is a loaded resource schema file
type Document struct {
	Path     string
	Resource *document.Map
}

// Loader reads resource schema files
type Loader struct{}

// NewLoader creates a resource schema loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and checks one resource schema file
func (l *Loader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apierrors.NewFileUnreadable(path, err)
	}
	return l.LoadBytes(path, data)
}

// LoadBytes decodes and checks resource schema content read from path
func (l *Loader) LoadBytes(path string, data []byte) (*Document, error) {
	raw, err := document.Decode(data)
	if err != nil {
		return nil, apierrors.NewMalformedYAML(path, document.ErrorLine(err), err)
	}

	if raw == nil {
		return nil, apierrors.NewInvalidRootShape(path, "document is empty")
	}

	if err := checkEnvelope(path, raw); err != nil {
		return nil, err
	}

	root, _ := document.AsMap(raw)
	value, _ := root.Get(RootKey)
	resource, _ := document.AsMap(value)

	return &Document{Path: path, Resource: resource}, nil
}

func checkEnvelope(path string, raw any) error {
	schema, err := compiledEnvelope()
	if err != nil {
		return apierrors.NewInvalidRootShape(path, err.Error()).WithCause(err)
	}

	plain, err := document.Plain(raw)
	if err != nil {
		return apierrors.NewInvalidRootShape(path, err.Error()).WithCause(err)
	}

	err = schema.Validate(plain)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return apierrors.NewInvalidRootShape(path, err.Error()).WithCause(err)
	}

	return envelopeError(path, leaf(validationErr))
}

// envelopeError maps the most specific schema violation to a discovery error
func envelopeError(path string, v *jsonschema.ValidationError) *apierrors.PipelineError {
	segments := strings.Split(strings.TrimPrefix(v.InstanceLocation, "/"), "/")

	switch {
	case v.InstanceLocation == "" && strings.Contains(v.Message, "missing properties"):
		return apierrors.NewMissingRootKey(path, RootKey)
	case v.InstanceLocation == "":
		return apierrors.NewInvalidRootShape(path, "root must be a mapping, "+v.Message)
	case len(segments) == 1:
		return apierrors.NewInvalidRootShape(path, fmt.Sprintf("%q must be a mapping, %s", RootKey, v.Message))
	default:
		return apierrors.NewInvalidSection(path, segments[1], v.Message)
	}
}

func leaf(v *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(v.Causes) > 0 {
		v = v.Causes[0]
	}
	return v
}
