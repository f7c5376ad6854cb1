package generator

import (
	"encoding/json"
	"time"

	"github.com/conduit-lang/apischema/internal/schema"
	"github.com/conduit-lang/apischema/internal/schema/document"
)

// ManifestRenderer renders the artifact model as a JSON manifest, for
// tooling that consumes resource metadata without parsing source code.
type ManifestRenderer struct{}

// NewManifestRenderer creates the JSON manifest renderer
func NewManifestRenderer() *ManifestRenderer {
	return &ManifestRenderer{}
}

func (r *ManifestRenderer) Name() string      { return "json" }
func (r *ManifestRenderer) Extension() string { return ".json" }

// Reserved is empty: a manifest imports nothing
func (r *ManifestRenderer) Reserved(*schema.MergedResourceDescription) map[string]bool {
	return nil
}

type manifest struct {
	Symbol          string              `json:"symbol"`
	Namespace       string              `json:"namespace"`
	APIType         string              `json:"api_type"`
	Resource        string              `json:"resource"`
	ShortName       string              `json:"short_name,omitempty"`
	Description     string              `json:"description,omitempty"`
	Provider        string              `json:"provider,omitempty"`
	Processor       string              `json:"processor,omitempty"`
	Pagination      *int                `json:"pagination_items_per_page,omitempty"`
	Operations      []manifestOperation `json:"operations"`
	Properties      []manifestProperty  `json:"properties"`
	Imports         []Symbol            `json:"imports"`
	SourceFiles     []string            `json:"source_files"`
	ValidationFiles []string            `json:"validation_files,omitempty"`
	GeneratedAt     *time.Time          `json:"generated_at,omitempty"`
}

type manifestOperation struct {
	Kind             schema.OperationKind `json:"kind"`
	ValidationGroups []string             `json:"validation_groups,omitempty"`
	Security         string               `json:"security,omitempty"`
}

type manifestProperty struct {
	Name           string               `json:"name"`
	Type           string               `json:"type"`
	Description    string               `json:"description,omitempty"`
	Writable       bool                 `json:"writable"`
	Readable       bool                 `json:"readable"`
	Identifier     bool                 `json:"identifier"`
	Required       bool                 `json:"required"`
	Default        any                  `json:"default,omitempty"`
	OpenAPIContext *document.Map        `json:"openapi_context,omitempty"`
	Constraints    []manifestConstraint `json:"constraints,omitempty"`
}

type manifestConstraint struct {
	Name       string   `json:"name"`
	Alias      string   `json:"alias,omitempty"`
	Definition any      `json:"definition"`
	Groups     []string `json:"groups"`
}

// Render produces indented JSON
func (r *ManifestRenderer) Render(m *Model) ([]byte, error) {
	out := manifest{
		Symbol:          m.Symbol,
		Namespace:       m.Namespace,
		APIType:         m.APIType,
		Resource:        m.Resource,
		ShortName:       m.ShortName,
		Description:     m.Description,
		Provider:        m.Provider,
		Processor:       m.Processor,
		Pagination:      m.Pagination,
		Operations:      []manifestOperation{},
		Properties:      []manifestProperty{},
		Imports:         m.Symbols.Symbols(),
		SourceFiles:     m.SourceFiles,
		ValidationFiles: m.ValidationFiles,
	}
	if out.Imports == nil {
		out.Imports = []Symbol{}
	}
	if !m.GeneratedAt.IsZero() {
		at := m.GeneratedAt.UTC()
		out.GeneratedAt = &at
	}

	for _, op := range m.Operations {
		out.Operations = append(out.Operations, manifestOperation{
			Kind:             op.Kind,
			ValidationGroups: op.Groups,
			Security:         op.Security,
		})
	}

	for _, p := range m.Properties {
		mp := manifestProperty{
			Name:           p.Name,
			Type:           p.Type,
			Description:    p.Description,
			Writable:       p.Writable,
			Readable:       p.Readable,
			Identifier:     p.Identifier,
			Required:       p.Required,
			Default:        p.Default,
			OpenAPIContext: p.OpenAPIContext,
		}
		for _, gc := range p.Constraints {
			mc := manifestConstraint{
				Name:       gc.Constraint.NormalizedName(),
				Definition: gc.Constraint.Raw(),
				Groups:     gc.Groups,
			}
			if gc.Constraint.IsQualified() {
				mc.Alias = m.Symbols.Alias(gc.Constraint.Name)
			}
			mp.Constraints = append(mp.Constraints, mc)
		}
		out.Properties = append(out.Properties, mp)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
