package schema

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Layer is one of the fixed override tiers, in ascending precedence
type Layer string

const (
	// LayerCore is the base layer shipped by the framework vendor
	LayerCore Layer = "core"
	// LayerFeature is the extension layer contributed by feature packages
	LayerFeature Layer = "feature"
	// LayerProject is the override layer owned by the project
	LayerProject Layer = "project"
)

// Layers lists every layer in ascending precedence
var Layers = []Layer{LayerCore, LayerFeature, LayerProject}

// Rank returns the precedence of the layer, or -1 for unknown layers
func (l Layer) Rank() int {
	for i, layer := range Layers {
		if layer == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is one of the fixed layers
func (l Layer) Valid() bool {
	return l.Rank() >= 0
}

// Label returns the upper-case display label (CORE, FEATURE, PROJECT)
func (l Layer) Label() string {
	return strings.ToUpper(string(l))
}

// ParseLayer converts a string into a Layer
func ParseLayer(s string) (Layer, error) {
	l := Layer(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown layer %q", s)
	}
	return l, nil
}

// LayerResolver detects the layer of a schema file from its path. A path
// containing one of the project markers is project-layer, one containing a
// feature marker is feature-layer, everything else is core.
type LayerResolver struct {
	project []string
	feature []string
}

// DefaultProjectMarkers and DefaultFeatureMarkers follow the conventional
// directory layout of project and feature code.
var (
	DefaultProjectMarkers = []string{"/Pyz/"}
	DefaultFeatureMarkers = []string{"/SprykerFeature/"}
)

// NewLayerResolver creates a resolver from path markers. Empty marker lists
// fall back to the defaults.
func NewLayerResolver(project, feature []string) *LayerResolver {
	if len(project) == 0 {
		project = DefaultProjectMarkers
	}
	if len(feature) == 0 {
		feature = DefaultFeatureMarkers
	}
	return &LayerResolver{project: project, feature: feature}
}

// DefaultLayerResolver returns a resolver using the default markers
func DefaultLayerResolver() *LayerResolver {
	return NewLayerResolver(nil, nil)
}

// Resolve returns the layer of path
func (r *LayerResolver) Resolve(path string) Layer {
	slashed := filepath.ToSlash(path)
	for _, marker := range r.project {
		if strings.Contains(slashed, marker) {
			return LayerProject
		}
	}
	for _, marker := range r.feature {
		if strings.Contains(slashed, marker) {
			return LayerFeature
		}
	}
	return LayerCore
}
