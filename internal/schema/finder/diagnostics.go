package finder

import (
	"fmt"
	"path/filepath"

	utilstrings "github.com/conduit-lang/apischema/internal/util/strings"
)

// Diagnostics explains what a discovery run looked at. It is attached to
// "nothing found" errors so they can be acted on without re-running.
type Diagnostics struct {
	APIType             string   `json:"api_type" yaml:"api_type"`
	ConfiguredSources   []string `json:"configured_sources" yaml:"configured_sources"`
	SearchPattern       string   `json:"search_pattern" yaml:"search_pattern"`
	SearchedPaths       []string `json:"searched_paths" yaml:"searched_paths"`
	ExistingDirectories []string `json:"existing_directories" yaml:"existing_directories"`
	SkippedDirectories  []string `json:"skipped_directories" yaml:"skipped_directories"`
	DirectoriesFound    int      `json:"directories_found_count" yaml:"directories_found_count"`
}

// Diagnostics describes resource schema discovery for apiType
func (f *Finder) Diagnostics(apiType string) *Diagnostics {
	return f.diagnostics(apiType, "")
}

// ValidationDiagnostics describes validation schema discovery for apiType
func (f *Finder) ValidationDiagnostics(apiType string) *Diagnostics {
	return f.diagnostics(apiType, "/*.validation.yml")
}

func (f *Finder) diagnostics(apiType, fileSuffix string) *Diagnostics {
	lookup := utilstrings.NormalizeAPITypeForLookup(apiType)

	d := &Diagnostics{
		APIType:             lookup,
		ConfiguredSources:   f.Sources(),
		SearchPattern:       fmt.Sprintf(SearchPatternTemplate, lookup) + fileSuffix,
		SearchedPaths:       make([]string, 0, len(f.sources)),
		ExistingDirectories: []string{},
		SkippedDirectories:  []string{},
	}

	for _, root := range f.sources {
		d.SearchedPaths = append(d.SearchedPaths,
			filepath.ToSlash(filepath.Join(root, "*", "*", "resources", "api", lookup))+fileSuffix)
		if isDir(root) {
			d.ExistingDirectories = append(d.ExistingDirectories, root)
		} else {
			d.SkippedDirectories = append(d.SkippedDirectories, root)
		}
	}

	if dirs, err := f.Directories(apiType); err == nil {
		d.DirectoriesFound = len(dirs)
	}

	return d
}
