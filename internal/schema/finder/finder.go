// Package finder locates resource and validation schema files for an api
// type across the configured source roots, and explains empty results.
package finder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	utilstrings "github.com/conduit-lang/apischema/internal/util/strings"
)

// File suffix families
var (
	ResourceSuffixes   = []string{".resource.yml", ".resource.yaml"}
	ValidationSuffixes = []string{".validation.yml", ".validation.yaml"}
)

// SearchPatternTemplate is the human-readable layout schema files live in
const SearchPatternTemplate = "{OrganizationName}/{ModuleName}/resources/api/%s"

// skippedDirNames are never descended into
var skippedDirNames = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Finder discovers schema files below a set of source roots. A schema
// directory is any directory whose path ends in resources/api/{apitype}.
type Finder struct {
	sources []string
	logger  *zap.Logger
}

// Option configures a Finder
type Option func(*Finder)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// New creates a finder over the given source roots
func New(sources []string, opts ...Option) *Finder {
	f := &Finder{
		sources: append([]string(nil), sources...),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Sources returns the configured source roots
func (f *Finder) Sources() []string {
	return append([]string(nil), f.sources...)
}

// FindResourceFiles returns every resource schema file for apiType, sorted
func (f *Finder) FindResourceFiles(apiType string) ([]string, error) {
	return f.findFiles(apiType, ResourceSuffixes)
}

// FindValidationFiles returns every validation schema file for apiType, sorted
func (f *Finder) FindValidationFiles(apiType string) ([]string, error) {
	return f.findFiles(apiType, ValidationSuffixes)
}

// Directories returns every schema directory for apiType, sorted
func (f *Finder) Directories(apiType string) ([]string, error) {
	lookup := utilstrings.NormalizeAPITypeForLookup(apiType)

	var dirs []string
	for _, root := range f.sources {
		if !isDir(root) {
			continue
		}
		found, err := walkSchemaDirectories(root, func(apiSegment string) bool {
			return strings.ToLower(apiSegment) == lookup
		})
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, found...)
	}

	sort.Strings(dirs)
	return dirs, nil
}

// DiscoverAPITypes lists the api type directory names present below the
// source roots, lower-cased, sorted and unique.
func (f *Finder) DiscoverAPITypes() ([]string, error) {
	seen := make(map[string]bool)
	for _, root := range f.sources {
		if !isDir(root) {
			continue
		}
		found, err := walkSchemaDirectories(root, func(string) bool { return true })
		if err != nil {
			return nil, err
		}
		for _, dir := range found {
			seen[strings.ToLower(filepath.Base(dir))] = true
		}
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

func (f *Finder) findFiles(apiType string, suffixes []string) ([]string, error) {
	dirs, err := f.Directories(apiType)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !hasSuffix(entry.Name(), suffixes) {
				continue
			}
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)

	f.logger.Debug("schema files discovered",
		zap.String("api_type", apiType),
		zap.Strings("suffixes", suffixes),
		zap.Int("directories", len(dirs)),
		zap.Int("files", len(files)),
	)

	return files, nil
}

// walkSchemaDirectories returns directories below root shaped like
// .../resources/api/{segment} for which accept(segment) is true.
func walkSchemaDirectories(root string, accept func(apiSegment string) bool) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtrees are skipped rather than failing discovery
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			return nil
		}
		if path != root && skippedDirNames[d.Name()] {
			return filepath.SkipDir
		}

		parent := filepath.Dir(path)
		if filepath.Base(parent) == "api" && filepath.Base(filepath.Dir(parent)) == "resources" {
			if accept(d.Name()) {
				dirs = append(dirs, path)
			}
			return filepath.SkipDir
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return dirs, nil
}

// ResourceKey derives the resource identifier from a schema file name
// (customers.resource.yml -> customers).
func ResourceKey(path string) string {
	base := filepath.Base(path)
	for _, suffix := range append(append([]string(nil), ResourceSuffixes...), ValidationSuffixes...) {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsResourceFile reports whether path carries a resource schema suffix
func IsResourceFile(path string) bool {
	return hasSuffix(filepath.Base(path), ResourceSuffixes)
}

// IsValidationFile reports whether path carries a validation schema suffix
func IsValidationFile(path string) bool {
	return hasSuffix(filepath.Base(path), ValidationSuffixes)
}

func hasSuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
