package fs

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"
)

// Resolver expands include/exclude glob patterns into concrete files.
// Patterns are slash separated, relative to the root, and support "**".
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveGlobs returns the sorted absolute paths under root matching any include
// pattern and no exclude pattern. A pattern without a wildcard that names a
// directory includes everything below it.
func (r *Resolver) ResolveGlobs(root string, include, exclude []string) ([]string, error) {
	includes, err := normalizePatterns(include)
	if err != nil {
		return nil, err
	}
	excludes, err := normalizePatterns(exclude)
	if err != nil {
		return nil, err
	}

	var result []string
	for path := range r.walker.WalkFiles(root, excludes) {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if matchesAny(includes, rel) {
			result = append(result, path)
		}
	}

	slices.Sort(result)
	return result, nil
}

// ResolveFiles resolves explicit file entries against root. Missing files are an error.
func (r *Resolver) ResolveFiles(root string, files []string) ([]string, error) {
	result := make([]string, 0, len(files))
	for _, file := range files {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		path = filepath.Clean(path)
		if !fileExists(path) {
			return nil, zerr.With(zerr.New("input not found"), "path", path)
		}
		result = append(result, path)
	}
	return result, nil
}

func normalizePatterns(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns)*2)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		pattern = strings.TrimSuffix(pattern, "/")
		if pattern == "" || pattern == "." {
			pattern = "**"
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(zerr.New("invalid glob pattern"), "pattern", pattern)
		}
		out = append(out, pattern)
		// A bare directory name selects its whole subtree.
		if !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, pattern+"/**")
		}
	}
	return out, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
