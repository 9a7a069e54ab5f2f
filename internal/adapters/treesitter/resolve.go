package treesitter

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
)

// resolution is the outcome of resolving one specifier.
type resolution int

const (
	resolvedFile resolution = iota
	unresolvedFile
	externalModule
)

// moduleResolver resolves specifiers against the host's file view.
type moduleResolver struct {
	opts *domain.ProjectOptions
	host ports.CompilerHost
	exts []string
	// patterns holds the paths patterns, most specific prefix first.
	patterns []string
}

func newModuleResolver(opts *domain.ProjectOptions, host ports.CompilerHost) *moduleResolver {
	patterns := slices.Collect(maps.Keys(opts.Paths))
	slices.SortFunc(patterns, func(a, b string) int {
		pa, _, _ := strings.Cut(a, "*")
		pb, _, _ := strings.Cut(b, "*")
		if len(pa) != len(pb) {
			return len(pb) - len(pa)
		}
		return strings.Compare(a, b)
	})
	return &moduleResolver{
		opts:     opts,
		host:     host,
		exts:     resolutionExtensions(opts.AllowJS),
		patterns: patterns,
	}
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".." || filepath.IsAbs(specifier)
}

// resolve maps specifier imported from the file at from to a file path.
func (r *moduleResolver) resolve(from, specifier string) (string, resolution) {
	if isRelative(specifier) {
		target := specifier
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(from), specifier)
		}
		if path, ok := r.tryFile(target); ok {
			return path, resolvedFile
		}
		return "", unresolvedFile
	}

	if path, ok := r.tryPaths(specifier); ok {
		return path, resolvedFile
	}
	if r.opts.BaseURL != "" {
		if path, ok := r.tryFile(filepath.Join(r.opts.BaseURL, specifier)); ok {
			return path, resolvedFile
		}
	}
	return "", externalModule
}

func (r *moduleResolver) tryPaths(specifier string) (string, bool) {
	if len(r.patterns) == 0 {
		return "", false
	}
	base := r.opts.BaseURL
	if base == "" {
		base = r.opts.RootDir
	}

	for _, pattern := range r.patterns {
		captured, ok := matchPattern(pattern, specifier)
		if !ok {
			continue
		}
		for _, sub := range r.opts.Paths[pattern] {
			candidate := strings.Replace(sub, "*", captured, 1)
			if !filepath.IsAbs(candidate) {
				candidate = filepath.Join(base, candidate)
			}
			if path, found := r.tryFile(candidate); found {
				return path, true
			}
		}
	}
	return "", false
}

// matchPattern matches specifier against a paths pattern with at most one "*".
func matchPattern(pattern, specifier string) (string, bool) {
	prefix, suffix, wildcard := strings.Cut(pattern, "*")
	if !wildcard {
		return "", pattern == specifier
	}
	if len(specifier) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// tryFile resolves base as a file, with a known extension appended, or as a
// directory containing an index file.
func (r *moduleResolver) tryFile(base string) (string, bool) {
	base = filepath.Clean(base)

	if _, ok := variantForFile(base, r.opts.AllowJS); ok && r.host.FileExists(base) {
		return base, true
	}

	// TypeScript sources are imported by their emitted .js name.
	if ext := filepath.Ext(base); ext == ".js" || ext == ".jsx" || ext == ".mjs" || ext == ".cjs" {
		stem := strings.TrimSuffix(base, ext)
		for _, tsExt := range []string{".ts", ".tsx", ".d.ts", ".mts", ".cts"} {
			if r.host.FileExists(stem + tsExt) {
				return stem + tsExt, true
			}
		}
	}

	for _, ext := range r.exts {
		if r.host.FileExists(base + ext) {
			return base + ext, true
		}
	}
	for _, ext := range r.exts {
		index := filepath.Join(base, "index"+ext)
		if r.host.FileExists(index) {
			return index, true
		}
	}
	return "", false
}
