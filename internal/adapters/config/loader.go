// Package config resolves project descriptors for progcache.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/progcache/internal/adapters/fs"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// defaultExclude is applied when a descriptor sets no exclude list.
var defaultExclude = []string{"node_modules", "bower_components", "jspm_packages"}

// Loader implements ports.ProjectResolver for tsconfig-style descriptors.
type Loader struct {
	Logger   ports.Logger
	resolver *fs.Resolver
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, resolver *fs.Resolver) *Loader {
	return &Loader{Logger: logger, resolver: resolver}
}

// resolved is a descriptor with its extends chain applied.
// Directory-valued options are absolute.
type resolved struct {
	options    CompilerOptionsDTO
	files      []string
	filesDir   string
	include    []string
	includeDir string
	exclude    []string
	excludeDir string
	references []domain.ProjectReference
}

// Resolve loads the descriptor at path. When path is a directory the nearest
// descriptor at or above it is used.
func (l *Loader) Resolve(path string) (*domain.ProjectDescriptor, error) {
	configPath, err := l.findConfiguration(path)
	if err != nil {
		return nil, errors.Join(domain.ErrProjectConfig, err)
	}

	r, err := l.loadChain(configPath, nil)
	if err != nil {
		return nil, errors.Join(domain.ErrProjectConfig, err)
	}

	opts := r.options.toDomain()
	roots, err := l.selectRoots(configPath, r, opts)
	if err != nil {
		return nil, errors.Join(domain.ErrProjectConfig, err)
	}
	if len(roots) == 0 {
		l.Logger.Warn(fmt.Sprintf("no input files found for %s", configPath))
	}

	return &domain.ProjectDescriptor{
		ConfigPath: configPath,
		RootNames:  roots,
		Options:    opts,
		References: r.references,
	}, nil
}

func (l *Loader) findConfiguration(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", abs)
	}
	if !info.IsDir() {
		return abs, nil
	}

	currentDir := abs
	for {
		for _, name := range DescriptorNames {
			candidate := filepath.Join(currentDir, name)
			if isFile(candidate) {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.New("project descriptor not found"), "cwd", abs)
}

func (l *Loader) loadChain(configPath string, chain []string) (*resolved, error) {
	if slices.Contains(chain, configPath) {
		cycle := append(slices.Clone(chain), configPath)
		return nil, zerr.With(domain.ErrConfigCycle, "chain", strings.Join(cycle, " -> "))
	}
	chain = append(chain, configPath)

	var desc Descriptor
	if err := readDescriptor(configPath, &desc); err != nil {
		return nil, err
	}
	dir := filepath.Dir(configPath)

	r := &resolved{}
	for _, ext := range desc.Extends {
		basePath, err := resolveExtends(dir, ext)
		if err != nil {
			return nil, zerr.With(err, "config", configPath)
		}
		base, err := l.loadChain(basePath, chain)
		if err != nil {
			return nil, err
		}
		r.inherit(base)
	}

	r.apply(&desc, dir)
	return r, nil
}

// inherit overlays base on r. References are never inherited.
func (r *resolved) inherit(base *resolved) {
	r.options.overlay(&base.options)
	if base.files != nil {
		r.files, r.filesDir = base.files, base.filesDir
	}
	if base.include != nil {
		r.include, r.includeDir = base.include, base.includeDir
	}
	if base.exclude != nil {
		r.exclude, r.excludeDir = base.exclude, base.excludeDir
	}
}

// apply overlays a descriptor located in dir on r.
func (r *resolved) apply(desc *Descriptor, dir string) {
	if desc.Files != nil {
		r.files, r.filesDir = desc.Files, dir
	}
	if desc.Include != nil {
		r.include, r.includeDir = desc.Include, dir
	}
	if desc.Exclude != nil {
		r.exclude, r.excludeDir = desc.Exclude, dir
	}

	r.references = nil
	for _, ref := range desc.References {
		target := absolute(dir, ref.Path)
		if isDir(target) {
			target = filepath.Join(target, DescriptorNames[0])
		}
		r.references = append(r.references, domain.ProjectReference{Path: target})
	}

	if desc.CompilerOptions == nil {
		return
	}
	own := *desc.CompilerOptions
	own.BaseURL = absolutePtr(dir, own.BaseURL)
	own.RootDir = absolutePtr(dir, own.RootDir)
	own.OutDir = absolutePtr(dir, own.OutDir)
	r.options.overlay(&own)

	if own.Paths != nil && r.options.BaseURL == nil {
		rebased := make(map[string][]string, len(own.Paths))
		for pattern, subs := range own.Paths {
			abs := make([]string, len(subs))
			for i, sub := range subs {
				abs[i] = absolute(dir, sub)
			}
			rebased[pattern] = abs
		}
		r.options.Paths = rebased
	}
}

func (l *Loader) selectRoots(configPath string, r *resolved, opts *domain.ProjectOptions) ([]string, error) {
	dir := filepath.Dir(configPath)

	seen := make(map[string]struct{})
	var roots []string
	add := func(paths []string) {
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			roots = append(roots, p)
		}
	}

	if r.files != nil {
		files, err := l.resolver.ResolveFiles(r.filesDir, r.files)
		if err != nil {
			return nil, zerr.With(err, "config", configPath)
		}
		add(files)
	}

	include, includeDir := r.include, r.includeDir
	if include == nil && r.files == nil {
		include, includeDir = []string{"**/*"}, dir
	}
	if include == nil {
		slices.Sort(roots)
		return roots, nil
	}

	for root, patterns := range groupByRoot(includeDir, include) {
		exclude := rebaseGlobs(r.excludeDir, root, r.exclude)
		if r.exclude == nil {
			exclude = defaultExcludes(root, opts.OutDir)
		}

		matches, err := l.resolver.ResolveGlobs(root, patterns, exclude)
		if err != nil {
			return nil, zerr.With(err, "config", configPath)
		}
		add(slices.DeleteFunc(matches, func(p string) bool {
			return !isSourceFile(p, opts.AllowJS)
		}))
	}

	slices.Sort(roots)
	return roots, nil
}

// groupByRoot splits include patterns that climb out of dir ("../src/**") into
// a walk root and a pattern relative to it.
func groupByRoot(dir string, patterns []string) map[string][]string {
	groups := make(map[string][]string)
	for _, pattern := range patterns {
		slashed := filepath.ToSlash(pattern)
		if !strings.HasPrefix(slashed, "../") && !filepath.IsAbs(pattern) {
			groups[dir] = append(groups[dir], pattern)
			continue
		}
		base, rest := doublestar.SplitPattern(slashed)
		root := absolute(dir, base)
		groups[root] = append(groups[root], rest)
	}
	return groups
}

func defaultExcludes(root, outDir string) []string {
	exclude := slices.Clone(defaultExclude)
	if outDir == "" {
		return exclude
	}
	if rel, err := filepath.Rel(root, outDir); err == nil && !strings.HasPrefix(rel, "..") {
		exclude = append(exclude, filepath.ToSlash(rel))
	}
	return exclude
}

// rebaseGlobs rewrites patterns written relative to from so they are relative to to.
func rebaseGlobs(from, to string, patterns []string) []string {
	if from == "" || from == to {
		return patterns
	}
	prefix, err := filepath.Rel(to, from)
	if err != nil || strings.HasPrefix(prefix, "..") {
		return patterns
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = filepath.ToSlash(filepath.Join(prefix, p))
	}
	return out
}

func isSourceFile(path string, allowJS bool) bool {
	name := strings.ToLower(path)
	switch filepath.Ext(name) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	case ".js", ".jsx", ".mjs", ".cjs":
		return allowJS
	}
	return false
}

// resolveExtends locates an extended descriptor. Relative specifiers resolve
// against dir; bare specifiers are looked up in node_modules directories upward.
func resolveExtends(dir, spec string) (string, error) {
	if filepath.IsAbs(spec) || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return withJSONExt(absolute(dir, spec))
	}

	for current := dir; ; current = filepath.Dir(current) {
		candidate := filepath.Join(current, "node_modules", filepath.FromSlash(spec))
		if isDir(candidate) {
			candidate = filepath.Join(candidate, DescriptorNames[0])
		}
		if path, err := withJSONExt(candidate); err == nil {
			return path, nil
		}
		if filepath.Dir(current) == current {
			break
		}
	}
	return "", zerr.With(zerr.New("extended descriptor not found"), "extends", spec)
}

func withJSONExt(path string) (string, error) {
	if isFile(path) {
		return path, nil
	}
	if filepath.Ext(path) != ".json" && isFile(path+".json") {
		return path + ".json", nil
	}
	return "", zerr.With(zerr.New("extended descriptor not found"), "path", path)
}

// readDescriptor reads a JSON, JSON-with-comments or YAML descriptor.
func readDescriptor(configPath string, target *Descriptor) error {
	// #nosec G304 -- configPath is resolved by the caller
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	if parseErr := decodeDescriptor(configPath, data, target); parseErr != nil {
		return zerr.With(zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	return nil
}

func absolute(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, filepath.FromSlash(path))
}

func absolutePtr(dir string, path *string) *string {
	if path == nil {
		return nil
	}
	abs := absolute(dir, *path)
	return &abs
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
