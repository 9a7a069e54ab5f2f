package domain

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// OptionsHash is a digest of the semantically relevant fields of ProjectOptions.
type OptionsHash string

// ProjectOptions is the compiler configuration a program is built under.
type ProjectOptions struct {
	Target           string
	Module           string
	ModuleResolution string
	JSX              string
	Strict           bool
	AllowJS          bool
	CheckJS          bool
	// BaseURL is the absolute directory non-relative specifiers resolve against.
	BaseURL string
	// Paths maps specifier patterns (at most one "*") to substitutions relative to BaseURL.
	Paths   map[string][]string
	RootDir string
	Lib     []string
	Types   []string

	// Emit-only settings. They never influence analysis and are left out of the hash.
	OutDir      string
	SourceMap   bool
	Declaration bool
	NoEmit      bool
}

var validTargets = map[string]bool{
	"es3": true, "es5": true, "es6": true, "es2015": true, "es2016": true,
	"es2017": true, "es2018": true, "es2019": true, "es2020": true, "es2021": true,
	"es2022": true, "es2023": true, "es2024": true, "esnext": true,
}

var moduleResolutionAliases = map[string]string{
	"classic":  "classic",
	"node":     "node10",
	"node10":   "node10",
	"node16":   "node16",
	"nodenext": "nodenext",
	"bundler":  "bundler",
}

var validJSX = map[string]bool{
	"": true, "preserve": true, "react": true, "react-jsx": true,
	"react-jsxdev": true, "react-native": true,
}

const (
	defaultTarget           = "es5"
	defaultModuleResolution = "node10"
)

// Normalize validates the options and returns a canonical copy.
// Enumerations are lower-cased, defaults applied, lists sorted and deduplicated
// and directories cleaned.
func (o *ProjectOptions) Normalize() (*ProjectOptions, error) {
	if o == nil {
		o = &ProjectOptions{}
	}
	n := *o

	n.Target = strings.ToLower(strings.TrimSpace(n.Target))
	if n.Target == "" {
		n.Target = defaultTarget
	}
	if !validTargets[n.Target] {
		return nil, zerr.With(ErrInvalidTarget, "target", o.Target)
	}

	n.Module = strings.ToLower(strings.TrimSpace(n.Module))

	resolution := strings.ToLower(strings.TrimSpace(n.ModuleResolution))
	if resolution == "" {
		resolution = defaultModuleResolution
	}
	canonical, ok := moduleResolutionAliases[resolution]
	if !ok {
		return nil, zerr.With(ErrInvalidModuleResolution, "module_resolution", o.ModuleResolution)
	}
	n.ModuleResolution = canonical

	n.JSX = strings.ToLower(strings.TrimSpace(n.JSX))
	if !validJSX[n.JSX] {
		return nil, zerr.With(ErrInvalidJSX, "jsx", o.JSX)
	}

	if n.BaseURL != "" {
		n.BaseURL = filepath.Clean(n.BaseURL)
	}
	if n.RootDir != "" {
		n.RootDir = filepath.Clean(n.RootDir)
	}

	if len(n.Paths) > 0 {
		if err := validatePaths(n.Paths); err != nil {
			return nil, err
		}
		n.Paths = maps.Clone(n.Paths)
	}

	n.Lib = canonicalizeList(n.Lib)
	n.Types = canonicalizeList(n.Types)

	return &n, nil
}

func validatePaths(paths map[string][]string) error {
	for pattern, subs := range paths {
		if strings.Count(pattern, "*") > 1 {
			return zerr.With(ErrInvalidPathMapping, "pattern", pattern)
		}
		if len(subs) == 0 {
			return zerr.With(zerr.With(ErrInvalidPathMapping, "pattern", pattern), "reason", "no substitutions")
		}
		for _, sub := range subs {
			if strings.Count(sub, "*") > 1 {
				return zerr.With(zerr.With(ErrInvalidPathMapping, "pattern", pattern), "substitution", sub)
			}
		}
	}
	return nil
}

func canonicalizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]string, len(items))
	for i, item := range items {
		sorted[i] = strings.ToLower(strings.TrimSpace(item))
	}
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// Hash computes the OptionsHash over the fields that affect parsing and binding.
// Call it on normalized options; two option sets that normalize equally hash equally.
func (o *ProjectOptions) Hash() OptionsHash {
	hasher := xxhash.New()

	writeField := func(name, value string) {
		_, _ = hasher.WriteString(name)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(value)
		_, _ = hasher.Write([]byte{0})
	}
	writeBool := func(name string, value bool) {
		if value {
			writeField(name, "true")
			return
		}
		writeField(name, "false")
	}

	writeField("target", o.Target)
	writeField("module", o.Module)
	writeField("moduleResolution", o.ModuleResolution)
	writeField("jsx", o.JSX)
	writeBool("strict", o.Strict)
	writeBool("allowJs", o.AllowJS)
	writeBool("checkJs", o.CheckJS)
	writeField("baseUrl", o.BaseURL)
	writeField("rootDir", o.RootDir)
	writeField("lib", strings.Join(o.Lib, ","))
	writeField("types", strings.Join(o.Types, ","))

	for _, pattern := range slices.Sorted(maps.Keys(o.Paths)) {
		writeField("paths:"+pattern, strings.Join(o.Paths[pattern], ","))
	}
	_, _ = hasher.Write([]byte{0})

	return OptionsHash(ContentHash(hasher.Sum64()).String())
}
