package domain

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ContentHash is a fixed-size digest identifying file content.
type ContentHash uint64

// HashContent computes the ContentHash of the given bytes.
func HashContent(content []byte) ContentHash {
	return ContentHash(xxhash.Sum64(content))
}

// String returns the hash as a zero-padded hex string.
func (h ContentHash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// TargetVariant is the language dialect a file is parsed with.
type TargetVariant string

const (
	// VariantTypeScript parses .ts, .mts, .cts and .d.ts files.
	VariantTypeScript TargetVariant = "typescript"
	// VariantTSX parses .tsx files.
	VariantTSX TargetVariant = "tsx"
	// VariantJavaScript parses .js, .jsx, .mjs and .cjs files.
	VariantJavaScript TargetVariant = "javascript"
)

// SourceIdentity identifies a file as observed by a compiler host.
type SourceIdentity struct {
	Path    string
	Version int
	Hash    ContentHash
}

// VersionString returns the version in the form the frontend uses for its own diffing.
func (s SourceIdentity) VersionString() string {
	return strconv.Itoa(s.Version)
}

// ParsedUnit is the immutable parse result of one file under one variant.
// Units are shared between programs; AST must never be mutated after parsing.
type ParsedUnit struct {
	Path    string
	Variant TargetVariant
	Hash    ContentHash
	// Version is the host version string the unit was handed out with.
	Version string
	// AST is the frontend's syntax tree. Its concrete type belongs to the frontend.
	AST any
	// Imports lists the raw module specifiers found in the file, in source order.
	Imports []string
	// SyntaxErrors counts error nodes recovered by the parser.
	SyntaxErrors int
}

// WithVersion returns a shallow copy of the unit tagged with the given version.
func (u *ParsedUnit) WithVersion(version string) *ParsedUnit {
	clone := *u
	clone.Version = version
	return &clone
}

// NormalizePath returns the cleaned absolute form of path.
// Relative paths are resolved against baseDir.
func NormalizePath(baseDir, path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return filepath.Clean(path)
}
