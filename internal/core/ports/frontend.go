package ports

import (
	"context"

	"go.trai.ch/progcache/internal/core/domain"
)

// Parser turns file content into a parsed unit.
//
//go:generate mockgen -source=frontend.go -destination=mocks/mock_frontend.go -package=mocks
type Parser interface {
	// Parse parses content under the given variant. Implementations must be pure:
	// the same input always yields an equivalent unit.
	Parse(path string, content []byte, variant domain.TargetVariant) (*domain.ParsedUnit, error)
}

// Program is the opaque, fully bound representation of a root set and its
// transitive dependency closure.
type Program interface {
	// RootNames returns the normalized root file paths the program was built from.
	RootNames() []string
	// SourceFiles returns every file the program discovered, roots included.
	SourceFiles() []string
	// SourceFile returns the parsed unit for a discovered file.
	SourceFile(path string) (*domain.ParsedUnit, bool)
}

// CompilerHost is the file-system and parse adapter a frontend builds programs through.
type CompilerHost interface {
	// ReadFile returns the content of path.
	ReadFile(path string) ([]byte, bool)
	// FileExists reports whether path has content.
	FileExists(path string) bool
	// GetSourceFile returns the parsed unit of path. With forceFresh the shared
	// parse cache is bypassed.
	GetSourceFile(path string, variant domain.TargetVariant, forceFresh bool) (*domain.ParsedUnit, error)
	// GetVersion returns the host's version counter for path.
	GetVersion(path string) int
	// CreateHash returns the version string the frontend diffs files by.
	CreateHash(path string) string
	// ContentHash returns the hash of the content the host last observed for path.
	ContentHash(path string) (domain.ContentHash, bool)
}

// Frontend builds programs. It is the only component that parses or binds code.
type Frontend interface {
	Parser

	// VariantForFile reports the variant a file is parsed with under opts, and
	// whether the file is supported at all.
	VariantForFile(path string, opts *domain.ProjectOptions) (domain.TargetVariant, bool)

	// CreateBuilderProgram builds a program for roots. When old is non-nil it is
	// used as the baseline for an incremental rebuild.
	CreateBuilderProgram(
		ctx context.Context,
		roots []string,
		opts *domain.ProjectOptions,
		host CompilerHost,
		old Program,
	) (Program, error)
}
