package treesitter

import (
	"context"

	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Frontend = (*Frontend)(nil)

// Frontend parses with tree-sitter and builds programs. It holds no state and
// may be shared between workers.
type Frontend struct{}

// New creates a Frontend.
func New() *Frontend {
	return &Frontend{}
}

// VariantForFile reports the variant path is parsed with under opts.
func (f *Frontend) VariantForFile(path string, opts *domain.ProjectOptions) (domain.TargetVariant, bool) {
	return variantForFile(path, opts != nil && opts.AllowJS)
}

// CreateBuilderProgram builds the program reachable from roots.
//
// With a baseline, a file whose host version and content hash still match the
// baseline's unit keeps that unit; everything else is fetched through the host.
// Imports of every file are resolved again, so changed dependency edges are
// always picked up.
func (f *Frontend) CreateBuilderProgram(
	ctx context.Context,
	roots []string,
	opts *domain.ProjectOptions,
	host ports.CompilerHost,
	old ports.Program,
) (ports.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, domain.ErrNoRootFiles
	}
	if opts == nil {
		opts = &domain.ProjectOptions{}
	}

	for _, root := range roots {
		if _, ok := f.VariantForFile(root, opts); !ok {
			return nil, zerr.With(domain.ErrUnsupportedFile, "path", root)
		}
		if !host.FileExists(root) {
			return nil, zerr.With(domain.ErrSourceNotFound, "path", root)
		}
	}

	baseline, _ := old.(*Program)
	b := &builder{
		frontend: f,
		host:     host,
		resolver: newModuleResolver(opts, host),
		baseline: baseline,
		program: &Program{
			options:    opts,
			roots:      roots,
			units:      make(map[string]*domain.ParsedUnit),
			deps:       make(map[string][]string),
			unresolved: make(map[string][]string),
			external:   make(map[string][]string),
		},
	}
	if err := b.run(roots); err != nil {
		return nil, err
	}
	return b.program, nil
}

type builder struct {
	frontend *Frontend
	host     ports.CompilerHost
	resolver *moduleResolver
	baseline *Program
	program  *Program
}

func (b *builder) run(roots []string) error {
	queued := make(map[string]bool, len(roots))
	queue := make([]string, 0, len(roots))
	for _, root := range roots {
		if !queued[root] {
			queued[root] = true
			queue = append(queue, root)
		}
	}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		unit, err := b.unit(path)
		if err != nil {
			return err
		}
		b.program.units[path] = unit
		b.program.files = append(b.program.files, path)

		for _, specifier := range unit.Imports {
			target, outcome := b.resolver.resolve(path, specifier)
			switch outcome {
			case unresolvedFile:
				b.program.unresolved[path] = append(b.program.unresolved[path], specifier)
			case externalModule:
				b.program.external[path] = append(b.program.external[path], specifier)
			case resolvedFile:
				b.program.deps[path] = append(b.program.deps[path], target)
				if !queued[target] {
					queued[target] = true
					queue = append(queue, target)
				}
			}
		}
	}
	return nil
}

func (b *builder) unit(path string) (*domain.ParsedUnit, error) {
	variant, ok := b.frontend.VariantForFile(path, b.program.options)
	if !ok {
		return nil, zerr.With(domain.ErrUnsupportedFile, "path", path)
	}

	if b.baseline != nil {
		if prev, found := b.baseline.units[path]; found && prev.Variant == variant &&
			prev.Version == b.host.CreateHash(path) {
			if hash, known := b.host.ContentHash(path); known && hash == prev.Hash {
				b.program.reused++
				return prev, nil
			}
		}
	}

	return b.host.GetSourceFile(path, variant, false)
}
