// Package factory returns programs for requested files, reusing cached programs
// and rebuilding them incrementally when their files changed.
package factory

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/progcache/internal/engine/host"
	"go.trai.ch/progcache/internal/engine/parsecache"
	"go.trai.ch/progcache/internal/engine/programcache"
)

// Outcome describes how a request was served.
type Outcome string

const (
	// OutcomeHit means a cached program was returned without frontend work.
	OutcomeHit Outcome = "hit"
	// OutcomeRebuilt means a cached program was rebuilt incrementally.
	OutcomeRebuilt Outcome = "rebuilt"
	// OutcomeBuilt means a new program was built from scratch.
	OutcomeBuilt Outcome = "built"
)

// Request asks for a program covering Path.
type Request struct {
	// BaseDir scopes relative paths. Switching it clears the content store.
	BaseDir string
	// Path is the requested file.
	Path string
	// Options are the project's compiler options. Nil means defaults.
	Options *domain.ProjectOptions
	// RootNames are the roots of a new program. Empty means Path alone.
	RootNames []string
	// Content, when non-nil, is the caller's current content of Path. It takes
	// precedence over the file on disk.
	Content []byte
}

// Result is a served request.
type Result struct {
	Program ports.Program
	Outcome Outcome
	Key     domain.CacheKey
	// Changed lists the files whose drift triggered a rebuild.
	Changed []string
}

// Option configures a Factory.
type Option func(*Factory)

// WithTracer sets the tracer spans are recorded with.
func WithTracer(tracer trace.Tracer) Option {
	return func(f *Factory) {
		f.tracer = tracer
	}
}

// Factory wires one worker's cache stack together. It is not safe for concurrent use.
type Factory struct {
	content  ports.ContentStore
	units    *parsecache.Cache
	manager  *programcache.Manager
	frontend ports.Frontend
	logger   ports.Logger
	tracer   trace.Tracer
}

// New creates a Factory over the given cache stack.
func New(
	content ports.ContentStore,
	units *parsecache.Cache,
	manager *programcache.Manager,
	frontend ports.Frontend,
	logger ports.Logger,
	opts ...Option,
) *Factory {
	f := &Factory{
		content:  content,
		units:    units,
		manager:  manager,
		frontend: frontend,
		logger:   logger,
		tracer:   otel.Tracer("go.trai.ch/progcache/factory"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetOrCreateProgram returns a program covering req.Path.
func (f *Factory) GetOrCreateProgram(ctx context.Context, req Request) (ports.Program, error) {
	res, err := f.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Program, nil
}

// Resolve serves req and reports how it was served.
//
// A cached program that discovered the path is returned as is when none of its
// files changed. When any did, the changed files are pushed into the program's
// host and the frontend rebuilds with the cached program as baseline. Otherwise a
// new program is built and cached. A failed build leaves the cache untouched.
func (f *Factory) Resolve(ctx context.Context, req Request) (Result, error) {
	ctx, span := f.tracer.Start(ctx, "Factory.GetOrCreateProgram",
		trace.WithAttributes(attribute.String("progcache.path", req.Path)),
	)
	defer span.End()

	res, err := f.resolve(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return Result{}, err
	}

	span.SetAttributes(
		attribute.String("progcache.outcome", string(res.Outcome)),
		attribute.String("progcache.key", string(res.Key)),
		attribute.Int("progcache.files", len(res.Program.SourceFiles())),
		attribute.Int("progcache.changed", len(res.Changed)),
	)
	return res, nil
}

func (f *Factory) resolve(ctx context.Context, req Request) (Result, error) {
	opts, err := req.Options.Normalize()
	if err != nil {
		return Result{}, errors.Join(domain.ErrProjectConfig, err)
	}
	optionsHash := opts.Hash()

	if req.BaseDir != "" {
		f.content.SetBaseDir(req.BaseDir)
	}
	path := domain.NormalizePath(f.content.BaseDir(), req.Path)
	if path == "" {
		return Result{}, domain.ErrNoRootFiles
	}
	if req.Content != nil {
		f.content.Preload(path, req.Content)
	}

	if lookup, ok := f.manager.FindProgramForFile(path, optionsHash); ok {
		return f.reuse(ctx, path, req.RootNames, lookup, opts, optionsHash)
	}
	return f.build(ctx, path, req.RootNames, opts, optionsHash)
}

func (f *Factory) reuse(
	ctx context.Context,
	path string,
	rootNames []string,
	lookup programcache.Lookup,
	opts *domain.ProjectOptions,
	optionsHash domain.OptionsHash,
) (Result, error) {
	entry, _ := f.manager.Entry(lookup.Key)
	changed := f.syncDrift(entry, lookup.Host)
	if len(changed) == 0 {
		return Result{Program: lookup.Program, Outcome: OutcomeHit, Key: lookup.Key}, nil
	}

	f.logger.Debug(fmt.Sprintf("program %s: %d changed files, rebuilding", lookup.Key, len(changed)))

	program, err := f.frontend.CreateBuilderProgram(ctx, entry.RootPaths(), opts, lookup.Host, lookup.Program)
	if err != nil {
		return Result{}, errors.Join(domain.ErrBuildFailed, err)
	}

	f.manager.UpdateProgramInCache(lookup.Key, program)
	f.manager.RefreshEntry(lookup.Key)

	// The rebuild may no longer reach path when an importer dropped it.
	if entry, ok := f.manager.Entry(lookup.Key); !ok || !entry.Contains(path) {
		f.logger.Debug(fmt.Sprintf("program %s no longer covers %s, building it separately", lookup.Key, path))
		if !slices.Contains(f.normalizeRoots(path, rootNames), path) {
			rootNames = nil
		}
		return f.build(ctx, path, rootNames, opts, optionsHash)
	}

	return Result{Program: program, Outcome: OutcomeRebuilt, Key: lookup.Key, Changed: changed}, nil
}

func (f *Factory) build(
	ctx context.Context,
	path string,
	rootNames []string,
	opts *domain.ProjectOptions,
	optionsHash domain.OptionsHash,
) (Result, error) {
	roots := f.normalizeRoots(path, rootNames)

	h := host.New(f.content, f.units, f.frontend)
	program, err := f.frontend.CreateBuilderProgram(ctx, roots, opts, h, nil)
	if err != nil {
		return Result{}, errors.Join(domain.ErrBuildFailed, err)
	}

	key := f.manager.StoreProgram(roots, program, h, optionsHash)
	return Result{Program: program, Outcome: OutcomeBuilt, Key: key}, nil
}

// syncDrift compares the current content of every file of entry with the hash
// recorded when the entry was last refreshed, and pushes changes into h.
func (f *Factory) syncDrift(entry *domain.CacheEntry, h *host.Host) []string {
	var changed []string
	for _, path := range entry.FilePaths() {
		recorded, known := entry.FileHashes[domain.InternPath(path)]
		content, exists := f.content.Read(path)

		switch {
		case !exists && !known:
			continue
		case !exists:
			h.RemoveFile(path)
		case known && domain.HashContent(content) == recorded:
			continue
		default:
			h.UpdateFile(path, content)
		}
		changed = append(changed, path)
	}
	return changed
}

func (f *Factory) normalizeRoots(path string, rootNames []string) []string {
	if len(rootNames) == 0 {
		return []string{path}
	}
	roots := make([]string, 0, len(rootNames))
	for _, root := range rootNames {
		roots = append(roots, domain.NormalizePath(f.content.BaseDir(), root))
	}
	return roots
}

// Invalidate drops the cached content of paths so the next request observes disk.
func (f *Factory) Invalidate(paths ...string) {
	for _, path := range paths {
		f.content.Invalidate(path)
	}
}

// Stats returns the program cache statistics.
func (f *Factory) Stats() domain.CacheStats {
	return f.manager.GetCacheStats()
}

// ParsedUnits returns the number of memoized parses.
func (f *Factory) ParsedUnits() int {
	return f.units.Len()
}

// Clear drops every cached program, parse and file content.
func (f *Factory) Clear() {
	f.manager.Clear()
	f.units.Clear()
	f.content.Clear()
}
