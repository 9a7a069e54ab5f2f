// Package app implements the application layer for progcache.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/progcache/internal/adapters/watcher"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// App runs analyses over the program cache.
type App struct {
	resolver ports.ProjectResolver
	frontend ports.Frontend
	watcher  ports.Watcher
	filter   *watcher.ChangeFilter
	logger   ports.Logger
	tracer   trace.Tracer
	out      io.Writer
}

// New creates a new App instance.
func New(
	resolver ports.ProjectResolver,
	frontend ports.Frontend,
	w ports.Watcher,
	filter *watcher.ChangeFilter,
	log ports.Logger,
) *App {
	return &App{
		resolver: resolver,
		frontend: frontend,
		watcher:  w,
		filter:   filter,
		logger:   log,
		tracer:   otel.Tracer("go.trai.ch/progcache/app"),
		out:      os.Stdout,
	}
}

// WithOutput sets where reports are written.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithTracer sets the tracer the app and its factories record spans with.
func (a *App) WithTracer(tracer trace.Tracer) *App {
	a.tracer = tracer
	return a
}

// Options configure an analysis session.
type Options struct {
	// Project is the descriptor file or a directory to search upward from.
	Project string
	// Files restricts the analysis to these files. Empty means every root file.
	Files []string
	// Cache sizes each worker's program cache.
	Cache domain.CacheConfig
	// Workers is the number of cache stacks. Zero picks one per project, up to the CPU count.
	Workers int
	// JSON writes reports as JSON instead of text.
	JSON bool
	// Stats appends the cache statistics to every report.
	Stats bool
}

// Analyze resolves the project, serves every requested file through the cache
// and writes the report. Failed files are reported and make Analyze return an
// error wrapping domain.ErrBuildFailed.
func (a *App) Analyze(ctx context.Context, opts Options) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, "App.Analyze",
		trace.WithAttributes(
			attribute.String("progcache.project", opts.Project),
			attribute.Int("progcache.requested", len(opts.Files)),
		),
	)
	defer span.End()

	report, err := a.analyze(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
	}
	if report != nil {
		summary := report.Summary()
		span.SetAttributes(
			attribute.Int("progcache.analyzed", len(report.Entries)),
			attribute.Int("progcache.failed", summary.Failed),
		)
	}
	return report, err
}

func (a *App) analyze(ctx context.Context, opts Options) (*Report, error) {
	s, err := a.openSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.close()

	report, err := s.analyze(ctx, opts.Files)
	if err != nil {
		return nil, err
	}
	if err := a.write(report, opts.JSON); err != nil {
		return report, err
	}
	if failed := report.Summary().Failed; failed > 0 {
		return report, errors.Join(domain.ErrBuildFailed,
			zerr.With(zerr.With(zerr.New("files failed"), "failed", failed), "total", len(report.Entries)))
	}
	return report, nil
}

func (a *App) write(report *Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return report.Render(a.out)
}
