package app

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/progcache/internal/adapters/fs"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/progcache/internal/engine/factory"
	"go.trai.ch/progcache/internal/engine/parsecache"
	"go.trai.ch/progcache/internal/engine/programcache"
	"go.trai.ch/progcache/internal/engine/worker"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// session holds the resolved projects and a running worker pool.
type session struct {
	app      *App
	opts     Options
	projects []*domain.ProjectDescriptor
	pool     *worker.Pool
}

// target is one file to serve and the project it belongs to.
type target struct {
	project *domain.ProjectDescriptor
	path    string
	roots   []string
}

func (a *App) openSession(ctx context.Context, opts Options) (*session, error) {
	project := opts.Project
	if project == "" {
		project = "."
	}

	projects, err := a.resolveProjects(project)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load project")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = min(runtime.NumCPU(), len(projects))
	}

	cfg := opts.Cache.WithDefaults()
	homes := workerHomes(projects, workers)
	pool, err := worker.New(workers, func(id int) (*factory.Factory, error) {
		manager, err := programcache.New(cfg, a.logger)
		if err != nil {
			return nil, err
		}
		return factory.New(
			fs.NewContentStore(homes[id]),
			parsecache.New(),
			manager,
			a.frontend,
			a.logger,
			factory.WithTracer(a.tracer),
		), nil
	})
	if err != nil {
		return nil, err
	}
	pool.Start(ctx)

	a.logger.Debug(fmt.Sprintf("resolved %d project(s), %d worker(s)", len(projects), pool.Size()))
	return &session{app: a, opts: opts, projects: projects, pool: pool}, nil
}

// workerHomes returns the content store directory of every worker: the
// directory of the first project routed to it. Requests carry absolute paths,
// so a worker shared by several projects keeps one directory and its cache.
func workerHomes(projects []*domain.ProjectDescriptor, size int) []string {
	homes := make([]string, max(size, 1))
	for _, project := range projects {
		id := worker.Route(project.ConfigPath, len(homes))
		if homes[id] == "" {
			homes[id] = project.Dir()
		}
	}
	for i := range homes {
		if homes[i] == "" {
			homes[i] = projects[0].Dir()
		}
	}
	return homes
}

// resolveProjects loads the descriptor at path and every project it references,
// depth first. Referenced descriptors that fail to load are skipped with a warning.
func (a *App) resolveProjects(path string) ([]*domain.ProjectDescriptor, error) {
	main, err := a.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	projects := []*domain.ProjectDescriptor{main}
	seen := map[string]bool{main.ConfigPath: true}
	queue := slices.Clone(main.References)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if seen[ref.Path] {
			continue
		}
		seen[ref.Path] = true

		desc, err := a.resolver.Resolve(ref.Path)
		if err != nil {
			a.logger.Warn(fmt.Sprintf("skipping referenced project %s: %v", ref.Path, err))
			continue
		}
		projects = append(projects, desc)
		queue = append(queue, desc.References...)
	}
	return projects, nil
}

func (s *session) close() {
	if err := s.pool.Stop(); err != nil {
		s.app.logger.Warn(fmt.Sprintf("worker pool stopped with error: %v", err))
	}
}

// targets maps the requested files to projects. Without files every root of
// every project is a target. A file no project lists is served by the main project.
func (s *session) targets(files []string) ([]target, error) {
	if len(files) == 0 {
		var out []target
		for _, project := range s.projects {
			for _, root := range project.RootNames {
				out = append(out, target{project: project, path: root, roots: project.RootNames})
			}
		}
		if len(out) == 0 {
			return nil, domain.ErrNoFilesToAnalyze
		}
		return out, nil
	}

	out := make([]target, 0, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid file"), "path", file)
		}
		out = append(out, s.owner(abs))
	}
	return out, nil
}

// owner returns the target for path in the first project listing it as a root.
// Unlisted files join the main project's roots.
func (s *session) owner(path string) target {
	for _, project := range s.projects {
		if _, found := slices.BinarySearch(project.RootNames, path); found {
			return target{project: project, path: path, roots: project.RootNames}
		}
	}
	main := s.projects[0]
	roots := append(slices.Clone(main.RootNames), path)
	slices.Sort(roots)
	return target{project: main, path: path, roots: roots}
}

// analyze serves every target and collects the report. Per-file failures are
// recorded in their entry; only setup problems are returned as errors.
func (s *session) analyze(ctx context.Context, files []string) (*Report, error) {
	targets, err := s.targets(files)
	if err != nil {
		return nil, err
	}

	main := s.projects[0]
	entries := make([]Entry, len(targets))

	// Targets of one project go to one worker in order, so outcomes are stable.
	groups := make(map[string][]int)
	var order []string
	for i, t := range targets {
		key := t.project.ConfigPath
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, key := range order {
		g.Go(func() error {
			for _, i := range groups[key] {
				t := targets[i]
				res, err := s.pool.Submit(gctx, key, factory.Request{
					Path:      t.path,
					Options:   t.project.Options,
					RootNames: t.roots,
				})
				entries[i] = newEntry(main.Dir(), t, res, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{
		Project: relPath(main.Dir(), main.ConfigPath),
		Workers: s.pool.Size(),
		Entries: entries,
	}

	if s.opts.Stats {
		stats, err := s.pool.Stats(ctx)
		if err != nil {
			return nil, err
		}
		for id, st := range stats {
			report.Stats = append(report.Stats, newWorkerStats(main.Dir(), id, st))
		}
	}
	return report, nil
}

func newEntry(baseDir string, t target, res factory.Result, err error) Entry {
	entry := Entry{
		Path:    relPath(baseDir, t.path),
		Project: relPath(baseDir, t.project.ConfigPath),
	}
	if err != nil {
		entry.Outcome = OutcomeFailed
		entry.Error = err.Error()
		return entry
	}

	entry.Outcome = string(res.Outcome)
	entry.Files = len(res.Program.SourceFiles())
	for _, changed := range res.Changed {
		entry.Changed = append(entry.Changed, relPath(baseDir, changed))
	}
	if unit, ok := res.Program.SourceFile(t.path); ok {
		entry.SyntaxErrors = unit.SyntaxErrors
	}
	if diag, ok := res.Program.(ports.ProgramDiagnostics); ok {
		entry.Unresolved = diag.Unresolved(t.path)
		entry.Reused = diag.Reused()
	}
	return entry
}

func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
