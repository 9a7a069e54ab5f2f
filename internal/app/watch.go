package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/progcache/internal/adapters/watcher"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// WatchOptions configure Watch.
type WatchOptions struct {
	Options
	// Debounce is the quiet period before a batch of changes is processed.
	Debounce time.Duration
	// OnReport, when set, is called after every report is written.
	OnReport func(*Report)
}

// Watch analyzes once, then re-analyzes whenever watched sources change until
// ctx is done. Changed files are invalidated in every worker so the next pass
// takes the incremental rebuild path.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	s, err := a.openSession(ctx, opts.Options)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := s.analyze(ctx, opts.Files)
	if err != nil {
		return err
	}
	if err := a.publish(report, opts); err != nil {
		return err
	}

	for _, project := range s.projects {
		a.filter.Seed(project.RootNames)
	}

	g, gctx := errgroup.WithContext(ctx)

	root := s.projects[0].Dir()
	if err := a.watcher.Start(gctx, root); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start watcher"), "root", root)
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to stop watcher: %v", err))
		}
	}()
	a.logger.Info(fmt.Sprintf("watching %s", root))

	window := opts.Debounce
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	batches := make(chan []string)
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		select {
		case batches <- paths:
		case <-gctx.Done():
		}
	})

	g.Go(func() error {
		for event := range a.watcher.Events() {
			if gctx.Err() != nil {
				return nil
			}
			if s.relevant(event.Path) {
				a.logger.Debug(fmt.Sprintf("%s %s", event.Operation, event.Path))
				debouncer.Add(event.Path)
			}
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case paths := <-batches:
				if err := a.refresh(gctx, s, paths, opts); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

// relevant reports whether a change to path can affect a cached program.
// Descriptor edits are not picked up by a running session.
func (s *session) relevant(path string) bool {
	for _, project := range s.projects {
		if path == project.ConfigPath {
			s.app.logger.Warn(fmt.Sprintf("%s changed; restart to apply", filepath.Base(path)))
			return false
		}
	}
	_, ok := s.app.frontend.VariantForFile(path, s.projects[0].Options)
	return ok
}

func (a *App) refresh(ctx context.Context, s *session, paths []string, opts WatchOptions) error {
	changed := a.filter.Changed(paths)
	if len(changed) == 0 {
		a.logger.Debug(fmt.Sprintf("%d event(s) without content change", len(paths)))
		return nil
	}
	a.logger.Info(fmt.Sprintf("%d file(s) changed", len(changed)))

	if err := s.pool.Invalidate(ctx, changed); err != nil {
		return ignoreCanceled(err)
	}

	report, err := s.analyze(ctx, opts.Files)
	if err != nil {
		if ignoreCanceled(err) == nil {
			return nil
		}
		a.logger.Error(err)
		return nil
	}
	if err := a.publish(report, opts); err != nil {
		return err
	}
	return nil
}

func (a *App) publish(report *Report, opts WatchOptions) error {
	if err := a.write(report, opts.JSON); err != nil {
		return err
	}
	if opts.OnReport != nil {
		opts.OnReport(report)
	}
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
