// Package worker runs independent cache stacks on a fixed set of goroutines.
//
// Each worker owns one factory and handles one job at a time, so the cache
// components never see concurrent access. Requests for the same project always
// land on the same worker.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/engine/factory"
	"golang.org/x/sync/errgroup"
)

// NewFactoryFunc builds the factory owned by worker id.
type NewFactoryFunc func(id int) (*factory.Factory, error)

type job struct {
	run  func(*factory.Factory)
	done chan struct{}
}

type worker struct {
	id      int
	factory *factory.Factory
	jobs    chan job
}

// Pool dispatches requests to workers.
type Pool struct {
	workers []*worker
	group   *errgroup.Group
	started atomic.Bool
	quit    chan struct{}
	stop    sync.Once
}

// New creates a pool of size workers. It does not start them.
func New(size int, newFactory NewFactoryFunc) (*Pool, error) {
	size = max(size, 1)
	p := &Pool{
		workers: make([]*worker, size),
		quit:    make(chan struct{}),
	}
	for i := range size {
		f, err := newFactory(i)
		if err != nil {
			return nil, err
		}
		p.workers[i] = &worker{id: i, factory: f, jobs: make(chan job)}
	}
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches the workers. They stop when ctx is done or Stop is called.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error {
			return w.loop(gctx, p.quit)
		})
	}
	p.group = g

	go func() {
		select {
		case <-gctx.Done():
			p.shutdown()
		case <-p.quit:
		}
	}()
}

// Stop stops the workers and waits for the running jobs to finish.
func (p *Pool) Stop() error {
	p.shutdown()
	if p.group == nil {
		return nil
	}
	return p.group.Wait()
}

func (p *Pool) shutdown() {
	p.stop.Do(func() { close(p.quit) })
}

func (w *worker) loop(ctx context.Context, quit <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return nil
		case j := <-w.jobs:
			j.run(w.factory)
			close(j.done)
		}
	}
}

// Route returns the worker index serving key.
func (p *Pool) Route(key string) int {
	return Route(key, len(p.workers))
}

// Route returns the index serving key in a pool of size workers.
func Route(key string, size int) int {
	return int(xxhash.Sum64String(key) % uint64(max(size, 1)))
}

// Submit serves req on the worker routed by key, or by req.BaseDir when key is empty.
// A job that has started always runs to completion; ctx only bounds the wait.
func (p *Pool) Submit(ctx context.Context, key string, req factory.Request) (factory.Result, error) {
	if key == "" {
		key = req.BaseDir
	}

	var (
		res factory.Result
		err error
	)
	runErr := p.dispatch(ctx, p.workers[p.Route(key)], func(f *factory.Factory) {
		if err = ctx.Err(); err != nil {
			return
		}
		res, err = f.Resolve(ctx, req)
	})
	if runErr != nil {
		return factory.Result{}, runErr
	}
	return res, err
}

// Broadcast runs fn on every worker between requests and waits for all of them.
func (p *Pool) Broadcast(ctx context.Context, fn func(id int, f *factory.Factory)) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error {
			return p.dispatch(gctx, w, func(f *factory.Factory) {
				fn(w.id, f)
			})
		})
	}
	return g.Wait()
}

// Invalidate drops the cached content of paths in every worker.
func (p *Pool) Invalidate(ctx context.Context, paths []string) error {
	return p.Broadcast(ctx, func(_ int, f *factory.Factory) {
		f.Invalidate(paths...)
	})
}

// Clear drops every worker's caches.
func (p *Pool) Clear(ctx context.Context) error {
	return p.Broadcast(ctx, func(_ int, f *factory.Factory) {
		f.Clear()
	})
}

// Stats returns the cache statistics of every worker, indexed by worker id.
func (p *Pool) Stats(ctx context.Context) ([]domain.CacheStats, error) {
	stats := make([]domain.CacheStats, len(p.workers))
	err := p.Broadcast(ctx, func(id int, f *factory.Factory) {
		stats[id] = f.Stats()
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (p *Pool) dispatch(ctx context.Context, w *worker, run func(*factory.Factory)) error {
	if !p.started.Load() {
		return domain.ErrPoolClosed
	}

	j := job{run: run, done: make(chan struct{})}
	select {
	case w.jobs <- j:
	case <-p.quit:
		return domain.ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
