package worker_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/progcache/internal/adapters/fs"
	"go.trai.ch/progcache/internal/adapters/treesitter"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports/mocks"
	"go.trai.ch/progcache/internal/engine/factory"
	"go.trai.ch/progcache/internal/engine/parsecache"
	"go.trai.ch/progcache/internal/engine/programcache"
	"go.trai.ch/progcache/internal/engine/worker"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

func newPool(t *testing.T, size int) *worker.Pool {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	pool, err := worker.New(size, func(int) (*factory.Factory, error) {
		manager, err := programcache.New(domain.DefaultCacheConfig(), logger)
		if err != nil {
			return nil, err
		}
		return factory.New(fs.NewContentStore(""), parsecache.New(), manager, treesitter.New(), logger), nil
	})
	require.NoError(t, err)
	return pool
}

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func request(dir, path string) factory.Request {
	return factory.Request{BaseDir: dir, Path: path, Options: &domain.ProjectOptions{}}
}

func TestPool_NotStarted(t *testing.T) {
	pool := newPool(t, 2)

	_, err := pool.Submit(context.Background(), "", request(t.TempDir(), "a.ts"))
	require.ErrorIs(t, err, domain.ErrPoolClosed)
}

func TestPool_SameProjectServedBySameWorker(t *testing.T) {
	pool := newPool(t, 4)
	ctx := context.Background()
	pool.Start(ctx)
	t.Cleanup(func() { _ = pool.Stop() })

	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "import { b } from './b'\n")
	writeFile(t, dir, "b.ts", "export const b = 1\n")

	first, err := pool.Submit(ctx, "project", request(dir, "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeBuilt, first.Outcome)

	second, err := pool.Submit(ctx, "project", request(dir, "b.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, second.Outcome)
	assert.Same(t, first.Program, second.Program)

	stats, err := pool.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	for id, s := range stats {
		if id == pool.Route("project") {
			assert.Equal(t, 1, s.Size)
			continue
		}
		assert.Zero(t, s.Size)
	}
}

func TestPool_ConcurrentSubmits(t *testing.T) {
	pool := newPool(t, 3)
	ctx := context.Background()
	pool.Start(ctx)
	t.Cleanup(func() { _ = pool.Stop() })

	dirs := make([]string, 6)
	for i := range dirs {
		dirs[i] = t.TempDir()
		writeFile(t, dirs[i], "main.ts", fmt.Sprintf("export const n = %d\n", i))
	}

	g, gctx := errgroup.WithContext(ctx)
	for range 4 {
		for _, dir := range dirs {
			g.Go(func() error {
				_, err := pool.Submit(gctx, "", request(dir, "main.ts"))
				return err
			})
		}
	}
	require.NoError(t, g.Wait())

	stats, err := pool.Stats(ctx)
	require.NoError(t, err)
	total := 0
	for _, s := range stats {
		total += s.Size
	}
	assert.Equal(t, len(dirs), total, "each project is built once")
}

func TestPool_InvalidateBroadcast(t *testing.T) {
	pool := newPool(t, 2)
	ctx := context.Background()
	pool.Start(ctx)
	t.Cleanup(func() { _ = pool.Stop() })

	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", "export const a = 1\n")

	_, err := pool.Submit(ctx, "", request(dir, "a.ts"))
	require.NoError(t, err)

	writeFile(t, dir, "a.ts", "export const a = 2\n")
	hit, err := pool.Submit(ctx, "", request(dir, "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, hit.Outcome, "cached content is served until invalidated")

	require.NoError(t, pool.Invalidate(ctx, []string{path}))

	rebuilt, err := pool.Submit(ctx, "", request(dir, "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeRebuilt, rebuilt.Outcome)
	assert.Equal(t, []string{path}, rebuilt.Changed)

	require.NoError(t, pool.Clear(ctx))
	stats, err := pool.Stats(ctx)
	require.NoError(t, err)
	for _, s := range stats {
		assert.Zero(t, s.Size)
	}
}

func TestPool_Stop(t *testing.T) {
	pool := newPool(t, 2)
	ctx := context.Background()
	pool.Start(ctx)
	require.NoError(t, pool.Stop())
	require.NoError(t, pool.Stop())

	_, err := pool.Submit(ctx, "", request(t.TempDir(), "a.ts"))
	require.ErrorIs(t, err, domain.ErrPoolClosed)
	require.ErrorIs(t, pool.Invalidate(ctx, nil), domain.ErrPoolClosed)
}

func TestPool_CanceledContextSkipsJob(t *testing.T) {
	pool := newPool(t, 1)
	pool.Start(context.Background())
	t.Cleanup(func() { _ = pool.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Submit(ctx, "", request(t.TempDir(), "a.ts"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPool_SharedWorkerKeepsCachedContent(t *testing.T) {
	pool := newPool(t, 1)
	ctx := context.Background()
	pool.Start(ctx)
	t.Cleanup(func() { _ = pool.Stop() })

	a := writeFile(t, t.TempDir(), "a.ts", "export const a = 1\n")
	b := writeFile(t, t.TempDir(), "b.ts", "export const b = 1\n")
	absolute := func(path string) factory.Request {
		return factory.Request{Path: path, Options: &domain.ProjectOptions{}}
	}

	_, err := pool.Submit(ctx, "a", absolute(a))
	require.NoError(t, err)
	writeFile(t, filepath.Dir(a), "a.ts", "export const a = 2\n")

	_, err = pool.Submit(ctx, "b", absolute(b))
	require.NoError(t, err)

	again, err := pool.Submit(ctx, "a", absolute(a))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, again.Outcome, "serving another project must not drop cached content")
}

func TestRoute(t *testing.T) {
	pool := newPool(t, 3)
	for _, key := range []string{"a", "b", "/work/tsconfig.json"} {
		assert.Equal(t, pool.Route(key), worker.Route(key, 3), key)
		assert.Zero(t, worker.Route(key, 0))
	}
}
