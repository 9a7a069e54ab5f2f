package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/progcache/internal/adapters/config"
	"go.trai.ch/progcache/internal/adapters/fs"
	"go.trai.ch/progcache/internal/adapters/treesitter"
	"go.trai.ch/progcache/internal/adapters/watcher"
	"go.trai.ch/progcache/internal/app"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/progcache/internal/core/ports/mocks"
	"go.trai.ch/progcache/internal/engine/worker"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"tsconfig.json": `{
  // sources only
  "compilerOptions": { "strict": true },
  "include": ["src/**/*"],
}`,
		"src/main.ts": "import { helper } from \"./util\";\nimport { gone } from \"./missing\";\nexport const x = helper();\n",
		"src/util.ts": "export function helper() { return 1; }\n",
	})
	return dir
}

type fixture struct {
	app     *app.App
	watcher *mocks.MockWatcher
	out     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	w := mocks.NewMockWatcher(ctrl)
	resolver := config.NewLoader(log, fs.NewResolver(fs.NewWalker()))
	filter := watcher.NewChangeFilter(fs.NewHasher())

	out := &bytes.Buffer{}
	a := app.New(resolver, treesitter.New(), w, filter, log).WithOutput(out)
	return &fixture{app: a, watcher: w, out: out}
}

func TestAnalyze_ServesEveryRoot(t *testing.T) {
	dir := newProject(t)
	f := newFixture(t)

	report, err := f.app.Analyze(context.Background(), app.Options{Project: dir, Workers: 1})
	require.NoError(t, err)

	require.Len(t, report.Entries, 2)
	main, util := report.Entries[0], report.Entries[1]

	assert.Equal(t, "src/main.ts", main.Path)
	assert.Equal(t, "built", main.Outcome)
	assert.Equal(t, 2, main.Files)
	assert.Equal(t, []string{"./missing"}, main.Unresolved)

	assert.Equal(t, "src/util.ts", util.Path)
	assert.Equal(t, "hit", util.Outcome)
	assert.Equal(t, 2, util.Files)

	assert.Equal(t, app.Summary{Hit: 1, Built: 1}, report.Summary())

	g := goldie.New(t)
	g.Assert(t, "analyze_text", f.out.Bytes())
}

func TestAnalyze_RecordsSpans(t *testing.T) {
	dir := newProject(t)
	f := newFixture(t)
	spans := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	f.app.WithTracer(provider.Tracer("go.trai.ch/progcache/app"))

	_, err := f.app.Analyze(context.Background(), app.Options{Project: dir, Workers: 1})
	require.NoError(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 3)
	root := ended[len(ended)-1]
	assert.Equal(t, "App.Analyze", root.Name())
	assert.Contains(t, root.Attributes(), attribute.Int("progcache.analyzed", 2))
	for _, span := range ended[:2] {
		assert.Equal(t, "Factory.GetOrCreateProgram", span.Name())
		assert.Equal(t, root.SpanContext().SpanID(), span.Parent().SpanID())
	}
}

func TestAnalyze_JSONWithStats(t *testing.T) {
	dir := newProject(t)
	f := newFixture(t)

	_, err := f.app.Analyze(context.Background(), app.Options{
		Project: dir,
		Workers: 1,
		JSON:    true,
		Stats:   true,
	})
	require.NoError(t, err)

	var decoded app.Report
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &decoded))
	assert.Equal(t, "tsconfig.json", decoded.Project)
	assert.Equal(t, 1, decoded.Workers)
	require.Len(t, decoded.Entries, 2)

	require.Len(t, decoded.Stats, 1)
	stats := decoded.Stats[0]
	assert.Equal(t, 1, stats.Size)
	require.Len(t, stats.Entries, 1)
	assert.Equal(t, []string{"src/main.ts", "src/util.ts"}, stats.Entries[0].RootFiles)
	assert.Equal(t, 2, stats.Entries[0].FileCount)
	assert.Equal(t, 1, stats.Entries[0].HitCount)
	assert.True(t, stats.Entries[0].Live)
}

func TestAnalyze_ExplicitFiles(t *testing.T) {
	dir := newProject(t)
	f := newFixture(t)

	report, err := f.app.Analyze(context.Background(), app.Options{
		Project: dir,
		Files:   []string{filepath.Join(dir, "src", "util.ts")},
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "src/util.ts", report.Entries[0].Path)
	assert.Equal(t, "built", report.Entries[0].Outcome)
}

func TestAnalyze_FailedFile(t *testing.T) {
	dir := newProject(t)
	f := newFixture(t)

	report, err := f.app.Analyze(context.Background(), app.Options{
		Project: dir,
		Files:   []string{filepath.Join(dir, "src", "nope.ts")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBuildFailed))
	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	var zErr *zerr.Error
	require.ErrorAs(t, joined.Unwrap()[1], &zErr)
	assert.Equal(t, map[string]any{"failed": 1, "total": 1}, zErr.Metadata())

	require.NotNil(t, report)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, app.OutcomeFailed, report.Entries[0].Outcome)
	assert.NotEmpty(t, report.Entries[0].Error)
	assert.Equal(t, 1, report.Summary().Failed)
}

func TestAnalyze_References(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"tsconfig.json":     `{"files": ["app.ts"], "references": [{"path": "./lib"}]}`,
		"app.ts":            "import { lib } from \"./lib/index\";\n",
		"lib/tsconfig.json": `{"compilerOptions": {"strict": true}}`,
		"lib/index.ts":      "export const lib = 1;\n",
	})
	f := newFixture(t)

	report, err := f.app.Analyze(context.Background(), app.Options{Project: dir, Workers: 2})
	require.NoError(t, err)

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "app.ts", report.Entries[0].Path)
	assert.Equal(t, "tsconfig.json", report.Entries[0].Project)
	assert.Equal(t, "lib/index.ts", report.Entries[1].Path)
	assert.Equal(t, "lib/tsconfig.json", report.Entries[1].Project)
	for _, e := range report.Entries {
		assert.Equal(t, "built", e.Outcome, e.Path)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		target error
	}{
		{
			name:   "missing descriptor",
			files:  map[string]string{"a.ts": "export {};\n"},
			target: domain.ErrProjectConfig,
		},
		{
			name:   "no root files",
			files:  map[string]string{"tsconfig.json": `{"include": ["src/**/*"]}`},
			target: domain.ErrNoFilesToAnalyze,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)
			f := newFixture(t)

			_, err := f.app.Analyze(context.Background(), app.Options{Project: filepath.Join(dir, "tsconfig.json")})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestWatch_RebuildsChangedFile(t *testing.T) {
	dir := newProject(t)
	f := newFixture(t)
	util := filepath.Join(dir, "src", "util.ts")

	f.watcher.EXPECT().Start(gomock.Any(), dir).Return(nil)
	f.watcher.EXPECT().Stop().Return(nil)
	f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		if err := os.WriteFile(util, []byte("export function helper() { return 2; }\n"), 0o600); err != nil {
			return
		}
		yield(ports.WatchEvent{Path: filepath.Join(dir, "tsconfig.json"), Operation: ports.OpWrite})
		yield(ports.WatchEvent{Path: filepath.Join(dir, "README.md"), Operation: ports.OpCreate})
		yield(ports.WatchEvent{Path: util, Operation: ports.OpWrite})
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reports []*app.Report
	err := f.app.Watch(ctx, app.WatchOptions{
		Options:  app.Options{Project: dir, Workers: 1},
		Debounce: 10 * time.Millisecond,
		OnReport: func(r *app.Report) {
			reports = append(reports, r)
			if len(reports) == 2 {
				cancel()
			}
		},
	})
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, "built", reports[0].Entries[0].Outcome)

	second := reports[1].Entries[0]
	assert.Equal(t, "src/main.ts", second.Path)
	assert.Equal(t, "rebuilt", second.Outcome)
	assert.Equal(t, []string{"src/util.ts"}, second.Changed)
	assert.Equal(t, "hit", reports[1].Entries[1].Outcome)
}

var errOutputClosed = errors.New("output closed")

// closingWriter accepts the first writes and fails afterwards.
type closingWriter struct {
	remaining int
}

func (w *closingWriter) Write(p []byte) (int, error) {
	if w.remaining == 0 {
		return 0, errOutputClosed
	}
	w.remaining--
	return len(p), nil
}

func TestWatch_ReturnsWhenReportWriteFails(t *testing.T) {
	dir := newProject(t)
	f := newFixture(t)
	f.app.WithOutput(&closingWriter{remaining: 1})
	util := filepath.Join(dir, "src", "util.ts")

	var watchCtx context.Context
	f.watcher.EXPECT().Start(gomock.Any(), dir).DoAndReturn(func(ctx context.Context, _ string) error {
		watchCtx = ctx
		return nil
	})
	f.watcher.EXPECT().Stop().Return(nil)
	f.watcher.EXPECT().Events().DoAndReturn(func() iter.Seq[ports.WatchEvent] {
		// Stays open until the watch context ends, like the fsnotify adapter.
		return func(yield func(ports.WatchEvent) bool) {
			if err := os.WriteFile(util, []byte("export function helper() { return 3; }\n"), 0o600); err != nil {
				return
			}
			if !yield(ports.WatchEvent{Path: util, Operation: ports.OpWrite}) {
				return
			}
			select {
			case <-watchCtx.Done():
			case <-time.After(5 * time.Second):
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	err := f.app.Watch(ctx, app.WatchOptions{
		Options:  app.Options{Project: dir, Workers: 1},
		Debounce: 10 * time.Millisecond,
	})
	require.ErrorIs(t, err, errOutputClosed)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.NoError(t, ctx.Err())
}

func TestWorkerHomes(t *testing.T) {
	projects := []*domain.ProjectDescriptor{
		{ConfigPath: "/work/tsconfig.json"},
		{ConfigPath: "/work/lib/tsconfig.json"},
		{ConfigPath: "/work/tools/tsconfig.json"},
	}

	assert.Equal(t, []string{"/work"}, app.WorkerHomes(projects, 1), "one worker keeps the main project's directory")

	homes := app.WorkerHomes(projects, 2)
	require.Len(t, homes, 2)
	for id, home := range homes {
		want := "/work"
		for _, p := range projects {
			if worker.Route(p.ConfigPath, 2) == id {
				want = p.Dir()
				break
			}
		}
		assert.Equal(t, want, home, "worker %d", id)
	}
}
