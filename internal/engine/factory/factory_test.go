package factory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/progcache/internal/adapters/fs"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/progcache/internal/core/ports/mocks"
	"go.trai.ch/progcache/internal/engine/factory"
	"go.trai.ch/progcache/internal/engine/parsecache"
	"go.trai.ch/progcache/internal/engine/programcache"
	"go.uber.org/mock/gomock"
)

// lineProgram is a program over files whose lines name their dependencies ("dep x.ts").
type lineProgram struct {
	roots []string
	files []string
	units map[string]*domain.ParsedUnit
}

func (p *lineProgram) RootNames() []string   { return p.roots }
func (p *lineProgram) SourceFiles() []string { return p.files }
func (p *lineProgram) SourceFile(path string) (*domain.ParsedUnit, bool) {
	u, ok := p.units[path]
	return u, ok
}

// lineFrontend builds lineProgram values through the host it is given.
type lineFrontend struct {
	builds  int
	parses  int
	lastOld ports.Program
}

func (f *lineFrontend) Parse(path string, content []byte, variant domain.TargetVariant) (*domain.ParsedUnit, error) {
	f.parses++
	var imports []string
	for line := range strings.Lines(string(content)) {
		if dep, ok := strings.CutPrefix(strings.TrimSpace(line), "dep "); ok {
			imports = append(imports, dep)
		}
	}
	return &domain.ParsedUnit{Path: path, Variant: variant, Imports: imports}, nil
}

func (f *lineFrontend) VariantForFile(string, *domain.ProjectOptions) (domain.TargetVariant, bool) {
	return domain.VariantTypeScript, true
}

func (f *lineFrontend) CreateBuilderProgram(
	_ context.Context,
	roots []string,
	_ *domain.ProjectOptions,
	host ports.CompilerHost,
	old ports.Program,
) (ports.Program, error) {
	f.builds++
	f.lastOld = old

	program := &lineProgram{roots: roots, units: make(map[string]*domain.ParsedUnit)}
	queue := slices.Clone(roots)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if _, seen := program.units[path]; seen {
			continue
		}
		unit, err := host.GetSourceFile(path, domain.VariantTypeScript, false)
		if err != nil {
			return nil, err
		}
		program.units[path] = unit
		program.files = append(program.files, path)
		for _, dep := range unit.Imports {
			queue = append(queue, filepath.Join(filepath.Dir(path), dep))
		}
	}
	return program, nil
}

type fixture struct {
	dir      string
	frontend *lineFrontend
	manager  *programcache.Manager
	factory  *factory.Factory
	spans    *tracetest.SpanRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithFrontend(t, nil)
}

func newFixtureWithFrontend(t *testing.T, frontend ports.Frontend) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	manager, err := programcache.New(domain.DefaultCacheConfig(), logger)
	require.NoError(t, err)

	f := &fixture{
		dir:     t.TempDir(),
		manager: manager,
		spans:   tracetest.NewSpanRecorder(),
	}
	if frontend == nil {
		f.frontend = &lineFrontend{}
		frontend = f.frontend
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	f.factory = factory.New(
		fs.NewContentStore(f.dir),
		parsecache.New(),
		manager,
		frontend,
		logger,
		factory.WithTracer(provider.Tracer("test")),
	)
	return f
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (f *fixture) request(path string) factory.Request {
	return factory.Request{BaseDir: f.dir, Path: path, Options: &domain.ProjectOptions{Target: "es2020"}}
}

func (f *fixture) hitCount(t *testing.T, key domain.CacheKey) int {
	t.Helper()
	entry, ok := f.manager.Entry(key)
	require.True(t, ok)
	return entry.HitCount
}

func TestFactory_UnchangedContentReturnsSameProgram(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "dep b.ts\n")
	f.write(t, "b.ts", "export {}\n")
	ctx := context.Background()

	first, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeBuilt, first.Outcome)
	assert.Equal(t, 0, f.hitCount(t, first.Key))

	for i := 1; i <= 3; i++ {
		program, err := f.factory.GetOrCreateProgram(ctx, f.request("a.ts"))
		require.NoError(t, err)
		assert.Same(t, first.Program, program)
		assert.Equal(t, i, f.hitCount(t, first.Key))
	}

	assert.Equal(t, 1, f.frontend.builds, "hits do no frontend work")
	assert.Equal(t, 2, f.frontend.parses)
}

func TestFactory_DependencyRequestHitsRootProgram(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "dep b.ts\n")
	f.write(t, "b.ts", "export {}\n")
	ctx := context.Background()

	built, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)

	dep, err := f.factory.Resolve(ctx, f.request("b.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, dep.Outcome)
	assert.Same(t, built.Program, dep.Program)

	other := f.request("b.ts")
	other.Options = &domain.ProjectOptions{Target: "es2020", Strict: true}
	separate, err := f.factory.Resolve(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeBuilt, separate.Outcome, "different options never share a program")
	assert.Equal(t, 2, f.factory.Stats().Size)
}

func TestFactory_ChangedContentRebuildsInPlace(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "dep b.ts\n")
	f.write(t, "b.ts", "export {}\n")
	ctx := context.Background()

	first, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)

	req := f.request("a.ts")
	req.Content = []byte("dep b.ts\ndep c.ts\n")
	f.write(t, "c.ts", "export const c = 1\n")

	second, err := f.factory.Resolve(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeRebuilt, second.Outcome)
	assert.NotSame(t, first.Program, second.Program)
	assert.Same(t, first.Program, f.frontend.lastOld, "the cached program is the rebuild baseline")
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, []string{filepath.Join(f.dir, "a.ts")}, second.Changed)
	assert.Equal(t, 1, f.factory.Stats().Size, "entry is updated, not duplicated")

	entry, ok := f.manager.Entry(second.Key)
	require.True(t, ok)
	assert.True(t, entry.Contains(filepath.Join(f.dir, "c.ts")), "file index is refreshed")

	third, err := f.factory.Resolve(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, third.Outcome)
	assert.Same(t, second.Program, third.Program)
}

func TestFactory_DependencyDriftRebuilds(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "dep b.ts\n")
	bPath := f.write(t, "b.ts", "export {}\n")
	ctx := context.Background()

	first, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)

	f.write(t, "b.ts", "export const b = 2\n")
	f.factory.Invalidate(bPath)

	second, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeRebuilt, second.Outcome)
	assert.Equal(t, []string{bPath}, second.Changed)
	assert.NotSame(t, first.Program, second.Program)
}

func TestFactory_DroppedImportBuildsRequestedFile(t *testing.T) {
	f := newFixture(t)
	aPath := f.write(t, "a.ts", "dep b.ts\n")
	bPath := f.write(t, "b.ts", "export {}\n")
	ctx := context.Background()

	first, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)

	f.write(t, "a.ts", "export {}\n")
	f.factory.Invalidate(aPath)

	res, err := f.factory.Resolve(ctx, f.request("b.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeBuilt, res.Outcome)
	assert.NotEqual(t, first.Key, res.Key)
	_, ok := res.Program.SourceFile(bPath)
	assert.True(t, ok, "returned program covers the requested file")
	assert.Equal(t, []string{bPath}, res.Program.SourceFiles())

	entry, ok := f.manager.Entry(first.Key)
	require.True(t, ok)
	assert.False(t, entry.Contains(bPath), "importer entry reflects its rebuild")
	assert.Equal(t, 2, f.factory.Stats().Size)

	again, err := f.factory.Resolve(ctx, f.request("b.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, again.Outcome)
	assert.Same(t, res.Program, again.Program)
}

func TestFactory_DeletedDependencyFailsRebuildAndKeepsEntry(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "dep b.ts\n")
	bPath := f.write(t, "b.ts", "export {}\n")
	ctx := context.Background()

	first, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)

	require.NoError(t, os.Remove(bPath))
	f.factory.Invalidate(bPath)

	_, err = f.factory.Resolve(ctx, f.request("a.ts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)

	lookup, ok := f.manager.FindProgramForFile(filepath.Join(f.dir, "a.ts"), first.Key.OptionsHash())
	require.True(t, ok, "a failed rebuild leaves the entry in place")
	assert.Same(t, first.Program, lookup.Program)

	f.write(t, "b.ts", "export {}\n")
	f.factory.Invalidate(bPath)

	res, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, res.Outcome, "restored content matches the cached snapshot")
	assert.Same(t, first.Program, res.Program)
}

func TestFactory_ProjectConfigError(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "")

	req := f.request("a.ts")
	req.Options = &domain.ProjectOptions{Target: "es1999"}

	_, err := f.factory.GetOrCreateProgram(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProjectConfig)
	assert.ErrorContains(t, err, domain.ErrInvalidTarget.Error())
	assert.Equal(t, 0, f.factory.Stats().Size)
	assert.Equal(t, 0, f.frontend.builds)
}

func TestFactory_BuildErrorLeavesCacheEmpty(t *testing.T) {
	f := newFixture(t)

	_, err := f.factory.GetOrCreateProgram(context.Background(), f.request("missing.ts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.ErrorContains(t, err, domain.ErrSourceNotFound.Error())
	assert.Equal(t, 0, f.factory.Stats().Size)
}

func TestFactory_FrontendErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	frontend := mocks.NewMockFrontend(ctrl)
	f := newFixtureWithFrontend(t, frontend)
	f.write(t, "a.ts", "")

	buildErr := errors.New("unsupported syntax")
	frontend.EXPECT().
		CreateBuilderProgram(gomock.Any(), []string{filepath.Join(f.dir, "a.ts")}, gomock.Any(), gomock.Any(), nil).
		Return(nil, buildErr)

	_, err := f.factory.GetOrCreateProgram(context.Background(), f.request("a.ts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, buildErr)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Equal(t, 0, f.factory.Stats().Size)
}

func TestFactory_RootNames(t *testing.T) {
	f := newFixture(t)
	f.write(t, "main.ts", "dep lib/util.ts\n")
	f.write(t, "lib/util.ts", "")
	f.write(t, "other.ts", "")

	req := f.request("lib/util.ts")
	req.RootNames = []string{"main.ts", "other.ts"}

	res, err := f.factory.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(f.dir, "main.ts"), filepath.Join(f.dir, "other.ts")}, res.Program.RootNames())
	assert.Len(t, res.Program.SourceFiles(), 3)

	res, err = f.factory.Resolve(context.Background(), f.request("other.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeHit, res.Outcome)
}

func TestFactory_BaseDirSwitchClearsContent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "")
	ctx := context.Background()

	_, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)

	otherDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(otherDir, "a.ts"), []byte("dep b.ts\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(otherDir, "b.ts"), []byte(""), 0o600))

	req := f.request("a.ts")
	req.BaseDir = otherDir
	res, err := f.factory.Resolve(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeBuilt, res.Outcome)
	assert.Len(t, res.Program.SourceFiles(), 2)
}

func TestFactory_Clear(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "")
	ctx := context.Background()

	first, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)
	require.Equal(t, 1, f.factory.ParsedUnits())

	f.factory.Clear()
	assert.Equal(t, 0, f.factory.Stats().Size)
	assert.Equal(t, 0, f.factory.ParsedUnits())

	again, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)
	assert.Equal(t, factory.OutcomeBuilt, again.Outcome)
	assert.NotSame(t, first.Program, again.Program)
}

func TestFactory_RecordsSpans(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.ts", "")
	ctx := context.Background()

	_, err := f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)
	_, err = f.factory.Resolve(ctx, f.request("a.ts"))
	require.NoError(t, err)

	spans := f.spans.Ended()
	require.Len(t, spans, 2)

	outcomes := make([]string, 0, len(spans))
	for _, span := range spans {
		assert.Equal(t, "Factory.GetOrCreateProgram", span.Name())
		for _, attr := range span.Attributes() {
			if attr.Key == attribute.Key("progcache.outcome") {
				outcomes = append(outcomes, attr.Value.AsString())
			}
		}
	}
	assert.Equal(t, []string{"built", "hit"}, outcomes)
}
