package watcher_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/progcache/internal/adapters/watcher"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var batches [][]string
		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			batches = append(batches, paths)
		})

		d.Add("/project/src/b.ts")
		time.Sleep(60 * time.Millisecond)
		d.Add("/project/src/a.ts")
		time.Sleep(60 * time.Millisecond)
		d.Add("/project/src/b.ts")

		synctest.Wait()
		assert.Empty(t, batches, "window restarts on every add")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, batches, 1)
		assert.Equal(t, []string{"/project/src/a.ts", "/project/src/b.ts"}, batches[0])
		assert.Zero(t, d.Pending())
	})
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var batches [][]string
		d := watcher.NewDebouncer(50*time.Millisecond, func(paths []string) {
			batches = append(batches, paths)
		})

		d.Add("/a.ts")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Add("/b.ts")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/a.ts"}, {"/b.ts"}}, batches)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var batches [][]string
		d := watcher.NewDebouncer(time.Second, func(paths []string) {
			batches = append(batches, paths)
		})

		d.Flush()
		assert.Empty(t, batches, "nothing pending")

		d.Add("/x.ts")
		d.Flush()
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"/x.ts"}, batches[0])

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Len(t, batches, 1, "flushed paths are not delivered again")
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/x.ts")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		assert.Zero(t, d.Pending())
	})
}
