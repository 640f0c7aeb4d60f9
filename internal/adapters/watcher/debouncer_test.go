package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/texrun/internal/adapters/watcher"
)

func TestDebouncer_Add_SinglePath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var receivedPaths []string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			callCount++
			receivedPaths = paths
		})

		d.Add("/doc/main.tex")

		// Advance time past the debounce window
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, callCount)
		assert.Equal(t, []string{"/doc/main.tex"}, receivedPaths)
	})
}

func TestDebouncer_Add_Coalesced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var receivedPaths []string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			callCount++
			receivedPaths = paths
		})

		d.Add("/doc/refs.bib")
		d.Add("/doc/main.tex")
		d.Add("/doc/refs.bib")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		// One call, deduplicated and sorted
		require.Equal(t, 1, callCount)
		assert.Equal(t, []string{"/doc/main.tex", "/doc/refs.bib"}, receivedPaths)
	})
}

func TestDebouncer_Add_ResetsWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			callCount++
		})

		d.Add("/doc/main.tex")
		time.Sleep(80 * time.Millisecond)
		d.Add("/doc/main.tex")
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		// Still inside the restarted window
		assert.Equal(t, 0, callCount)

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, callCount)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var batches [][]string

		d := watcher.NewDebouncer(time.Second, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			batches = append(batches, paths)
		})

		d.Add("/doc/chapter1.tex")
		d.Flush()

		mu.Lock()
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"/doc/chapter1.tex"}, batches[0])
		mu.Unlock()

		// The stopped timer must not deliver the batch again.
		time.Sleep(2 * time.Second)
		synctest.Wait()

		mu.Lock()
		assert.Len(t, batches, 1)
		mu.Unlock()
	})
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	called := false
	d := watcher.NewDebouncer(time.Second, func([]string) { called = true })
	d.Flush()
	assert.False(t, called)
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/doc/main.tex")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
