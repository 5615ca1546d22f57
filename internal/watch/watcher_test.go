package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/smellscan/internal/workspace"
)

const waitFor = 5 * time.Second

type harness struct {
	root    string
	batches chan []string
	cancel  context.CancelFunc
	done    chan error
	w       *Watcher
}

func start(t *testing.T, filter workspace.Filter, dirs ...string) *harness {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755))
	}

	h := &harness{root: root, batches: make(chan []string, 16), done: make(chan error, 1)}
	w, err := New(Options{
		Root:     root,
		Filter:   filter,
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context, changed []string) { h.batches <- changed },
	})
	require.NoError(t, err)
	h.w = w

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- w.Run(ctx) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

func (h *harness) write(t *testing.T, rel, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.root, filepath.FromSlash(rel)), []byte(content), 0644))
}

func (h *harness) next(t *testing.T) []string {
	t.Helper()
	select {
	case batch := <-h.batches:
		return batch
	case <-time.After(waitFor):
		t.Fatal("no batch delivered")
		return nil
	}
}

func TestWatcherBatchesSourceChanges(t *testing.T) {
	h := start(t, workspace.Filter{}, "src")

	h.write(t, "src/B.cs", "class B { }")
	h.write(t, "src/A.cs", "class A { }")
	h.write(t, "src/A.cs", "class A { int x; }")

	batch := h.next(t)
	assert.Equal(t, []string{"src/A.cs", "src/B.cs"}, batch)

	stats := h.w.Stats()
	assert.GreaterOrEqual(t, stats.Events, int64(2))
	assert.Equal(t, int64(1), stats.Batches)
}

func TestWatcherIgnoresIrrelevantFiles(t *testing.T) {
	h := start(t, workspace.Filter{Blacklist: []string{"Designer"}, SkipTests: true}, "src/bin", "src/obj")

	h.write(t, "README.md", "# notes")
	h.write(t, "src/bin/Gen.cs", "class Gen { }")
	h.write(t, "src/obj/Gen.cs", "class Gen { }")
	h.write(t, "src/FormDesigner.cs", "class FormDesigner { }")
	h.write(t, "src/OrderTests.cs", "class OrderTests { }")
	h.write(t, "src/Order.cs", "class Order { }")

	assert.Equal(t, []string{"src/Order.cs"}, h.next(t))
}

func TestWatcherReportsSolutionsAndRemovals(t *testing.T) {
	h := start(t, workspace.Filter{}, "src")
	h.write(t, "src/Gone.cs", "class Gone { }")
	assert.Equal(t, []string{"src/Gone.cs"}, h.next(t))

	require.NoError(t, os.Remove(filepath.Join(h.root, "src", "Gone.cs")))
	h.write(t, "Shop.sln", "")
	assert.Equal(t, []string{"Shop.sln", "src/Gone.cs"}, h.next(t))
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	h := start(t, workspace.Filter{})

	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "lib"), 0755))
	// give the watcher a moment to register the new directory
	require.Eventually(t, func() bool {
		for _, p := range h.w.watcher.WatchList() {
			if filepath.Base(p) == "lib" {
				return true
			}
		}
		return false
	}, waitFor, 10*time.Millisecond)

	h.write(t, "lib/Util.cs", "class Util { }")
	assert.Equal(t, []string{"lib/Util.cs"}, h.next(t))
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(Options{
		Root:     filepath.Join(t.TempDir(), "missing"),
		OnChange: func(context.Context, []string) {},
	})
	assert.Error(t, err)

	_, err = New(Options{Root: t.TempDir()})
	assert.Error(t, err)
}
