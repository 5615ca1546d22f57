// Package watch reports batches of changed C# sources below a root.
// Events are debounced so an editor's save burst yields one batch.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/smellscan/internal/debug"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/workspace"
)

// DefaultDebounce is used when Options.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Root     string
	Filter   workspace.Filter
	Debounce time.Duration
	// OnChange receives the changed paths, workspace-relative and sorted.
	// Calls never overlap; events arriving meanwhile form the next batch.
	OnChange func(ctx context.Context, changed []string)
}

// Stats counts the work of a Watcher.
type Stats struct {
	Events  int64
	Batches int64
	Errors  int64
	Last    time.Time
}

// Watcher monitors the directories below a root.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	filter   workspace.Filter
	debounce time.Duration
	onChange func(ctx context.Context, changed []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    chan struct{}
	stats   Stats
}

// New creates a watcher and registers every directory below opts.Root
// that the filter does not exclude. Events are delivered once Run starts.
func New(opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		return nil, fmt.Errorf("watch: OnChange is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, smerrors.NewFileError("resolve", opts.Root, err)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fsw,
		root:     root,
		filter:   opts.Filter,
		debounce: debounce,
		onChange: opts.OnChange,
		pending:  make(map[string]struct{}),
		fire:     make(chan struct{}, 1),
	}
	if err := w.addWatches(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addWatches registers dir and the directories below it.
func (w *Watcher) addWatches(dir string) error {
	visited := make(map[string]bool)
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return smerrors.NewFileError("watch", p, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil || visited[resolved] {
			return filepath.SkipDir
		}
		visited[resolved] = true

		if p != w.root && w.ignoredDir(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			if p == dir {
				return smerrors.NewFileError("watch", p, err)
			}
			debug.LogWorkspace("failed to watch %s: %v\n", p, err)
		}
		return nil
	})
}

func (w *Watcher) rel(p string) (string, bool) {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) ignoredDir(p string) bool {
	rel, ok := w.rel(p)
	return !ok || w.filter.Excluded(rel)
}

// relevant reports whether a change to rel can alter an analysis.
func (w *Watcher) relevant(rel string) bool {
	switch path.Ext(rel) {
	case ".cs":
		return w.filter.KeepDocument(rel)
	case ".sln", ".csproj":
		return !w.filter.Excluded(rel)
	}
	return false
}

// Run delivers batches until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	debug.LogWorkspace("watching %s (debounce %v)\n", w.root, w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			debug.LogWorkspace("watch error: %v\n", err)

		case <-w.fire:
			if changed := w.takePending(); len(changed) > 0 {
				w.mu.Lock()
				w.stats.Batches++
				w.stats.Last = time.Now()
				w.mu.Unlock()
				w.onChange(ctx, changed)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.ignoredDir(event.Name) {
				if err := w.addWatches(event.Name); err != nil {
					debug.LogWorkspace("failed to watch new directory %s: %v\n", event.Name, err)
				}
			}
			return
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	rel, ok := w.rel(event.Name)
	if !ok || !w.relevant(rel) {
		return
	}
	w.schedule(rel)
}

// schedule adds rel to the pending batch and restarts the debounce timer.
func (w *Watcher) schedule(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	w.pending[rel] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(changed)
	return changed
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if err := w.watcher.Close(); err != nil {
		debug.LogWorkspace("closing watcher: %v\n", err)
	}
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
