package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tagscope/internal/adapter/fs"
)

// Watcher reports batches of changed project files. Directories pruned by
// the walker's exclude globs are never watched, and only files the walker
// would index (or one of the extra paths) count as changes.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	root       string
	walker     *fs.Walker
	extra      map[string]bool
	debounce   time.Duration
	onChange   func([]string)
	callbackMu sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher watches root. extra lists files outside the include globs that
// still trigger a change, such as the tag listing.
func NewWatcher(root string, walker *fs.Walker, debounce time.Duration, extra []string, onChange func([]string)) (*Watcher, error) {
	root, err := fs.Canonical(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		root:      root,
		walker:    walker,
		extra:     make(map[string]bool, len(extra)),
		debounce:  debounce,
		onChange:  onChange,
		pending:   make(map[string]struct{}),
		done:      make(chan struct{}),
	}
	for _, p := range extra {
		if c, err := fs.Canonical(p); err == nil {
			w.extra[c] = true
			if !w.inRoot(c) {
				// Watch the parent so edits to an outside listing are seen.
				if err := fsw.Add(filepath.Dir(c)); err != nil {
					slog.Warn("failed to watch listing directory", "path", c, "error", err)
				}
			}
		}
	}
	return w, nil
}

// Start adds the project tree and begins delivering events.
func (w *Watcher) Start() error {
	if err := w.watchRecursive(w.root); err != nil {
		return err
	}
	go w.run()
	return nil
}

func (w *Watcher) inRoot(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) watchRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.walker.ExcludesDir(w.root, path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.inRoot(event.Name) && !w.walker.ExcludesDir(w.root, event.Name) {
				if err := w.watchRecursive(event.Name); err != nil {
					slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
				} else {
					w.enqueueExistingFiles(event.Name)
				}
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.relevant(event.Name) {
		return
	}
	w.scheduleChange(event.Name)
}

func (w *Watcher) relevant(path string) bool {
	if w.extra[path] {
		return true
	}
	return w.inRoot(path) && w.walker.Matches(w.root, path)
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) enqueueExistingFiles(dir string) {
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if w.relevant(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}

func (w *Watcher) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
