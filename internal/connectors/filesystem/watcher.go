package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docmind/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 300 * time.Millisecond

// ChangeType describes what happened to a watched file.
type ChangeType int

const (
	// ChangeUpdated means the file was created or written.
	ChangeUpdated ChangeType = iota

	// ChangeRemoved means the file was removed or renamed away.
	ChangeRemoved
)

// Change is a settled file event.
type Change struct {
	Path string
	Type ChangeType
}

// Watcher reports changes to a set of files and to accepted files inside a
// set of directories.
type Watcher struct {
	files    map[string]struct{}
	dirs     map[string]struct{}
	accept   func(path string) bool
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]ChangeType
}

// NewWatcher creates a watcher over roots, which may be files or
// directories. accept filters files discovered inside watched directories.
func NewWatcher(roots []string, accept func(path string) bool) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		accept:   accept,
		debounce: DefaultDebounce,
		pending:  make(map[string]ChangeType),
	}

	for _, root := range roots {
		path, err := filepath.Abs(ResolvePath(root))
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			if err := w.addTree(path); err != nil {
				return nil, err
			}
		} else {
			w.files[path] = struct{}{}
		}
	}
	return w, nil
}

// SetDebounce changes how long a file must be quiet before it is reported.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHidden(p) {
			return filepath.SkipDir
		}
		w.dirs[p] = struct{}{}
		return nil
	})
}

// Watch starts watching and emits settled changes until ctx is done.
// The channel is closed when watching stops.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	watched := make(map[string]struct{})
	for dir := range w.dirs {
		watched[dir] = struct{}{}
	}
	for file := range w.files {
		watched[filepath.Dir(file)] = struct{}{}
	}
	for dir := range watched {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	changes := make(chan Change)
	go w.run(ctx, fsw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer fsw.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if change := w.handleFsEvent(event); change != nil {
				w.mu.Lock()
				w.pending[change.Path] = change.Type
				w.mu.Unlock()
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher: %v", err)

		case <-timer.C:
			for _, change := range w.flush() {
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (w *Watcher) flush() []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Change, 0, len(w.pending))
	for path, typ := range w.pending {
		out = append(out, Change{Path: path, Type: typ})
	}
	clear(w.pending)
	return out
}

// handleFsEvent maps a raw event to a change, or nil when it is not of
// interest. Chmod alone is ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	path := event.Name
	if isHidden(path) {
		return nil
	}

	if !w.tracks(path) {
		if event.Has(fsnotify.Create) && w.isWatchedDir(filepath.Dir(path)) {
			w.trackNewDir(path)
		}
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Path: path, Type: ChangeRemoved}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return &Change{Path: path, Type: ChangeUpdated}
	default:
		return nil
	}
}

func (w *Watcher) tracks(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	if !w.isWatchedDir(filepath.Dir(path)) {
		return false
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return false
	}
	return w.accept == nil || w.accept(path)
}

func (w *Watcher) isWatchedDir(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.dirs[dir]
	return ok
}

// trackNewDir starts watching a directory created under a watched one.
func (w *Watcher) trackNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirs[path] = struct{}{}
	if w.fsw != nil {
		if err := w.fsw.Add(path); err != nil {
			logger.Warn("watch %s: %v", path, err)
		}
	}
}
