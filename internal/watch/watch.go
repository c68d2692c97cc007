// Package watch re-runs a function whenever watched connection files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
)

// DefaultDebounce is how long a burst of file events is collapsed for.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange once at start and again after every settled burst
// of writes to the watched files.
type Watcher struct {
	paths    []string
	onChange func(ctx context.Context) error

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
}

// New creates a watcher for paths, which may be files or directories.
// Directories match the .hcl files directly inside them.
func New(paths []string, onChange func(ctx context.Context) error) *Watcher {
	return &Watcher{paths: paths, onChange: onChange, Debounce: DefaultDebounce}
}

// matcher decides which event paths are relevant.
type matcher struct {
	files map[string]bool
	dirs  map[string]bool
}

func (m matcher) match(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if m.files[abs] {
		return true
	}
	return m.dirs[filepath.Dir(abs)] && strings.HasSuffix(abs, ".hcl")
}

// Run blocks until ctx is done. Errors from OnChange are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	m := matcher{files: map[string]bool{}, dirs: map[string]bool{}}
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		dir := abs
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			m.dirs[abs] = true
		} else {
			m.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		logger.Debug("Watching path.", "path", abs)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w.fire(ctx)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var debounceCh <-chan time.Time

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if m.match(event.Name) {
				logger.Debug("Change detected.", "path", event.Name, "op", event.Op.String())
				timer.Reset(debounce)
				debounceCh = timer.C
			}

		case <-debounceCh:
			debounceCh = nil
			w.fire(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error.", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	if err := w.onChange(ctx); err != nil {
		ctxlog.FromContext(ctx).Error("Watch callback failed.", "error", err)
	}
}
