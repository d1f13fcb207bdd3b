package files

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces bursts of editor writes into one refresh.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-discovers files when the directory changes.
type Watcher struct {
	dir      string
	exts     []string
	debounce time.Duration
	log      zerolog.Logger
	onChange func([]TextFile, error)

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher over dir. onChange receives the result of
// Discover after each debounced change.
func NewWatcher(dir string, exts []string, log zerolog.Logger, onChange func([]TextFile, error)) *Watcher {
	return &Watcher{
		dir:      dir,
		exts:     exts,
		debounce: DefaultDebounce,
		log:      log,
		onChange: onChange,
	}
}

// Run watches until ctx is done. It returns an error only when the watch
// cannot be established.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}
	w.log.Info().Str("dir", w.dir).Msg("Files: watching for changes")

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !Supported(filepath.Base(event.Name), w.exts) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("Files: watcher error")
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		found, err := Discover(w.dir, w.exts, w.log)
		w.onChange(found, err)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
