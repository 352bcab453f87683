// Package watch reports changes to a set of files, coalescing bursts of
// filesystem events into a single callback.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default quiet period after the last event.
const DefaultDebounce = 100 * time.Millisecond

// ErrNoPaths is returned by New when no file is given.
var ErrNoPaths = errors.New("watch: no paths")

// Watcher monitors files for changes. It watches the containing
// directories rather than the files, so editors that save by renaming a
// temporary file are detected too.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	onChange func(path string)
	onError  func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New creates a watcher for paths. onChange receives the last path that
// changed once the debounce period has passed without further events.
// onError may be nil.
func New(paths []string, debounce time.Duration, onChange func(path string), onError func(error)) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	return &Watcher{
		watcher:  fw,
		files:    files,
		debounce: debounce,
		onChange: onChange,
		onError:  onError,
	}, nil
}

// Start runs the watcher in a goroutine until Stop is called.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.stopped = make(chan struct{})
	go func() {
		defer close(w.stopped)
		w.Run(ctx)
	}()
}

// Stop stops a watcher started with Start and waits for it to exit.
// An unstarted watcher just releases its resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, stopped := w.cancel, w.stopped
	w.mu.Unlock()
	if cancel == nil {
		w.watcher.Close()
		return
	}
	cancel()
	<-stopped
}

// Run processes events until ctx is done. It closes the underlying
// watcher on return, so a Watcher runs at most once.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		changed string
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			changed = abs

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C

		case <-timerCh:
			if w.onChange != nil {
				w.onChange(changed)
			}
			timer, timerCh = nil, nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}
