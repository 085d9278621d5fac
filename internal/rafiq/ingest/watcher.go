package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
)

// settleDelay gives uploads time to finish writing before processing.
const settleDelay = 2 * time.Second

// Watcher ingests files dropped into a directory. New files are handed to
// the submit function, which runs them through the pipeline.
type Watcher struct {
	dir    string
	submit func(path string)
}

// NewWatcher creates a directory watcher. submit is called once per new or
// rewritten file.
func NewWatcher(dir string, submit func(path string)) *Watcher {
	return &Watcher{dir: dir, submit: submit}
}

// debouncer coalesces bursts of filesystem events per path: each touch
// resets the path's timer, and fire runs once settleDelay passes without
// another touch. Fired entries are removed so the map stays bounded by the
// number of in-flight paths.
type debouncer struct {
	delay time.Duration
	fire  func(path string)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func newDebouncer(delay time.Duration, fire func(path string)) *debouncer {
	return &debouncer{
		delay:   delay,
		fire:    fire,
		pending: make(map[string]*time.Timer),
	}
}

// touch schedules or postpones the firing for path.
func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.pending[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()
		d.fire(path)
	})
}

// stop cancels every pending timer.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.pending {
		t.Stop()
		delete(d.pending, path)
	}
}

// size returns the number of paths waiting to fire.
func (d *debouncer) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Run scans the directory once, then watches it until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	// Pick up files that were dropped while the service was down.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && supportedFile(entry.Name()) {
			w.submit(filepath.Join(w.dir, entry.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}
	logger.Infow("watching uploads directory", "dir", w.dir)

	pending := newDebouncer(settleDelay, w.submit)
	defer pending.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !supportedFile(event.Name) {
				continue
			}
			pending.touch(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("uploads watcher error", "error", err.Error())
		}
	}
}

// supportedFile filters for extensions the extractor understands.
func supportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tiff", ".bmp", ".txt", ".md":
		return true
	default:
		return false
	}
}
