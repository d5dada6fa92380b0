package storage

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/WilliamC07/gridsheet/internal/sheet"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reloads the CSV file when something other than this process writes
// it, and hands the fresh document to the reload callback (wired to
// Store.Replace: the on-disk copy is treated as authoritative). Events are
// debounced because editors and atomic renames produce bursts.
type Watcher struct {
	backend  *FileBackend
	onReload func(sheet.Document)
	debounce time.Duration
	logger   sheet.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	mu            sync.Mutex
	suppressUntil time.Time
}

type WatcherOptions struct {
	// Debounce is how long to wait after the last event before reloading.
	Debounce time.Duration
	Logger   sheet.Logger
}

func NewWatcher(backend *FileBackend, onReload func(sheet.Document), opts WatcherOptions) (*Watcher, error) {
	if backend == nil || onReload == nil {
		return nil, ErrInvalidInput
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: atomic saves rename over the file,
	// which would drop a direct watch.
	if err := fsw.Add(filepath.Dir(backend.Path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		backend:  backend,
		onReload: onReload,
		debounce: debounce,
		logger:   opts.Logger,
		watcher:  fsw,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()
	return w, nil
}

// Suppress ignores events for the given window. The editor calls this around
// its own saves so an atomic rename does not bounce back as a reload.
func (w *Watcher) Suppress(window time.Duration) {
	w.mu.Lock()
	w.suppressUntil = time.Now().Add(window)
	w.mu.Unlock()
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logf("storage: watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.backend.Path) {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	w.mu.Lock()
	suppressed := time.Now().Before(w.suppressUntil)
	w.mu.Unlock()
	return !suppressed
}

func (w *Watcher) reload() {
	doc, err := w.backend.Load()
	if err != nil {
		w.logf("storage: reload after external change failed: %v", err)
		return
	}
	w.onReload(doc)
}

func (w *Watcher) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}
