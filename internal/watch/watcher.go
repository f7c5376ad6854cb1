// Package watch triggers regeneration when schema files change on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of edits to settle
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher monitors schema directories and calls onChange with the
// batch of files touched during one debounce window.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	match     func(path string) bool
	onChange  func([]string) error
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Option configures a FileWatcher
type Option func(*FileWatcher)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(fw *FileWatcher) {
		fw.logger = logger
	}
}

// WithDebounce overrides the debounce window
func WithDebounce(d time.Duration) Option {
	return func(fw *FileWatcher) {
		fw.debouncer = NewDebouncer(d)
	}
}

// NewFileWatcher creates a watcher. match selects the files that count as
// changes; a nil match accepts everything.
func NewFileWatcher(match func(string) bool, onChange func([]string) error, opts ...Option) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if match == nil {
		match = func(string) bool { return true }
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(DefaultDebounce),
		match:     match,
		onChange:  onChange,
		logger:    zap.NewNop(),
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.logger.Error("error handling file changes", zap.Strings("files", files), zap.Error(err))
		}
	})

	return fw, nil
}

// Start watches dirs and begins dispatching events in the background
func (fw *FileWatcher) Start(dirs []string) error {
	for _, dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", dir))
	}

	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.shouldIgnore(event.Name) {
				continue
			}
			// Removals count too: a deleted override changes the merge
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if fw.match(event.Name) {
				fw.logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
				fw.debouncer.Add(event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

// shouldIgnore skips editor swap files and hidden files
func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	switch filepath.Ext(base) {
	case ".swp", ".swo", ".tmp":
		return true
	}
	return false
}

// Debouncer collects file changes and triggers the callback once the
// stream has been quiet for the configured duration. Callbacks never
// overlap: changes arriving while one runs are delivered in the next batch.
// A callback must not call Stop.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	// running is held for the whole of a flush, callback included
	running  sync.Mutex
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add records a file and restarts the quiet period
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}

	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *Debouncer) flush() {
	d.running.Lock()
	defer d.running.Unlock()

	d.mutex.Lock()
	if len(d.files) == 0 || d.stopped {
		d.mutex.Unlock()
		return
	}

	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	sort.Strings(files)
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop cancels any pending flush and waits for a running callback to
// return. No callback starts after Stop returns.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
	d.mutex.Unlock()

	d.running.Lock()
	//nolint:staticcheck // waits for an in-flight flush
	d.running.Unlock()
}
