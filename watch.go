package diorama

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// configDebounce is the quiet period after the last event for the file
// before a change is reported. Editors commonly emit several writes per save,
// and an in-place save truncates before it writes.
const configDebounce = 100 * time.Millisecond

// ConfigWatcher reports changes to a single config file. It watches the
// file's directory so that editors replacing the file by rename are seen.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	Events  chan string
	Errors  chan error
}

// NewConfigWatcher starts watching path.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &ConfigWatcher{
		watcher: w,
		path:    abs,
		Events:  make(chan string, 4),
		Errors:  make(chan error, 1),
	}, nil
}

// Path returns the absolute path being watched.
func (w *ConfigWatcher) Path() string {
	return w.path
}

// Run forwards one change event each time the file has been quiet for
// configDebounce after activity. It runs until ctx is done or the underlying
// watcher fails, then closes the watcher and both channels.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	defer close(w.Errors)
	defer close(w.Events)
	defer w.watcher.Close()

	debounce := time.NewTimer(configDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			debounce.Reset(configDebounce)
		case <-debounce.C:
			select {
			case w.Events <- w.path:
			default:
				// A reload is already pending; it will pick up this change.
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-ctx.Done():
			return nil
		}
	}
}
