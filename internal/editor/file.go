package editor

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet after a write before
// it is re-read.
const DefaultDebounce = 100 * time.Millisecond

// File is an Adapter over a file on disk. The document is edited by an
// external program (vim, typically); writes to the file become change
// notifications.
type File struct {
	path string

	// Debounce overrides DefaultDebounce when positive. Set it before Watch.
	Debounce time.Duration

	changeMu sync.Mutex
	mu       sync.Mutex
	text     string
	exts     []Extension
	subs     subscribers
}

// OpenFile reads path and returns an adapter for it. A missing file starts
// as an empty document and is created on the first SetText.
func OpenFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	f := &File{path: abs}

	data, err := os.ReadFile(abs)
	switch {
	case err == nil:
		f.text = string(data)
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return f, nil
}

// Path returns the absolute path of the file.
func (f *File) Path() string { return f.path }

// Text implements Adapter.
func (f *File) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

// SetText implements Adapter. The file is rewritten; the watcher will see
// the write but not report it, since the content matches.
func (f *File) SetText(text string) {
	if err := f.set(text, true); err != nil {
		log.Printf("editor: %v", err)
	}
}

func (f *File) set(text string, write bool) error {
	f.changeMu.Lock()
	defer f.changeMu.Unlock()

	f.mu.Lock()
	if text == f.text {
		f.mu.Unlock()
		return nil
	}
	f.text = text
	f.mu.Unlock()

	if write {
		if err := os.WriteFile(f.path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
	}
	f.subs.notify(text)
	return nil
}

// OnChange implements Adapter.
func (f *File) OnChange(fn func(string)) func() {
	return f.subs.add(fn)
}

// Reconfigure implements Adapter. The external editor has its own styling;
// the list is only recorded.
func (f *File) Reconfigure(exts []Extension) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exts = slices.Clone(exts)
}

// Extensions returns the list applied by the last Reconfigure.
func (f *File) Extensions() []Extension {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.exts)
}

// Focus implements Adapter. There is nothing to focus in a file.
func (f *File) Focus() {}

// Watch reports external writes to the file until ctx is cancelled. The
// parent directory is watched so editors that save by renaming a temporary
// file are picked up too. Bursts of events are coalesced: the file is read
// once it has been quiet for the debounce interval, so a save written in
// several chunks is reported once with its final content. ready, if non-nil,
// is closed once the watch is in place.
func (f *File) Watch(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(f.path), err)
	}
	if ready != nil {
		close(ready)
	}

	delay := f.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	var (
		debounce *time.Timer
		quiet    <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(delay)
			} else {
				debounce.Reset(delay)
			}
			quiet = debounce.C
		case <-quiet:
			quiet = nil
			f.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("editor: watcher error: %v", err)
		}
	}
}

func (f *File) reload() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		log.Printf("editor: re-reading %s: %v", f.path, err)
		return
	}
	if err := f.set(string(data), false); err != nil {
		log.Printf("editor: %v", err)
	}
}
