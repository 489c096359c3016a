// Package watch re-runs a fetch whenever an actor list file changes.
package watch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors an actor list file and reports the parsed ids each time
// they change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	last     []string
	loaded   bool

	// OnChange receives the current ids. It runs on the Run goroutine, so
	// calls never overlap.
	OnChange func(ctx context.Context, ids []string) error
	OnError  func(path string, err error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before it is reread.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher for the actor list at path.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory containing the file; editors often replace the
	// file instead of writing it in place.
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		path:     absPath,
		debounce: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run loads the file once, then reloads it after every debounced change.
// Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.reload(ctx)

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if p, err := filepath.Abs(event.Name); err != nil || p != w.path {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.reportError("", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	ids, err := ReadActorList(w.path)
	if err != nil {
		// A missing file is usually a rename in progress; the Create event
		// that follows triggers another reload.
		if !os.IsNotExist(err) {
			w.reportError(w.path, err)
		}
		return
	}

	if w.loaded && slices.Equal(ids, w.last) {
		return
	}
	w.last = ids
	w.loaded = true

	if w.OnChange != nil {
		if err := w.OnChange(ctx, ids); err != nil {
			w.reportError(w.path, err)
		}
	}
}

func (w *Watcher) reportError(path string, err error) {
	if w.OnError != nil {
		w.OnError(path, err)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// ReadActorList reads ids from the file at path.
func ReadActorList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseActorList(f)
}

// ParseActorList reads one or more ids per line, separated by commas or
// whitespace. Blank lines and text after '#' are ignored. Order and repeated
// ids are kept, as the fetcher answers each slot separately.
func ParseActorList(r io.Reader) ([]string, error) {
	var ids []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		ids = append(ids, fields...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read actor list: %w", err)
	}
	return ids, nil
}
