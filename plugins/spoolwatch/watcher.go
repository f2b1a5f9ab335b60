// Package spoolwatch monitors a live acquisition directory for newly
// written spool files. The camera writes a spool file in bursts, so
// events are debounced per file: a path is emitted only after it has
// been quiet for the debounce delay.
package spoolwatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmc-labs/spooltick/pkg/log"
	"github.com/dmc-labs/spooltick/pkg/spool"
)

// Watcher emits paths of spool files as they land in a directory.
type Watcher struct {
	dir      string
	suffix   string
	debounce time.Duration
	logger   log.Logger

	ws     *fsnotify.Watcher
	events chan string
}

// New creates a Watcher for the given spool directory.
func New(dir string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		dir:      dir,
		suffix:   spool.Suffix,
		debounce: 250 * time.Millisecond,
		logger:   log.NoopLogger{},
		events:   make(chan string, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	ws, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.ws = ws
	return w, nil
}

// Events returns the channel on which settled spool file paths are
// delivered.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Run watches the directory until the context is cancelled. Filesystem
// errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.ws.Close()
	if err := w.ws.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching spool directory", log.String("dir", w.dir))

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.ws.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(ev.Name, w.suffix) {
				continue
			}
			name := ev.Name
			mu.Lock()
			if t, exists := timers[name]; exists {
				t.Reset(w.debounce)
				mu.Unlock()
				continue
			}
			timers[name] = time.AfterFunc(w.debounce, func() {
				mu.Lock()
				delete(timers, name)
				mu.Unlock()
				select {
				case w.events <- name:
					w.logger.Debug("spool file settled", log.String("file", name))
				case <-ctx.Done():
				}
			})
			mu.Unlock()
		case err, ok := <-w.ws.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("spool watch error", log.Err(err))
		}
	}
}
