package spoolwatch

import (
	"time"

	"github.com/dmc-labs/spooltick/pkg/log"
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before it is
// emitted. Default 250ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithSuffix changes the filename suffix the watcher reacts to.
// Default is the spool container suffix.
func WithSuffix(suffix string) Option {
	return func(w *Watcher) {
		if suffix != "" {
			w.suffix = suffix
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l log.Logger) Option {
	return func(w *Watcher) {
		w.logger = log.OrNoop(l)
	}
}
