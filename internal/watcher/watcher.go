// Package watcher observes the vault directory and notifies SSE clients
// when files change outside the API, e.g. a sync client or manual edit.
package watcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/inkwell/internal/sse"
)

// debounce batches filesystem event bursts into one notification.
const debounce = 500 * time.Millisecond

// Watcher emits a single vault.changed event per burst of filesystem
// activity under the vault root.
type Watcher struct {
	root   string
	broker *sse.Broker
	log    *slog.Logger
}

func New(root string, broker *sse.Broker, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{root: root, broker: broker, log: log.With("logger", "watcher")}
}

// Run watches until ctx is done. Directories created later (new categories
// and pages) are added to the watch as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.root); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// Our own atomic writes go through temp files; reacting to
			// them would echo every API mutation back as vault.changed.
			if strings.Contains(ev.Name, ".inkwell-tmp-") {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				// Best effort: not every created path is a directory.
				_ = fw.Add(ev.Name)
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		case <-fire:
			timer = nil
			w.log.Debug("vault changed on disk")
			w.broker.Publish(sse.EventVaultChanged, map[string]string{"path": w.root})
		}
	}
}
