package pipeview

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Updates is a one slot mailbox between reload sources and the frame
// loop. A newer geometry replaces one that has not been read yet.
type Updates chan *Geometry

func NewUpdates() Updates {
	return make(Updates, 1)
}

// Publish never blocks.
func (u Updates) Publish(g *Geometry) {
	for {
		select {
		case u <- g:
			return
		default:
		}
		select {
		case <-u:
		default:
		}
	}
}

// Poll returns the pending geometry, if any.
func (u Updates) Poll() (*Geometry, bool) {
	select {
	case g := <-u:
		return g, true
	default:
		return nil, false
	}
}

// Watcher reloads a geometry file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	updates  Updates
	log      *slog.Logger

	fs *fsnotify.Watcher
}

// NewWatcher watches the directory holding path, so editors that replace
// the file instead of writing it in place are still seen.
func NewWatcher(path string, debounce time.Duration, updates Updates, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		updates:  updates,
		log:      logger.With("component", "watcher", "path", abs),
		fs:       fw,
	}, nil
}

// Run delivers reloads until ctx is done. The file watcher is closed on
// return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("file watcher error", "err", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	g, err := LoadGeometryFile(w.path)
	if err != nil {
		w.log.Error("reload failed, keeping previous geometry", "err", err)
		return
	}
	w.log.Info("geometry reloaded", "stats", g.Stats())
	w.updates.Publish(g)
}
