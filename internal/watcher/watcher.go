// Package watcher feeds file system changes below indexed directories into
// the workspace. Bursts of events for a file are coalesced before the file
// is read again.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/phpsymbols/internal/config"
	"github.com/dshills/phpsymbols/internal/debounce"
	"github.com/dshills/phpsymbols/internal/logging"
)

// Sink receives settled file changes
type Sink interface {
	IndexFile(ctx context.Context, path string) error
	RemoveFile(path string)
}

// Watcher watches directory trees for changes to source files
type Watcher struct {
	cfg     config.Config
	sink    Sink
	log     *slog.Logger
	fs      *fsnotify.Watcher
	pending *debounce.Group[string, fsnotify.Op]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher delivering changes to sink
func New(cfg config.Config, sink Sink, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		cfg:    cfg,
		sink:   sink,
		log:    logging.OrNop(logger),
		fs:     fw,
		ctx:    ctx,
		cancel: cancel,
	}
	w.pending = debounce.NewGroup(cfg.Debounce, w.settle)

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add watches root and every directory below it that is not ignored
func (w *Watcher) Add(root string) error {
	count := 0
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // Skip errors
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && w.cfg.IsIgnoredDir(entry.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.log.Debug("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	w.log.Debug("added watches", "count", count, "root", root)
	return err
}

// Close stops watching and discards unsettled changes
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fs.Close()
	w.wg.Wait()
	w.pending.Stop()
	return err
}

// Flush delivers every unsettled change now
func (w *Watcher) Flush() int {
	return w.pending.FlushAll()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.cfg.IsIgnoredDir(filepath.Base(event.Name)) {
				if err := w.Add(event.Name); err != nil {
					w.log.Debug("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.cfg.IsSource(event.Name) {
		return
	}
	w.pending.Push(event.Name, event.Op)
}

// settle runs once events for path have stopped arriving
func (w *Watcher) settle(path string, op fsnotify.Op) {
	if w.ctx.Err() != nil {
		return
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		w.log.Debug("file removed", "path", path, "op", op.String())
		w.sink.RemoveFile(path)
		return
	}
	if err := w.sink.IndexFile(w.ctx, path); err != nil {
		w.log.Warn("failed to index changed file", "path", path, "error", err)
		return
	}
	w.log.Debug("file reindexed", "path", path, "op", op.String())
}
