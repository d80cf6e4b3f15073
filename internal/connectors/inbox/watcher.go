// Package inbox watches a directory for incoming manuals and feeds
// them into the processing pipeline. Files are only handed over once
// writes have settled, so a manual still being copied in is never
// processed half-written.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driving"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

const defaultSettle = 2 * time.Second

// Watcher processes PDFs as they appear in an inbox directory.
type Watcher struct {
	dir      string
	pipeline driving.DocumentPipeline
	settle   time.Duration

	// OnResult, when set, is called after each processed file with
	// the file path and the error returned by the pipeline.
	OnResult func(path string, err error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides how long a file must stay quiet before it is
// considered fully written.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// NewWatcher creates a watcher over dir that hands new PDFs to pipeline.
func NewWatcher(dir string, pipeline driving.DocumentPipeline, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		pipeline: pipeline,
		settle:   defaultSettle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes PDFs already present in the inbox, then blocks watching
// for new ones until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.processExisting(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s", w.dir)

	// pending maps a path to the time of its last write event.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isPDF(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				w.handle(ctx, path)
			}
		}
	}
}

// processExisting drains PDFs already sitting in the inbox at startup.
func (w *Watcher) processExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read inbox %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isPDF(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.handle(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, path string) {
	_, err := w.pipeline.Process(ctx, path)
	if err != nil {
		logger.Warn("process %s: %v", filepath.Base(path), err)
	}
	if w.OnResult != nil {
		w.OnResult(path, err)
	}
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
