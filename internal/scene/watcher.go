// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// Watcher reloads a Scene when its file changes on disk.
type Watcher struct {
	scene    *Scene
	path     string
	debounce time.Duration
	log      *zap.Logger
	onReload func(err error)
}

// NewWatcher creates a watcher for path. Call Run to start watching.
func NewWatcher(s *Scene, path string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{scene: s, path: abs, debounce: debounce, log: log}, nil
}

// OnReload registers a callback run after every reload attempt. err is nil
// when the reload succeeded. Must be set before Run.
func (w *Watcher) OnReload(fn func(err error)) {
	w.onReload = fn
}

// Run watches until ctx is cancelled. The parent directory is watched so
// editors that save by renaming a temp file are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Debug("watching scene", zap.String("path", w.path))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("scene watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	err := w.scene.Load(w.path)
	if err != nil {
		w.log.Warn("scene reload failed, keeping previous objects", zap.String("path", w.path), zap.Error(err))
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}
