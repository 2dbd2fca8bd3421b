// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package filewatcher reloads rule files when they change on disk.
package filewatcher

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/parsec-go/parsec/grammar"
	"github.com/parsec-go/parsec/logging"
)

// OnReload is invoked with the freshly loaded rule set, or the load error,
// after every registered file event.
type OnReload func(ctx context.Context, took time.Duration, rules *grammar.Rules, err error)

type FileWatcher struct {
	paths    []string
	onReload OnReload
	logger   logging.Logger
	watcher  *fsnotify.Watcher
}

func NewFileWatcher(paths []string, onReload OnReload, logger logging.Logger) *FileWatcher {
	return &FileWatcher{
		paths:    paths,
		onReload: onReload,
		logger:   logger,
	}
}

func (w *FileWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the parent directories so rename-and-replace saves keep
	// producing events for the paths.
	for _, path := range getWatchPaths(w.paths) {
		w.logger.WithFields(map[string]any{"path": path}).Debug("watching path")
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return err
		}
	}

	w.watcher = watcher
	go w.readWatcher(ctx, watcher)
	return nil
}

// Stop closes the watcher. The event goroutine exits once the event
// channel drains.
func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FileWatcher) readWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	for evt := range watcher.Events {
		removalMask := fsnotify.Remove | fsnotify.Rename
		mask := fsnotify.Create | fsnotify.Write | removalMask
		if (evt.Op & mask) != 0 {
			w.logger.WithFields(map[string]any{
				"event": evt.String(),
			}).Debug("Registered file event.")
			w.processWatcherUpdate(ctx)
		}
	}
}

func (w *FileWatcher) processWatcherUpdate(ctx context.Context) {
	t0 := time.Now()
	rules, err := grammar.LoadRules(w.paths...)
	w.onReload(ctx, time.Since(t0), rules, err)
}

func getWatchPaths(rootPaths []string) []string {
	dirs := map[string]struct{}{}
	for _, path := range rootPaths {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	return slices.Sorted(maps.Keys(dirs))
}
