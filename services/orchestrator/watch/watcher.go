// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package watch triggers scans when tabular files under the data root
// change. Events are debounced so a bulk copy of many files starts one scan,
// not one per file.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// DefaultDebounce is how long to wait for more changes before triggering.
const DefaultDebounce = 2 * time.Second

// Watcher watches the data root recursively and invokes the trigger after a
// quiet period follows a relevant change.
type Watcher struct {
	root     string
	debounce time.Duration
	trigger  func()

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher over root. trigger is called from the watcher's
// goroutine; it must arrange its own concurrency if the scan is slow.
func New(root string, debounce time.Duration, trigger func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		trigger:  trigger,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.loop(ctx)
	slog.Info("dataset watcher started", "root", w.root, "debounce", w.debounce)
	return nil
}

// Stop halts the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

// addRecursive watches root and all subdirectories. Unreadable
// subdirectories are skipped; the data root may contain transient copies.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// new directories join the watch set
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						slog.Warn("watching new directory failed", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !datatypes.IsTabularFile(filepath.Base(event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("dataset change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("dataset watcher error", "error", err)
		}
	}
}
