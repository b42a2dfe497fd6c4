// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scanlog records scan workflow events. Each scan folder gets a
// plain-text log.txt that the history index surfaces alongside the batch
// artifact; tests use the in-memory sink to assert on per-dataset skips
// without scraping logger output.
package scanlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the per-folder event log artifact.
const FileName = "log.txt"

// Sink receives scan workflow events.
type Sink interface {
	Event(format string, args ...any)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Event(string, ...any) {}

// FileSink appends timestamped event lines to log.txt in a scan folder.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
}

// NewFileSink opens (creating if needed) the event log in folder.
func NewFileSink(folder string) (*FileSink, error) {
	f, err := os.OpenFile(filepath.Join(folder, FileName),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening scan log: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Event(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

// MemorySink collects events for assertions in tests.
type MemorySink struct {
	mu    sync.Mutex
	lines []string
}

func (s *MemorySink) Event(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the recorded events.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Tee fans one event out to several sinks.
type Tee []Sink

func (t Tee) Event(format string, args ...any) {
	for _, s := range t {
		if s != nil {
			s.Event(format, args...)
		}
	}
}
