// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for privmon components.
//
// Built on log/slog with two extensions: multi-destination output
// (stderr plus an optional per-service log file) and a "service"
// attribute stamped on every record so aggregated logs stay filterable.
//
// Basic usage:
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelInfo,
//	    Service: "orchestrator",
//	    JSON:    true,
//	})
//	defer logger.Close()
//	slog.SetDefault(logger.Slog())
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns "DEBUG", "INFO", "WARN" or "ERROR".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string to a Level. Unknown values default to
// Info, so a typo in an env var loosens nothing and silences nothing.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config configures the Logger. The zero value logs Info+ to stderr as text.
type Config struct {
	// Level is the minimum severity written anywhere.
	Level Level

	// LogDir enables file logging. The file is named
	// "{Service}_{YYYY-MM-DD}.log" and is always JSON. Supports a leading
	// "~" for the home directory.
	LogDir string

	// Service is stamped on every record as the "service" attribute.
	Service string

	// JSON switches stderr output from text to JSON.
	JSON bool

	// Quiet disables stderr output entirely.
	Quiet bool
}

// Logger wraps slog.Logger with multi-destination output and cleanup.
// Safe for concurrent use.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New creates a Logger from config. Call Close to flush and release the log
// file when one is configured; file-open failures degrade to stderr-only.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handlers []slog.Handler
	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	logger := &Logger{}
	if config.LogDir != "" {
		logDir := expandPath(config.LogDir)
		if err := os.MkdirAll(logDir, 0o750); err == nil {
			service := config.Service
			if service == "" {
				service = "privmon"
			}
			name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(logDir, name),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
			if err == nil {
				logger.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns an Info-level, stderr-only, text-format logger.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "privmon"})
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child logger carrying additional attributes. The parent is
// unmodified; the log file handle is shared.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), file: l.file}
}

// Slog exposes the underlying slog.Logger, e.g. for slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close syncs and closes the log file if one is open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	return l.file.Close()
}

// multiHandler fans one record out to several slog handlers, so stderr and
// the log file can use different formats.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
