// Package logging provides structured logging for the checkpoint tool.
//
// Logs are JSON lines written to .checkpoint/logs/checkpoint.log so that hook
// invocations never pollute the caller's terminal. Until Init succeeds, records
// go to stderr at warn level and above.
//
// Context values set with WithComponent and WithCategory are attached to every
// record logged with that context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// LogLevelEnvVar overrides the configured log level.
	LogLevelEnvVar = "CHECKPOINT_LOG_LEVEL"

	// LogFileName is the file created inside the log directory.
	LogFileName = "checkpoint.log"
)

type contextKey int

const (
	componentKey contextKey = iota
	categoryKey
)

var (
	mu          sync.RWMutex
	logger      = newStderrLogger()
	logFile     *os.File
	levelGetter func() string
)

func newStderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// SetLogLevelGetter registers a fallback used when LogLevelEnvVar is unset.
// It is consulted on every Init so settings are read lazily.
func SetLogLevelGetter(f func() string) {
	mu.Lock()
	defer mu.Unlock()
	levelGetter = f
}

// Init opens the log file in dir and routes all subsequent records there.
// Callers should defer Close on success.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	//nolint:gosec // log path is built from the repository root
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: resolveLevel()}))
	return nil
}

// InitWriter routes records to w at the given level. Intended for tests and
// for callers that manage their own sinks.
func InitWriter(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Close flushes and closes the log file and restores the stderr logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logger = newStderrLogger()
}

// resolveLevel must be called with mu held.
func resolveLevel() slog.Level {
	if v := os.Getenv(LogLevelEnvVar); v != "" {
		return ParseLevel(v)
	}
	if levelGetter != nil {
		if v := levelGetter(); v != "" {
			return ParseLevel(v)
		}
	}
	return slog.LevelInfo
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent tags ctx with the emitting component.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithCategory tags ctx with the checkpoint category being processed.
func WithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, categoryKey, category)
}

func Debug(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelDebug, msg, attrs...)
}

func Info(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelInfo, msg, attrs...)
}

func Warn(ctx context.Context, msg string, attrs ...any) {
	log(ctx, slog.LevelWarn, msg, attrs...)
}

func log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c, ok := ctx.Value(componentKey).(string); ok && c != "" {
		attrs = append(attrs, slog.String("component", c))
	}
	if c, ok := ctx.Value(categoryKey).(string); ok && c != "" {
		attrs = append(attrs, slog.String("category", c))
	}

	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Log(ctx, level, msg, attrs...)
}
