// Package logging wires the slog backend used by every subsystem: one shared
// writer, per-subsystem loggers, optional rotated log file alongside stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogConfig configures a LogBackend.
type LogConfig struct {
	// LogFile is the rotated log file path; empty logs to stdout only.
	LogFile string

	// DebugLevel is either a single level name for every subsystem or a
	// comma-separated list of SUBSYS=level overrides, e.g.
	// "info,TRAN=debug,RECO=trace".
	DebugLevel string

	// MaxLogFiles bounds the number of rotated files kept.
	MaxLogFiles int

	// MaxBufferLines bounds the rotator's write buffer.
	MaxBufferLines int
}

// LogBackend hands out per-subsystem loggers over a shared writer.
type LogBackend struct {
	backend      *slog.Backend
	rotator      *rotator.Rotator
	defaultLevel slog.Level
	subsysLevels map[string]slog.Level

	mu      sync.Mutex
	loggers map[string]slog.Logger
}

// logWriter tees every log line to stdout and, when configured, the rotator.
type logWriter struct {
	r *rotator.Rotator
}

func (w *logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if w.r != nil {
		return w.r.Write(p)
	}
	return len(p), nil
}

// NewLogBackend builds the backend, creating the log directory and rotator
// when a log file is configured.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	b := &LogBackend{
		defaultLevel: slog.LevelInfo,
		subsysLevels: make(map[string]slog.Level),
		loggers:      make(map[string]slog.Logger),
	}
	if err := b.parseDebugLevel(cfg.DebugLevel); err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		maxFiles := cfg.MaxLogFiles
		if maxFiles <= 0 {
			maxFiles = 5
		}
		r, err := rotator.New(cfg.LogFile, 32*1024, false, maxFiles)
		if err != nil {
			return nil, fmt.Errorf("create log rotator: %w", err)
		}
		b.rotator = r
	}

	var w io.Writer = &logWriter{r: b.rotator}
	b.backend = slog.NewBackend(w)
	return b, nil
}

func (b *LogBackend) parseDebugLevel(spec string) error {
	if spec == "" {
		return nil
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subsys, levelName, found := strings.Cut(part, "=")
		if !found {
			level, ok := slog.LevelFromString(part)
			if !ok {
				return fmt.Errorf("unknown log level %q", part)
			}
			b.defaultLevel = level
			continue
		}
		level, ok := slog.LevelFromString(levelName)
		if !ok {
			return fmt.Errorf("unknown log level %q for subsystem %s", levelName, subsys)
		}
		b.subsysLevels[strings.ToUpper(subsys)] = level
	}
	return nil
}

// Logger returns the named subsystem logger, creating it on first use.
func (b *LogBackend) Logger(subsys string) slog.Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	if log, ok := b.loggers[subsys]; ok {
		return log
	}
	log := b.backend.Logger(subsys)
	level := b.defaultLevel
	if override, ok := b.subsysLevels[strings.ToUpper(subsys)]; ok {
		level = override
	}
	log.SetLevel(level)
	b.loggers[subsys] = log
	return log
}

// Close flushes and closes the rotated log file.
func (b *LogBackend) Close() error {
	if b.rotator != nil {
		return b.rotator.Close()
	}
	return nil
}
