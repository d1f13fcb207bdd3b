// Package logging configures the process wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chattyper/internal/config"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// Logger returns the package logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Options controls where Setup sends log output.
type Options struct {
	// Console also writes human readable output to Console (usually stderr).
	// The TUI leaves this nil because it owns the terminal.
	Console io.Writer

	// ConsoleLevel filters console output independently of the file level.
	ConsoleLevel zerolog.Level

	// Header is written as the first line of a fresh log file.
	Header string
}

// Setup installs the package logger from cfg. When logging is disabled and
// no console is requested the logger is a no-op. The returned close function
// flushes and closes the log file, if any.
func Setup(cfg config.LoggingConfig, opts Options) (func() error, error) {
	var writers []io.Writer
	closeFn := func() error { return nil }

	level := zerolog.DebugLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return closeFn, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	if cfg.Enabled {
		path, err := FilePath(cfg)
		if err != nil {
			return closeFn, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return closeFn, fmt.Errorf("open log file: %w", err)
		}
		if opts.Header != "" {
			fmt.Fprintf(f, "=== %s log started %s ===\n", opts.Header, time.Now().Format(time.DateTime))
		}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.TimeOnly}},
			Level:  level,
		})
		closeFn = f.Close
	}

	if opts.Console != nil {
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.RFC3339}},
			Level:  opts.ConsoleLevel,
		})
	}

	l := zerolog.Nop()
	if len(writers) > 0 {
		l = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	}

	mu.Lock()
	logger = l
	mu.Unlock()

	return closeFn, nil
}

// FilePath resolves the log file location. A relative or empty File is
// placed next to the executable.
func FilePath(cfg config.LoggingConfig) (string, error) {
	name := cfg.File
	if name == "" {
		name = config.DefaultLogFileName
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), name), nil
}
