package main

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chattyper/internal/config"
	"chattyper/internal/files"
	"chattyper/internal/input"
	"chattyper/internal/input/inputtest"
	"chattyper/internal/sender"
)

func TestPrintErrorHints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"target not running", fmt.Errorf("line 1 of 3: %w", sender.ErrTargetNotRunning), "target application is running"},
		{"input unavailable", fmt.Errorf("%w: boom", sender.ErrInputUnavailable), "as administrator"},
		{"no files", fmt.Errorf("%w in /tmp", files.ErrNoFiles), "non-empty lines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			assert.Contains(t, buf.String(), "❌ Error: ")
			assert.Contains(t, buf.String(), "Make sure:")
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	var buf bytes.Buffer
	printError(&buf, fmt.Errorf("something else"))
	assert.NotContains(t, buf.String(), "Make sure:")
}

func TestPreflightErrorKind(t *testing.T) {
	rec := inputtest.New()
	rec.AddWindow("Target")
	rec.ReadyErr = input.ErrUnsupportedPlatform
	s := sender.New(rec, *config.DefaultConfig(), sender.WithSleeper(rec.Sleep))

	err := s.Preflight("Target")
	require.ErrorIs(t, err, sender.ErrInputUnavailable)
	require.ErrorIs(t, err, input.ErrUnsupportedPlatform)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "running on Windows")
	assert.NotContains(t, buf.String(), "target application is running")
}

func TestBindFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	var cfgPath string
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs, cfg, &cfgPath)

	err := fs.Parse([]string{
		"--window", "Notepad",
		"--next-line-delay", "750ms",
		"--ext", "txt,log",
		"--config", "/tmp/c.toml",
	})
	require.NoError(t, err)

	assert.Equal(t, "Notepad", cfg.Target.WindowTitle)
	assert.Equal(t, 750*time.Millisecond, cfg.Delays.NextLine)
	assert.Equal(t, []string{"txt", "log"}, cfg.Files.Extensions)
	assert.Equal(t, "/tmp/c.toml", cfgPath)
	// untouched flags keep their defaults
	assert.Equal(t, config.DefaultChatHotkey, cfg.Target.ChatHotkey)
	assert.Equal(t, config.DefaultDelays().CharType, cfg.Delays.CharType)
}
