package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultWindowTitle, cfg.Target.WindowTitle)
	assert.Equal(t, 5*time.Millisecond, cfg.Delays.CharType)
	assert.Equal(t, 100*time.Millisecond, cfg.Delays.ChatOpen)
	assert.Equal(t, 2*time.Second, cfg.Delays.UserRead)
	assert.Equal(t, []string{"txt", "md"}, cfg.Files.Extensions)
	assert.False(t, cfg.Logging.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "blank title", mutate: func(c *Config) { c.Target.WindowTitle = "   " }, wantErr: "window title"},
		{name: "bad chat hotkey", mutate: func(c *Config) { c.Target.ChatHotkey = "Shift+Nope" }, wantErr: "chat hotkey"},
		{name: "bad send hotkey", mutate: func(c *Config) { c.Target.SendHotkey = "" }, wantErr: "send hotkey"},
		{name: "bad cancel hotkey", mutate: func(c *Config) { c.Tray.CancelHotkey = "Ctrl+" }, wantErr: "cancel hotkey"},
		{name: "negative delay", mutate: func(c *Config) { c.Delays.AfterSend = -time.Millisecond }, wantErr: "after_send"},
		{name: "no extensions", mutate: func(c *Config) { c.Files.Extensions = []string{" ", "."} }, wantErr: "extension"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "log level"},
		{name: "empty cancel hotkey disables it", mutate: func(c *Config) { c.Tray.CancelHotkey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesExtensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target.WindowTitle = "  Notepad "
	cfg.Files.Extensions = []string{".TXT", " md ", ""}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Notepad", cfg.Target.WindowTitle)
	assert.Equal(t, []string{"txt", "md"}, cfg.Files.Extensions)
}

func TestCombos(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "SHIFT+ENTER", cfg.ChatCombo().String())
	assert.Equal(t, "ENTER", cfg.SendCombo().String())
}

func TestDelayFlagsBindFields(t *testing.T) {
	d := DefaultDelays()
	flags := d.DelayFlags()
	require.Len(t, flags, 12)

	for _, f := range flags {
		if f.Name == "char-delay" {
			*f.Value = time.Second
		}
	}
	assert.Equal(t, time.Second, d.CharType)
}

func TestManagerLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[target]
window_title = "From File"
send_hotkey = "Ctrl+Enter"

[delays]
char_type = "20ms"
next_line = "1s"

[files]
extensions = ["log"]
watch = false
`), 0644))

	t.Setenv("CHATTYPER_SEND_HOTKEY", "Alt+Enter")
	t.Setenv("CHATTYPER_NEXT_LINE_DELAY", "250ms")

	m := NewManagerAt(path)
	// flag set explicitly on the command line
	m.Config().Target.WindowTitle = "From Flag"
	require.NoError(t, m.Load(map[string]bool{"window": true}))

	cfg := m.Get()
	assert.Equal(t, "From Flag", cfg.Target.WindowTitle)
	assert.Equal(t, "Alt+Enter", cfg.Target.SendHotkey)
	assert.Equal(t, 20*time.Millisecond, cfg.Delays.CharType)
	assert.Equal(t, 250*time.Millisecond, cfg.Delays.NextLine)
	assert.Equal(t, 100*time.Millisecond, cfg.Delays.ChatOpen)
	assert.Equal(t, []string{"log"}, cfg.Files.Extensions)
	assert.False(t, cfg.Files.Watch)
}

func TestManagerLoadMissingFile(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, m.Load(nil))
	assert.Equal(t, DefaultWindowTitle, m.Get().Target.WindowTitle)
}

func TestManagerLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[delays]\nfocus = \"soon\"\n"), 0644))

	err := NewManagerAt(path).Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "focus-delay")
}

func TestManagerSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	m := NewManagerAt(path)
	m.Config().Delays.AfterType = 45 * time.Millisecond
	m.Config().Logging.Enabled = true
	require.NoError(t, m.Save())
	assert.True(t, FileExists(path))

	loaded := NewManagerAt(path)
	require.NoError(t, loaded.Load(nil))
	cfg := loaded.Get()
	assert.Equal(t, 45*time.Millisecond, cfg.Delays.AfterType)
	assert.True(t, cfg.Logging.Enabled)
	assert.True(t, cfg.Files.Watch)
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "c.toml"))
	cfg := m.Get()
	cfg.Files.Extensions[0] = "exe"
	assert.Equal(t, "txt", m.Get().Files.Extensions[0])
}
