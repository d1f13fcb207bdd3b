package config

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Target  TargetFile  `toml:"target"`
	Delays  DelaysFile  `toml:"delays"`
	Files   FilesFile   `toml:"files"`
	Logging LoggingFile `toml:"logging"`
	Tray    TrayFile    `toml:"tray"`
}

type TargetFile struct {
	WindowTitle string `toml:"window_title,omitempty"`
	ChatHotkey  string `toml:"chat_hotkey,omitempty"`
	SendHotkey  string `toml:"send_hotkey,omitempty"`
}

type DelaysFile struct {
	CharType    string `toml:"char_type,omitempty"`
	KeyPress    string `toml:"key_press,omitempty"`
	ShiftKey    string `toml:"shift_key,omitempty"`
	UnicodeKey  string `toml:"unicode_key,omitempty"`
	Focus       string `toml:"focus,omitempty"`
	ChatOpen    string `toml:"chat_open,omitempty"`
	AfterType   string `toml:"after_type,omitempty"`
	AfterSend   string `toml:"after_send,omitempty"`
	WindowFocus string `toml:"window_focus,omitempty"`
	NextLine    string `toml:"next_line,omitempty"`
	UserRead    string `toml:"user_read,omitempty"`
	CancelPause string `toml:"cancel_pause,omitempty"`
}

type FilesFile struct {
	Dir        string   `toml:"dir,omitempty"`
	Extensions []string `toml:"extensions,omitempty"`
	Watch      *bool    `toml:"watch,omitempty"`
}

type LoggingFile struct {
	Enabled *bool  `toml:"enabled,omitempty"`
	File    string `toml:"file,omitempty"`
	Level   string `toml:"level,omitempty"`
}

type TrayFile struct {
	CancelHotkey string `toml:"cancel_hotkey,omitempty"`
}

// strings returns the delay strings keyed like Delays.named.
func (d *DelaysFile) strings() map[string]*string {
	return map[string]*string{
		"char_type":    &d.CharType,
		"key_press":    &d.KeyPress,
		"shift_key":    &d.ShiftKey,
		"unicode_key":  &d.UnicodeKey,
		"focus":        &d.Focus,
		"chat_open":    &d.ChatOpen,
		"after_type":   &d.AfterType,
		"after_send":   &d.AfterSend,
		"window_focus": &d.WindowFocus,
		"next_line":    &d.NextLine,
		"user_read":    &d.UserRead,
		"cancel_pause": &d.CancelPause,
	}
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("window", fc.Target.WindowTitle, &cfg.Target.WindowTitle)
	s.setString("chat-hotkey", fc.Target.ChatHotkey, &cfg.Target.ChatHotkey)
	s.setString("send-hotkey", fc.Target.SendHotkey, &cfg.Target.SendHotkey)

	values := fc.Delays.strings()
	for _, d := range cfg.Delays.named() {
		if err := s.setDuration(d.flag, *values[d.key], d.value); err != nil {
			return err
		}
	}

	s.setString("dir", fc.Files.Dir, &cfg.Files.Dir)
	s.setStrings("ext", fc.Files.Extensions, &cfg.Files.Extensions)
	s.setBool("watch", fc.Files.Watch, &cfg.Files.Watch)

	s.setBool("log", fc.Logging.Enabled, &cfg.Logging.Enabled)
	s.setString("log-file", fc.Logging.File, &cfg.Logging.File)
	s.setString("log-level", fc.Logging.Level, &cfg.Logging.Level)

	s.setString("cancel-hotkey", fc.Tray.CancelHotkey, &cfg.Tray.CancelHotkey)

	return nil
}

// ToFileConfig converts a Config into its TOML representation.
func ToFileConfig(cfg *Config) FileConfig {
	fc := FileConfig{
		Target: TargetFile{
			WindowTitle: cfg.Target.WindowTitle,
			ChatHotkey:  cfg.Target.ChatHotkey,
			SendHotkey:  cfg.Target.SendHotkey,
		},
		Files: FilesFile{
			Dir:        cfg.Files.Dir,
			Extensions: cfg.Files.Extensions,
			Watch:      &cfg.Files.Watch,
		},
		Logging: LoggingFile{
			Enabled: &cfg.Logging.Enabled,
			File:    cfg.Logging.File,
			Level:   cfg.Logging.Level,
		},
		Tray: TrayFile{CancelHotkey: cfg.Tray.CancelHotkey},
	}

	values := fc.Delays.strings()
	for _, d := range cfg.Delays.named() {
		*values[d.key] = d.value.String()
	}
	return fc
}

// MarshalConfig encodes cfg as TOML.
func MarshalConfig(cfg *Config) ([]byte, error) {
	return toml.Marshal(ToFileConfig(cfg))
}
