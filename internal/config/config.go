// Package config provides configuration management for chattyper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chattyper/internal/hotkey"
)

// Default values shared by the CLI help text and DefaultConfig.
const (
	DefaultWindowTitle  = "League of Legends (TM) Client"
	DefaultHeaderName   = "chattyper - chat line typer"
	DefaultChatHotkey   = "Shift+Enter"
	DefaultSendHotkey   = "Enter"
	DefaultCancelHotkey = "Ctrl+Alt+X"
	DefaultLogFileName  = "chattyper.log"
)

// Config represents the application configuration
type Config struct {
	// Target describes the window that receives the typed lines
	Target TargetConfig

	// Delays holds every fixed pause used while typing
	Delays Delays

	// Files controls text file discovery
	Files FilesConfig

	// Logging controls the optional log file
	Logging LoggingConfig

	// Tray contains settings for system tray mode
	Tray TrayConfig
}

// TargetConfig identifies the target window and its chat keybindings.
type TargetConfig struct {
	// WindowTitle is matched as a case-insensitive substring of window titles
	WindowTitle string

	// ChatHotkey opens the chat input box (e.g. "Shift+Enter")
	ChatHotkey string

	// SendHotkey submits the typed message (e.g. "Enter")
	SendHotkey string
}

// Delays are the settle and pacing pauses of the typing protocol.
type Delays struct {
	CharType    time.Duration // after every character
	KeyPress    time.Duration // between key down and key up
	ShiftKey    time.Duration // around modifier down/up
	UnicodeKey  time.Duration // between unicode down and up
	Focus       time.Duration // after activation, before the chat hotkey
	ChatOpen    time.Duration // after the chat hotkey
	AfterType   time.Duration // after the text, before the send hotkey
	AfterSend   time.Duration // after the send hotkey
	WindowFocus time.Duration // after SetForegroundWindow
	NextLine    time.Duration // between lines of a batch
	UserRead    time.Duration // result pause after a batch finishes or fails
	CancelPause time.Duration // result pause after a cancelled batch
}

// FilesConfig controls where text files are discovered.
type FilesConfig struct {
	// Dir is the directory to scan; empty means the executable's directory
	Dir string

	// Extensions lists supported file extensions without the dot
	Extensions []string

	// Watch enables automatic refresh when the directory changes
	Watch bool
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Enabled bool
	File    string // empty means chattyper.log next to the executable
	Level   string
}

// TrayConfig contains tray mode settings.
type TrayConfig struct {
	// CancelHotkey is the global hotkey that cancels a running batch
	CancelHotkey string
}

// DefaultDelays returns the tuned default timing of the typing protocol.
func DefaultDelays() Delays {
	return Delays{
		CharType:    5 * time.Millisecond,
		KeyPress:    10 * time.Millisecond,
		ShiftKey:    15 * time.Millisecond,
		UnicodeKey:  5 * time.Millisecond,
		Focus:       50 * time.Millisecond,
		ChatOpen:    100 * time.Millisecond,
		AfterType:   30 * time.Millisecond,
		AfterSend:   50 * time.Millisecond,
		WindowFocus: 100 * time.Millisecond,
		NextLine:    100 * time.Millisecond,
		UserRead:    2 * time.Second,
		CancelPause: 1 * time.Second,
	}
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			WindowTitle: DefaultWindowTitle,
			ChatHotkey:  DefaultChatHotkey,
			SendHotkey:  DefaultSendHotkey,
		},
		Delays: DefaultDelays(),
		Files: FilesConfig{
			Extensions: []string{"txt", "md"},
			Watch:      true,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "debug",
		},
		Tray: TrayConfig{
			CancelHotkey: DefaultCancelHotkey,
		},
	}
}

// Validate checks the configuration for errors and normalizes derived values.
func (c *Config) Validate() error {
	c.Target.WindowTitle = strings.TrimSpace(c.Target.WindowTitle)
	if c.Target.WindowTitle == "" {
		return fmt.Errorf("window title is required")
	}

	if _, err := hotkey.Parse(c.Target.ChatHotkey); err != nil {
		return fmt.Errorf("chat hotkey: %w", err)
	}
	if _, err := hotkey.Parse(c.Target.SendHotkey); err != nil {
		return fmt.Errorf("send hotkey: %w", err)
	}
	if c.Tray.CancelHotkey != "" {
		if _, err := hotkey.Parse(c.Tray.CancelHotkey); err != nil {
			return fmt.Errorf("cancel hotkey: %w", err)
		}
	}

	for _, d := range c.Delays.named() {
		if *d.value < 0 {
			return fmt.Errorf("delay %s must not be negative", d.key)
		}
	}

	exts := make([]string, 0, len(c.Files.Extensions))
	for _, e := range c.Files.Extensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	if len(exts) == 0 {
		return fmt.Errorf("at least one file extension is required")
	}
	c.Files.Extensions = exts

	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}

	return nil
}

// ChatCombo returns the parsed chat-open hotkey. Call after Validate.
func (c *Config) ChatCombo() hotkey.Combo {
	return hotkey.MustParse(c.Target.ChatHotkey)
}

// SendCombo returns the parsed send hotkey. Call after Validate.
func (c *Config) SendCombo() hotkey.Combo {
	return hotkey.MustParse(c.Target.SendHotkey)
}

// namedDelay binds a delay to its file key and flag name.
type namedDelay struct {
	key   string // TOML key under [delays]
	flag  string
	env   string
	value *time.Duration
}

func (d *Delays) named() []namedDelay {
	return []namedDelay{
		{"char_type", "char-delay", "CHATTYPER_CHAR_DELAY", &d.CharType},
		{"key_press", "key-press-delay", "CHATTYPER_KEY_PRESS_DELAY", &d.KeyPress},
		{"shift_key", "shift-delay", "CHATTYPER_SHIFT_DELAY", &d.ShiftKey},
		{"unicode_key", "unicode-delay", "CHATTYPER_UNICODE_DELAY", &d.UnicodeKey},
		{"focus", "focus-delay", "CHATTYPER_FOCUS_DELAY", &d.Focus},
		{"chat_open", "chat-open-delay", "CHATTYPER_CHAT_OPEN_DELAY", &d.ChatOpen},
		{"after_type", "after-type-delay", "CHATTYPER_AFTER_TYPE_DELAY", &d.AfterType},
		{"after_send", "after-send-delay", "CHATTYPER_AFTER_SEND_DELAY", &d.AfterSend},
		{"window_focus", "window-focus-delay", "CHATTYPER_WINDOW_FOCUS_DELAY", &d.WindowFocus},
		{"next_line", "next-line-delay", "CHATTYPER_NEXT_LINE_DELAY", &d.NextLine},
		{"user_read", "read-pause", "CHATTYPER_READ_PAUSE", &d.UserRead},
		{"cancel_pause", "cancel-pause", "CHATTYPER_CANCEL_PAUSE", &d.CancelPause},
	}
}

// DelayFlag describes one delay for CLI flag registration.
type DelayFlag struct {
	Name  string
	Usage string
	Value *time.Duration
}

// DelayFlags returns the flag bindings of every delay in d.
func (d *Delays) DelayFlags() []DelayFlag {
	named := d.named()
	flags := make([]DelayFlag, 0, len(named))
	for _, n := range named {
		flags = append(flags, DelayFlag{
			Name:  n.flag,
			Usage: fmt.Sprintf("%s delay (config key delays.%s)", strings.ReplaceAll(n.key, "_", " "), n.key),
			Value: n.value,
		})
	}
	return flags
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager for the default config path
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(configPath), nil
}

// NewManagerAt creates a configuration manager for an explicit config path
func NewManagerAt(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "chattyper")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "chattyper")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "chattyper")
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Path returns the config file path this manager reads and writes
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration file, then environment overrides, skipping
// any value whose flag was set explicitly (changed). A missing file is not
// an error. The result is validated.
func (m *Manager) Load(changed map[string]bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if FileExists(m.configPath) {
		fc, err := LoadFileConfig(m.configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", m.configPath, err)
		}
		if err := ApplyFileConfig(m.config, fc, changed); err != nil {
			return err
		}
	}

	if err := ApplyEnvConfig(m.config, changed); err != nil {
		return err
	}

	return m.config.Validate()
}

// Save writes the configuration to disk, creating the directory if needed
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	data, err := MarshalConfig(m.config)
	if err != nil {
		return err
	}
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := *m.config
	cfg.Files.Extensions = append([]string(nil), m.config.Files.Extensions...)
	return cfg
}

// Config returns the live configuration so CLI flags can bind to its fields
// before Load. It must not be mutated after Load.
func (m *Manager) Config() *Config {
	return m.config
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
