package config

import "os"

// ApplyEnvConfig applies CHATTYPER_* environment variables to cfg.
// Flags that were set explicitly (changed) win over the environment.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("window", os.Getenv("CHATTYPER_WINDOW_TITLE"), &cfg.Target.WindowTitle)
	s.setString("chat-hotkey", os.Getenv("CHATTYPER_CHAT_HOTKEY"), &cfg.Target.ChatHotkey)
	s.setString("send-hotkey", os.Getenv("CHATTYPER_SEND_HOTKEY"), &cfg.Target.SendHotkey)

	for _, d := range cfg.Delays.named() {
		if err := s.setDuration(d.flag, os.Getenv(d.env), d.value); err != nil {
			return err
		}
	}

	s.setString("dir", os.Getenv("CHATTYPER_DIR"), &cfg.Files.Dir)
	s.setStringsFromString("ext", os.Getenv("CHATTYPER_EXTENSIONS"), &cfg.Files.Extensions)
	s.setBoolFromString("watch", os.Getenv("CHATTYPER_WATCH"), &cfg.Files.Watch)

	s.setBoolFromString("log", os.Getenv("CHATTYPER_LOG"), &cfg.Logging.Enabled)
	s.setString("log-file", os.Getenv("CHATTYPER_LOG_FILE"), &cfg.Logging.File)
	s.setString("log-level", os.Getenv("CHATTYPER_LOG_LEVEL"), &cfg.Logging.Level)

	s.setString("cancel-hotkey", os.Getenv("CHATTYPER_CANCEL_HOTKEY"), &cfg.Tray.CancelHotkey)

	return nil
}
