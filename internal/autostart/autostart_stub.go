//go:build !windows

package autostart

func enable(string, []string) error { return ErrUnsupportedPlatform }

func disable() error { return ErrUnsupportedPlatform }

func isEnabled() bool { return false }
