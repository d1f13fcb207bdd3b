// Package autostart registers chattyper's tray mode to start at login.
package autostart

import (
	"errors"
	"os"
)

// ValueName is the name of the entry written under the per-user Run key.
const ValueName = "chattyper"

// ErrUnsupportedPlatform is returned where login items are not supported.
var ErrUnsupportedPlatform = errors.New("autostart is not supported on this platform")

// Enable registers the running executable in tray mode, passing args through.
func Enable(args ...string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return enable(exe, args)
}

// Disable removes the login entry. Removing a missing entry is not an error.
func Disable() error {
	return disable()
}

// IsEnabled reports whether a login entry exists.
func IsEnabled() bool {
	return isEnabled()
}
