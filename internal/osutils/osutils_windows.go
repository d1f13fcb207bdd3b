//go:build windows

// Package osutils holds small OS integration helpers.
package osutils

import (
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// IsAdmin checks if the current process has administrative privileges
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err = windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}

	return member
}

// IsElevated reports whether the process token is elevated. Under UAC an
// administrator's unelevated token is a member of Administrators but is not
// elevated.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// WarnIfNotElevated logs a warning when the process is not elevated, since
// Windows drops synthetic input aimed at windows of elevated processes (UIPI).
// It reports whether the process is elevated.
func WarnIfNotElevated(log zerolog.Logger) bool {
	if IsElevated() {
		log.Debug().Msg("OS: running elevated")
		return true
	}
	if IsAdmin() {
		log.Warn().Msg("OS: administrator account but not elevated; use 'Run as administrator' if the target runs elevated")
		return false
	}
	log.Warn().Msg("OS: not running as administrator; targets running elevated will ignore typed input")
	return false
}
