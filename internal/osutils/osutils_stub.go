//go:build !windows

// Package osutils holds small OS integration helpers.
package osutils

import "github.com/rs/zerolog"

// IsAdmin is a stub for non-Windows platforms
func IsAdmin() bool {
	return false
}

// IsElevated is a stub for non-Windows platforms
func IsElevated() bool {
	return false
}

// WarnIfNotElevated is a no-op on platforms without input privilege isolation.
func WarnIfNotElevated(log zerolog.Logger) bool {
	return false
}
