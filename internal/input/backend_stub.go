//go:build !windows

package input

import "iter"

// Stub implementation for non-Windows platforms

type stubBackend struct{}

// NewBackend returns a backend whose operations fail with ErrUnsupportedPlatform.
func NewBackend() Backend {
	return stubBackend{}
}

func (stubBackend) Ready() error { return ErrUnsupportedPlatform }

func (stubBackend) Windows() iter.Seq[WindowHandle] {
	return func(func(WindowHandle) bool) {}
}

func (stubBackend) WindowTitle(WindowHandle) (string, bool) { return "", false }
func (stubBackend) Foreground() (WindowHandle, bool)        { return 0, false }
func (stubBackend) Activate(WindowHandle) error             { return ErrUnsupportedPlatform }
func (stubBackend) KeyDown(VirtualKey) error                { return ErrUnsupportedPlatform }
func (stubBackend) KeyUp(VirtualKey) error                  { return ErrUnsupportedPlatform }
func (stubBackend) UnicodeDown(rune) error                  { return ErrUnsupportedPlatform }
func (stubBackend) UnicodeUp(rune) error                    { return ErrUnsupportedPlatform }
func (stubBackend) KeyScan(rune) (VirtualKey, bool, bool)   { return 0, false, false }
