// Package input locates target windows and injects synthetic keyboard input.
package input

import (
	"iter"
	"time"
)

// WindowHandle is an opaque top-level window identifier. It is only valid for
// one locate-then-act cycle; the window may close at any time.
type WindowHandle uintptr

// Window is a located top-level window.
type Window struct {
	Handle WindowHandle
	Title  string
}

// VirtualKey is a platform virtual-key code.
type VirtualKey uint16

// Virtual keys the typing protocol presses itself.
const (
	VKShift VirtualKey = 0x10
	VKEnter VirtualKey = 0x0D
)

// MaxTitleLength bounds window title reads, in UTF-16 units. Longer titles
// are truncated before matching.
const MaxTitleLength = 256

// Backend is the platform capability surface for window lookup and key injection.
type Backend interface {
	// Ready reports whether the input subsystem can be used at all.
	Ready() error

	// Windows enumerates top-level windows in OS order. The sequence may be
	// ranged over again to re-enumerate.
	Windows() iter.Seq[WindowHandle]

	// WindowTitle reads the title of h. ok is false for unreadable or empty titles.
	WindowTitle(h WindowHandle) (title string, ok bool)

	// Foreground returns the window that currently receives keyboard input.
	Foreground() (WindowHandle, bool)

	// Activate restores, shows and foregrounds h.
	Activate(h WindowHandle) error

	KeyDown(vk VirtualKey) error
	KeyUp(vk VirtualKey) error
	UnicodeDown(r rune) error
	UnicodeUp(r rune) error

	// KeyScan maps r to a virtual key on the active keyboard layout.
	KeyScan(r rune) (vk VirtualKey, shift bool, ok bool)
}

// Sleeper blocks for d. Tests substitute a recorder.
type Sleeper func(d time.Duration)
