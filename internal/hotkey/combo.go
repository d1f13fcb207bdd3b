package hotkey

import (
	"fmt"
	"strings"
)

// Windows virtual-key codes for the keys a combo can name.
const (
	VKBackspace = 0x08
	VKTab       = 0x09
	VKEnter     = 0x0D
	VKShift     = 0x10
	VKCtrl      = 0x11
	VKAlt       = 0x12
	VKPause     = 0x13
	VKCapsLock  = 0x14
	VKEscape    = 0x1B
	VKSpace     = 0x20
	VKPageUp    = 0x21
	VKPageDown  = 0x22
	VKEnd       = 0x23
	VKHome      = 0x24
	VKLeft      = 0x25
	VKUp        = 0x26
	VKRight     = 0x27
	VKDown      = 0x28
	VKPrint     = 0x2C
	VKInsert    = 0x2D
	VKDelete    = 0x2E
	VKLWin      = 0x5B
	VKRWin      = 0x5C
	VKScroll    = 0x91
)

// Combo is a parsed key combination such as "Shift+Enter".
// Modifiers are pressed in order and released in reverse order around Key.
type Combo struct {
	Modifiers []uint16
	Key       uint16
	Original  string
}

// HasModifiers reports whether the combo holds any modifier around its key.
func (c Combo) HasModifiers() bool {
	return len(c.Modifiers) > 0
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		parts = append(parts, KeyName(uint32(m)))
	}
	parts = append(parts, KeyName(uint32(c.Key)))
	return strings.Join(parts, "+")
}

// Parse parses a combo string (e.g. "Shift+Enter", "Ctrl+Alt+X", "Enter").
// The last part is the key; every earlier part must be a modifier.
func Parse(s string) (Combo, error) {
	if strings.TrimSpace(s) == "" {
		return Combo{}, fmt.Errorf("empty hotkey")
	}
	parts, err := splitParts(s)
	if err != nil {
		return Combo{}, err
	}

	combo := Combo{Original: s}
	for i, p := range parts {
		vk, ok := nameToVK[p]
		if !ok {
			return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", s, p)
		}
		if i < len(parts)-1 {
			if !isModifier(vk) {
				return Combo{}, fmt.Errorf("hotkey %q: %q is not a modifier", s, p)
			}
			combo.Modifiers = append(combo.Modifiers, uint16(vk))
			continue
		}
		if isModifier(vk) {
			return Combo{}, fmt.Errorf("hotkey %q: ends with modifier %q, a key must follow", s, p)
		}
		combo.Key = uint16(vk)
	}
	return combo, nil
}

// MustParse is like Parse but panics on error. Used for built-in defaults.
func MustParse(s string) Combo {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func splitParts(s string) ([]string, error) {
	var parts []string
	for _, p := range strings.Split(strings.ToUpper(s), "+") {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("hotkey %q: empty key name around '+'", s)
		}
		if alias, ok := nameAliases[p]; ok {
			p = alias
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func isModifier(vk uint32) bool {
	switch vk {
	case VKShift, VKCtrl, VKAlt, VKLWin:
		return true
	}
	return false
}

var nameAliases = map[string]string{
	"CONTROL": "CTRL",
	"RETURN":  "ENTER",
	"ESCAPE":  "ESC",
	"WIN":     "CMD",
	"OPTION":  "ALT",
}

var nameToVK = func() map[string]uint32 {
	m := make(map[string]uint32)
	for vk := uint32(0x01); vk <= 0xFE; vk++ {
		if name := KeyName(vk); name != "" {
			if _, seen := m[name]; !seen {
				m[name] = vk
			}
		}
	}
	return m
}()

// KeyName returns the canonical upper-case name of a virtual key, or "" when
// the key has no name in combo strings.
func KeyName(vk uint32) string {
	switch vk {
	case VKCtrl, 0xA2, 0xA3:
		return "CTRL"
	case VKAlt, 0xA4, 0xA5:
		return "ALT"
	case VKShift, 0xA0, 0xA1:
		return "SHIFT"
	case VKLWin, VKRWin:
		return "CMD"
	case VKSpace:
		return "SPACE"
	case VKEnter:
		return "ENTER"
	case VKEscape:
		return "ESC"
	case VKBackspace:
		return "BACKSPACE"
	case VKTab:
		return "TAB"
	case VKCapsLock:
		return "CAPSLOCK"
	case VKPageUp:
		return "PAGEUP"
	case VKPageDown:
		return "PAGEDOWN"
	case VKEnd:
		return "END"
	case VKHome:
		return "HOME"
	case VKLeft:
		return "LEFT"
	case VKUp:
		return "UP"
	case VKRight:
		return "RIGHT"
	case VKDown:
		return "DOWN"
	case VKPrint:
		return "PRINTSCREEN"
	case VKInsert:
		return "INSERT"
	case VKDelete:
		return "DELETE"
	case VKPause:
		return "PAUSE"
	case VKScroll:
		return "SCROLLLOCK"
	}

	// Letters A-Z
	if vk >= 0x41 && vk <= 0x5A {
		return string(rune(vk))
	}

	// Numbers 0-9
	if vk >= 0x30 && vk <= 0x39 {
		return string(rune(vk))
	}

	// F1-F12
	if vk >= 0x70 && vk <= 0x7B {
		return fmt.Sprintf("F%d", vk-0x6F)
	}

	return ""
}
