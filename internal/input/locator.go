package input

import (
	"iter"
	"strings"
)

// Locator finds top-level windows by case-insensitive title substring.
type Locator struct {
	backend Backend
}

// NewLocator creates a locator over backend.
func NewLocator(backend Backend) *Locator {
	return &Locator{backend: backend}
}

// matches returns the windows whose title contains title, in enumeration order.
func (l *Locator) matches(title string) iter.Seq[Window] {
	needle := strings.ToLower(title)
	return func(yield func(Window) bool) {
		for h := range l.backend.Windows() {
			t, ok := l.backend.WindowTitle(h)
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(t), needle) {
				if !yield(Window{Handle: h, Title: t}) {
					return
				}
			}
		}
	}
}

// Find returns the first window whose title contains title.
func (l *Locator) Find(title string) (Window, bool) {
	for w := range l.matches(title) {
		return w, true
	}
	return Window{}, false
}

// Exists reports whether any window title contains title.
func (l *Locator) Exists(title string) bool {
	_, ok := l.Find(title)
	return ok
}

// List returns every matching window.
func (l *Locator) List(title string) []Window {
	var out []Window
	for w := range l.matches(title) {
		out = append(out, w)
	}
	return out
}

// IsFocused reports whether the foreground window title contains title.
func (l *Locator) IsFocused(title string) bool {
	h, ok := l.backend.Foreground()
	if !ok {
		return false
	}
	t, ok := l.backend.WindowTitle(h)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(t), strings.ToLower(title))
}
