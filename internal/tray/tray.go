// Package tray provides system tray functionality using getlantern/systray.
package tray

import (
	"encoding/binary"
	"sync"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Tooltip  string
	Callback func()
	item     *systray.MenuItem
	hidden   bool
	disabled bool
}

// Tray manages the system tray icon and menu. Items may be added before or
// after Run; items added later appear at the bottom of the menu.
type Tray struct {
	mu      sync.Mutex
	title   string
	tooltip string
	items   []*MenuItem
	ready   bool
	readyCh chan struct{}
	quitCh  chan struct{}
	onExit  func()
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// OnExit sets a function that runs when the tray loop ends.
func (t *Tray) OnExit(fn func()) {
	t.onExit = fn
}

// AddMenuItem adds a menu item to the tray
func (t *Tray) AddMenuItem(title, tooltip string, callback func()) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := len(t.items)
	mi := &MenuItem{
		ID:       id,
		Title:    title,
		Tooltip:  tooltip,
		Callback: callback,
	}
	t.items = append(t.items, mi)
	if t.ready {
		t.create(mi)
	}
	return id
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, nil) // nil indicates separator
	if t.ready {
		systray.AddSeparator()
	}
}

// SetItemTitle changes the label of a menu item
func (t *Tray) SetItemTitle(id int, title string) {
	t.update(id, func(mi *MenuItem) {
		mi.Title = title
		if mi.item != nil {
			mi.item.SetTitle(title)
		}
	})
}

// SetItemVisible shows or hides a menu item
func (t *Tray) SetItemVisible(id int, visible bool) {
	t.update(id, func(mi *MenuItem) {
		mi.hidden = !visible
		if mi.item == nil {
			return
		}
		if visible {
			mi.item.Show()
		} else {
			mi.item.Hide()
		}
	})
}

// SetItemEnabled enables or disables a menu item
func (t *Tray) SetItemEnabled(id int, enabled bool) {
	t.update(id, func(mi *MenuItem) {
		mi.disabled = !enabled
		if mi.item == nil {
			return
		}
		if enabled {
			mi.item.Enable()
		} else {
			mi.item.Disable()
		}
	})
}

// SetTooltip updates the tray icon tooltip
func (t *Tray) SetTooltip(tooltip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tooltip = tooltip
	if t.ready {
		systray.SetTooltip(tooltip)
	}
}

func (t *Tray) update(id int, fn func(*MenuItem)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id >= 0 && id < len(t.items) && t.items[id] != nil {
		fn(t.items[id])
	}
}

// Run starts the tray event loop (blocks)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() {
		close(t.quitCh)
		if t.onExit != nil {
			t.onExit()
		}
	})
}

// Ready is closed once the menu exists.
func (t *Tray) Ready() <-chan struct{} {
	return t.readyCh
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	t.mu.Lock()
	defer t.mu.Unlock()

	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(getIcon())

	for _, mi := range t.items {
		if mi == nil {
			systray.AddSeparator()
		} else {
			t.create(mi)
		}
	}
	t.ready = true
	close(t.readyCh)
}

// create builds the systray item for mi. Callers hold t.mu.
func (t *Tray) create(mi *MenuItem) {
	item := systray.AddMenuItem(mi.Title, mi.Tooltip)
	mi.item = item
	if mi.hidden {
		item.Hide()
	}
	if mi.disabled {
		item.Disable()
	}

	// Handle clicks in goroutine
	if mi.Callback != nil {
		go func(cb func()) {
			for {
				select {
				case <-item.ClickedCh:
					cb()
				case <-t.quitCh:
					return
				}
			}
		}(mi.Callback)
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

const (
	iconHeaderSize = 6 + 16 // ICONDIR + one ICONDIRENTRY
	iconDIBSize    = 40
	iconPixelSize  = 16 * 16 * 4
	iconMaskSize   = 16 * 4 // 1 bpp rows padded to 4 bytes
	iconImageSize  = iconDIBSize + iconPixelSize + iconMaskSize
)

// getIcon returns the tray icon (16x16 32-bit ICO)
func getIcon() []byte {
	icon := make([]byte, iconHeaderSize+iconImageSize)
	// ICO Header
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Icon Directory
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0, 0, 0, 0, // image size, set below
		iconHeaderSize, 0x00, 0x00, 0x00, // offset
	})
	binary.LittleEndian.PutUint32(icon[14:18], iconImageSize)
	// DIB Header
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00, // Size
		0x10, 0x00, 0x00, 0x00, // Width
		0x20, 0x00, 0x00, 0x00, // Height (16 * 2 for icon)
		0x01, 0x00, // Planes
		0x20, 0x00, // BPP
		0x00, 0x00, 0x00, 0x00, // Compression
		0x00, 0x04, 0x00, 0x00, // Image Size
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	// Pixels are BGRA, bottom-up: a light frame around a dark key face
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			p := 62 + (y*16+x)*4
			switch {
			case x == 0 || x == 15 || y == 0 || y == 15:
				copy(icon[p:p+4], []byte{0xE0, 0xC0, 0x30, 0xFF})
			case y == 4 && x >= 4 && x <= 11:
				copy(icon[p:p+4], []byte{0xFF, 0xFF, 0xFF, 0xFF})
			default:
				copy(icon[p:p+4], []byte{0x40, 0x30, 0x20, 0xFF})
			}
		}
	}
	// The AND mask after the pixels stays 0 (opaque)
	return icon
}
