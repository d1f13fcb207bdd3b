// Package hotkey parses key combinations and watches for global hotkeys.
package hotkey

import (
	"sync"

	"github.com/rs/zerolog"
)

// Manager matches held keys against registered combos and runs their
// callbacks. A platform hook feeds it key transitions through UpdateState.
type Manager struct {
	mu       sync.Mutex
	bindings []*binding
	held     map[uint16]bool
	log      zerolog.Logger

	stop func()
}

type binding struct {
	combo    Combo
	callback func()
	fired    bool
}

func (b *binding) matches(held map[uint16]bool) bool {
	if !held[b.combo.Key] {
		return false
	}
	for _, m := range b.combo.Modifiers {
		if !held[m] {
			return false
		}
	}
	return true
}

// NewManager creates a hotkey manager with nothing registered.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		held: make(map[uint16]bool),
		log:  log,
	}
}

// Register binds a combo string (e.g. "Ctrl+Alt+X") to callback and returns
// its id. An empty string registers nothing. The callback runs on its own
// goroutine, once per press of the full combination.
func (m *Manager) Register(hotkeyStr string, callback func()) (int, error) {
	if hotkeyStr == "" {
		return 0, nil
	}

	combo, err := Parse(hotkeyStr)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings = append(m.bindings, &binding{combo: combo, callback: callback})
	return len(m.bindings) - 1, nil
}

// Clear removes all registered hotkeys.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings = nil
}

// UpdateState records a key transition. Left and right variants of a
// modifier count as the modifier itself.
func (m *Manager) UpdateState(vk uint16, isDown bool) {
	vk = canonical(vk)

	m.mu.Lock()
	defer m.mu.Unlock()

	if isDown {
		m.held[vk] = true
	} else {
		delete(m.held, vk)
	}

	for _, b := range m.bindings {
		if !b.matches(m.held) {
			// auto-repeat keeps the combo held; re-arm only after release
			b.fired = false
			continue
		}
		if !b.fired {
			b.fired = true
			m.log.Info().Str("hotkey", b.combo.Original).Msg("Hotkey: triggered")
			go b.callback()
		}
	}
}

// Start installs the platform keyboard hook.
func (m *Manager) Start() error {
	return m.startPlatform()
}

// Stop removes the hook if one was installed.
func (m *Manager) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func canonical(vk uint16) uint16 {
	switch vk {
	case 0xA0, 0xA1:
		return VKShift
	case 0xA2, 0xA3:
		return VKCtrl
	case 0xA4, 0xA5:
		return VKAlt
	case VKRWin:
		return VKLWin
	}
	return vk
}
