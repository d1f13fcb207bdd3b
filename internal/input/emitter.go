package input

import (
	"errors"

	"chattyper/internal/config"
)

// Emitter posts primitive key events. Events go to whichever window holds
// focus, so callers activate the target first.
type Emitter struct {
	backend Backend
	delays  config.Delays
	sleep   Sleeper
}

// NewEmitter creates an emitter using the KeyPress, ShiftKey and UnicodeKey delays.
func NewEmitter(backend Backend, delays config.Delays, sleep Sleeper) *Emitter {
	return &Emitter{backend: backend, delays: delays, sleep: sleep}
}

func (e *Emitter) KeyDown(vk VirtualKey) error { return e.backend.KeyDown(vk) }
func (e *Emitter) KeyUp(vk VirtualKey) error   { return e.backend.KeyUp(vk) }
func (e *Emitter) UnicodeDown(r rune) error    { return e.backend.UnicodeDown(r) }
func (e *Emitter) UnicodeUp(r rune) error      { return e.backend.UnicodeUp(r) }

// PressKey sends down, holds for the KeyPress dwell, then sends up.
// Targets that poll key state drop zero-length presses.
func (e *Emitter) PressKey(vk VirtualKey) error {
	if err := e.backend.KeyDown(vk); err != nil {
		return err
	}
	e.sleep(e.delays.KeyPress)
	return e.backend.KeyUp(vk)
}

// PressUnicode sends a Unicode down/up pair separated by the UnicodeKey delay.
func (e *Emitter) PressUnicode(r rune) error {
	if err := e.backend.UnicodeDown(r); err != nil {
		return err
	}
	e.sleep(e.delays.UnicodeKey)
	return e.backend.UnicodeUp(r)
}

// PressChord holds modifiers in order, presses key, then releases the
// modifiers in reverse order. Each modifier transition is followed (down) or
// preceded (up) by the ShiftKey delay. Held modifiers are released even when
// a later event fails.
func (e *Emitter) PressChord(key VirtualKey, modifiers ...VirtualKey) error {
	held := make([]VirtualKey, 0, len(modifiers))
	var err error
	for _, m := range modifiers {
		if err = e.backend.KeyDown(m); err != nil {
			break
		}
		held = append(held, m)
		e.sleep(e.delays.ShiftKey)
	}
	if err == nil {
		err = e.PressKey(key)
	}
	for i := len(held) - 1; i >= 0; i-- {
		e.sleep(e.delays.ShiftKey)
		if upErr := e.backend.KeyUp(held[i]); upErr != nil {
			err = errors.Join(err, upErr)
		}
	}
	return err
}
