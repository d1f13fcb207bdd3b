package input

import (
	"fmt"
	"unicode/utf8"

	"chattyper/internal/config"
)

// EncodingKind selects how a character is typed.
type EncodingKind int

const (
	// DirectKey types the character as a virtual key, optionally with Shift.
	DirectKey EncodingKind = iota
	// UnicodeFallback types the raw code point, bypassing the keyboard layout.
	UnicodeFallback
)

func (k EncodingKind) String() string {
	switch k {
	case DirectKey:
		return "direct"
	case UnicodeFallback:
		return "unicode"
	default:
		return fmt.Sprintf("EncodingKind(%d)", int(k))
	}
}

// Encoding is the per-character typing decision.
type Encoding struct {
	Kind  EncodingKind
	VK    VirtualKey // DirectKey only
	Shift bool       // DirectKey only
	Rune  rune
}

// Encoder maps characters to key events and types text.
type Encoder struct {
	backend Backend
	emitter *Emitter
	delay   config.Delays
	sleep   Sleeper
}

// NewEncoder creates an encoder typing through emitter.
func NewEncoder(backend Backend, emitter *Emitter, delays config.Delays, sleep Sleeper) *Encoder {
	return &Encoder{backend: backend, emitter: emitter, delay: delays, sleep: sleep}
}

// Encode resolves r on the active keyboard layout. Runes without a plain or
// shifted key, including everything outside the BMP, use UnicodeFallback.
func (e *Encoder) Encode(r rune) Encoding {
	if r <= 0xFFFF && utf8.ValidRune(r) {
		if vk, shift, ok := e.backend.KeyScan(r); ok {
			return Encoding{Kind: DirectKey, VK: vk, Shift: shift, Rune: r}
		}
	}
	return Encoding{Kind: UnicodeFallback, Rune: r}
}

// SendCharacter types one character followed by the CharType pacing delay.
func (e *Encoder) SendCharacter(r rune) error {
	var err error
	switch enc := e.Encode(r); enc.Kind {
	case DirectKey:
		if enc.Shift {
			err = e.emitter.PressChord(enc.VK, VKShift)
		} else {
			err = e.emitter.PressKey(enc.VK)
		}
	default:
		err = e.emitter.PressUnicode(enc.Rune)
	}
	if err != nil {
		return fmt.Errorf("type %q: %w", r, err)
	}
	e.sleep(e.delay.CharType)
	return nil
}

// SendText types s one rune at a time. It stops at the first failed event.
func (e *Encoder) SendText(s string) error {
	for _, r := range s {
		if err := e.SendCharacter(r); err != nil {
			return err
		}
	}
	return nil
}
