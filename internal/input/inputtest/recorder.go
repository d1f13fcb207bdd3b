// Package inputtest provides a recording input.Backend for tests.
package inputtest

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"
	"unicode"

	"chattyper/internal/input"
)

// ErrInjected is returned by key events once FailAfter events were recorded
// and by events for FailKey.
var ErrInjected = errors.New("injected input failure")

// EventKind identifies a recorded call.
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	UnicodeDown
	UnicodeUp
	Activate
	Sleep
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	case UnicodeDown:
		return "udown"
	case UnicodeUp:
		return "uup"
	case Activate:
		return "activate"
	case Sleep:
		return "sleep"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one recorded backend call or sleep.
type Event struct {
	Kind     EventKind
	VK       input.VirtualKey
	Rune     rune
	Handle   input.WindowHandle
	Duration time.Duration
}

func (e Event) String() string {
	switch e.Kind {
	case KeyDown, KeyUp:
		return fmt.Sprintf("%s:%#02x", e.Kind, uint16(e.VK))
	case UnicodeDown, UnicodeUp:
		return fmt.Sprintf("%s:%U", e.Kind, e.Rune)
	case Activate:
		return fmt.Sprintf("activate:%d", e.Handle)
	default:
		return fmt.Sprintf("sleep:%s", e.Duration)
	}
}

// Down and Up build expected key events.
func Down(vk input.VirtualKey) Event { return Event{Kind: KeyDown, VK: vk} }
func Up(vk input.VirtualKey) Event   { return Event{Kind: KeyUp, VK: vk} }

// Slept builds an expected sleep.
func Slept(d time.Duration) Event { return Event{Kind: Sleep, Duration: d} }

type fakeWindow struct {
	handle input.WindowHandle
	title  string
	closed bool
}

// Recorder is an in-memory Backend with a US keyboard layout. It records
// every key event, activation and sleep in call order.
type Recorder struct {
	mu         sync.Mutex
	windows    []*fakeWindow
	foreground input.WindowHandle
	timeline   []Event
	keyEvents  int
	enumCalls  int

	// ReadyErr is returned from Ready.
	ReadyErr error

	// FailAfter makes key events fail once this many succeeded. Zero disables.
	FailAfter int

	// FailKey makes every key event for this virtual key fail. Zero disables.
	FailKey input.VirtualKey

	// OnEnumerate runs at the start of each window enumeration with its
	// 1-based call count.
	OnEnumerate func(call int)
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{}
}

// AddWindow registers a top-level window and returns its handle.
func (r *Recorder) AddWindow(title string) input.WindowHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := input.WindowHandle(len(r.windows) + 1)
	r.windows = append(r.windows, &fakeWindow{handle: h, title: title})
	return h
}

// CloseWindow removes h from enumeration and invalidates it.
func (r *Recorder) CloseWindow(h input.WindowHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.windows {
		if w.handle == h {
			w.closed = true
		}
	}
	if r.foreground == h {
		r.foreground = 0
	}
}

// SetForeground marks h as the focused window.
func (r *Recorder) SetForeground(h input.WindowHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.foreground = h
}

// Sleep records d without blocking. It satisfies input.Sleeper.
func (r *Recorder) Sleep(d time.Duration) {
	r.record(Event{Kind: Sleep, Duration: d})
}

// Timeline returns every recorded event including sleeps.
func (r *Recorder) Timeline() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.timeline...)
}

// KeyEvents returns the recorded key and Unicode events only.
func (r *Recorder) KeyEvents() []Event {
	var out []Event
	for _, e := range r.Timeline() {
		switch e.Kind {
		case KeyDown, KeyUp, UnicodeDown, UnicodeUp:
			out = append(out, e)
		}
	}
	return out
}

// Sleeps returns the recorded sleep durations.
func (r *Recorder) Sleeps() []time.Duration {
	var out []time.Duration
	for _, e := range r.Timeline() {
		if e.Kind == Sleep {
			out = append(out, e.Duration)
		}
	}
	return out
}

// Reset clears the timeline but keeps windows.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline = nil
	r.keyEvents = 0
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline = append(r.timeline, e)
}

func (r *Recorder) key(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAfter > 0 && r.keyEvents >= r.FailAfter {
		return ErrInjected
	}
	if r.FailKey != 0 && (e.Kind == KeyDown || e.Kind == KeyUp) && e.VK == r.FailKey {
		return ErrInjected
	}
	r.keyEvents++
	r.timeline = append(r.timeline, e)
	return nil
}

func (r *Recorder) Ready() error { return r.ReadyErr }

func (r *Recorder) Windows() iter.Seq[input.WindowHandle] {
	return func(yield func(input.WindowHandle) bool) {
		r.mu.Lock()
		r.enumCalls++
		call := r.enumCalls
		hook := r.OnEnumerate
		r.mu.Unlock()
		if hook != nil {
			hook(call)
		}

		r.mu.Lock()
		var open []input.WindowHandle
		for _, w := range r.windows {
			if !w.closed {
				open = append(open, w.handle)
			}
		}
		r.mu.Unlock()

		for _, h := range open {
			if !yield(h) {
				return
			}
		}
	}
}

func (r *Recorder) WindowTitle(h input.WindowHandle) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.windows {
		if w.handle == h && !w.closed {
			t := []rune(w.title)
			if len(t) > input.MaxTitleLength-1 {
				t = t[:input.MaxTitleLength-1]
			}
			return string(t), len(t) > 0
		}
	}
	return "", false
}

func (r *Recorder) Foreground() (input.WindowHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.foreground, r.foreground != 0
}

func (r *Recorder) Activate(h input.WindowHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.windows {
		if w.handle == h && !w.closed {
			r.foreground = h
			r.timeline = append(r.timeline, Event{Kind: Activate, Handle: h})
			return nil
		}
	}
	return input.ErrInvalidWindow
}

func (r *Recorder) KeyDown(vk input.VirtualKey) error {
	return r.key(Event{Kind: KeyDown, VK: vk})
}

func (r *Recorder) KeyUp(vk input.VirtualKey) error {
	return r.key(Event{Kind: KeyUp, VK: vk})
}

func (r *Recorder) UnicodeDown(c rune) error {
	return r.key(Event{Kind: UnicodeDown, Rune: c})
}

func (r *Recorder) UnicodeUp(c rune) error {
	return r.key(Event{Kind: UnicodeUp, Rune: c})
}

// usPunct maps the US layout punctuation row to (vk, shift).
var usPunct = map[rune]struct {
	vk    input.VirtualKey
	shift bool
}{
	' ': {0x20, false}, '!': {'1', true}, '@': {'2', true}, '#': {'3', true},
	'$': {'4', true}, '%': {'5', true}, '^': {'6', true}, '&': {'7', true},
	'*': {'8', true}, '(': {'9', true}, ')': {'0', true},
	'-': {0xBD, false}, '_': {0xBD, true}, '=': {0xBB, false}, '+': {0xBB, true},
	',': {0xBC, false}, '<': {0xBC, true}, '.': {0xBE, false}, '>': {0xBE, true},
	'/': {0xBF, false}, '?': {0xBF, true}, ';': {0xBA, false}, ':': {0xBA, true},
	'\'': {0xDE, false}, '"': {0xDE, true},
}

// KeyScan emulates VkKeyScanW on a US layout.
func (r *Recorder) KeyScan(c rune) (input.VirtualKey, bool, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return input.VirtualKey(unicode.ToUpper(c)), false, true
	case c >= 'A' && c <= 'Z':
		return input.VirtualKey(c), true, true
	case c >= '0' && c <= '9':
		return input.VirtualKey(c), false, true
	}
	if k, ok := usPunct[c]; ok {
		return k.vk, k.shift, true
	}
	return 0, false, false
}

var _ input.Backend = (*Recorder)(nil)
