package input_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chattyper/internal/config"
	"chattyper/internal/hotkey"
	"chattyper/internal/input"
	"chattyper/internal/input/inputtest"
)

type rig struct {
	rec       *inputtest.Recorder
	locator   *input.Locator
	activator *input.Activator
	emitter   *input.Emitter
	encoder   *input.Encoder
	delays    config.Delays
}

func newRig() *rig {
	rec := inputtest.New()
	d := config.DefaultDelays()
	em := input.NewEmitter(rec, d, rec.Sleep)
	return &rig{
		rec:       rec,
		locator:   input.NewLocator(rec),
		activator: input.NewActivator(rec, d.WindowFocus, rec.Sleep),
		emitter:   em,
		encoder:   input.NewEncoder(rec, em, d, rec.Sleep),
		delays:    d,
	}
}

func TestLocatorFind(t *testing.T) {
	r := newRig()
	r.rec.AddWindow("")
	r.rec.AddWindow("Untitled - Notepad")
	want := r.rec.AddWindow("League of Legends (TM) Client")
	r.rec.AddWindow("League of Legends (TM) Client - replay")

	w, ok := r.locator.Find("league of legends")
	require.True(t, ok)
	assert.Equal(t, want, w.Handle)
	assert.Equal(t, "League of Legends (TM) Client", w.Title)

	_, ok = r.locator.Find("Discord")
	assert.False(t, ok)

	assert.True(t, r.locator.Exists("NOTEPAD"))
	assert.False(t, r.locator.Exists("Discord"))
	assert.Len(t, r.locator.List("league"), 2)
	assert.Empty(t, r.rec.KeyEvents())
}

func TestLocatorSkipsClosedWindows(t *testing.T) {
	r := newRig()
	h := r.rec.AddWindow("Target")
	r.rec.CloseWindow(h)
	assert.False(t, r.locator.Exists("Target"))
}

func TestLocatorTruncatesLongTitles(t *testing.T) {
	r := newRig()
	r.rec.AddWindow(strings.Repeat("x", 300) + "needle")
	assert.False(t, r.locator.Exists("needle"))
	assert.True(t, r.locator.Exists("xxx"))
}

func TestLocatorIsFocused(t *testing.T) {
	r := newRig()
	a := r.rec.AddWindow("Target Window")
	b := r.rec.AddWindow("Other")

	assert.False(t, r.locator.IsFocused("target"))
	r.rec.SetForeground(b)
	assert.False(t, r.locator.IsFocused("target"))
	r.rec.SetForeground(a)
	assert.True(t, r.locator.IsFocused("target"))
}

func TestActivatorIsIdempotent(t *testing.T) {
	r := newRig()
	h := r.rec.AddWindow("Target")

	assert.True(t, r.activator.Activate(h))
	assert.True(t, r.activator.Activate(h))
	assert.Equal(t, []time.Duration{r.delays.WindowFocus, r.delays.WindowFocus}, r.rec.Sleeps())
}

func TestActivatorInvalidHandle(t *testing.T) {
	r := newRig()
	h := r.rec.AddWindow("Target")
	r.rec.CloseWindow(h)

	assert.False(t, r.activator.Activate(h))
	assert.Empty(t, r.rec.Sleeps())
}

func TestEmitterPressKey(t *testing.T) {
	r := newRig()
	require.NoError(t, r.emitter.PressKey(input.VKEnter))
	assert.Equal(t, []inputtest.Event{
		inputtest.Down(input.VKEnter),
		inputtest.Slept(r.delays.KeyPress),
		inputtest.Up(input.VKEnter),
	}, r.rec.Timeline())
}

func TestEmitterPressChordReleasesInReverse(t *testing.T) {
	r := newRig()
	const ctrl, alt input.VirtualKey = 0x11, 0x12
	require.NoError(t, r.emitter.PressChord('X', ctrl, alt))

	s := r.delays.ShiftKey
	assert.Equal(t, []inputtest.Event{
		inputtest.Down(ctrl), inputtest.Slept(s),
		inputtest.Down(alt), inputtest.Slept(s),
		inputtest.Down('X'), inputtest.Slept(r.delays.KeyPress), inputtest.Up('X'),
		inputtest.Slept(s), inputtest.Up(alt),
		inputtest.Slept(s), inputtest.Up(ctrl),
	}, r.rec.Timeline())
}

func TestEmitterPressChordReleasesHeldModifiersOnFailure(t *testing.T) {
	r := newRig()
	r.rec.FailAfter = 1 // Shift down succeeds, everything after fails

	err := r.emitter.PressChord(input.VKEnter, input.VKShift)
	require.ErrorIs(t, err, inputtest.ErrInjected)
	assert.Equal(t, []inputtest.Event{inputtest.Down(input.VKShift)}, r.rec.KeyEvents())
}

func TestEmitterPressChordReleasesModifiersAfterKeyFailure(t *testing.T) {
	r := newRig()
	const ctrl input.VirtualKey = 0x11
	r.rec.FailKey = input.VKEnter

	err := r.emitter.PressChord(input.VKEnter, ctrl, input.VKShift)
	require.ErrorIs(t, err, inputtest.ErrInjected)

	s := r.delays.ShiftKey
	assert.Equal(t, []inputtest.Event{
		inputtest.Down(ctrl), inputtest.Slept(s),
		inputtest.Down(input.VKShift), inputtest.Slept(s),
		inputtest.Slept(s), inputtest.Up(input.VKShift),
		inputtest.Slept(s), inputtest.Up(ctrl),
	}, r.rec.Timeline())
}

func TestEncodeIsDeterministic(t *testing.T) {
	r := newRig()
	samples := []rune{'a', 'Z', '7', ' ', '?', 'é', 'ß', '中', '😀', 0x10FFFF, 0}
	for _, c := range samples {
		first := r.encoder.Encode(c)
		assert.Equal(t, first, r.encoder.Encode(c), "rune %U", c)
		assert.Equal(t, c, first.Rune)
	}

	assert.Equal(t, input.Encoding{Kind: input.DirectKey, VK: 'A', Rune: 'a'}, r.encoder.Encode('a'))
	assert.Equal(t, input.Encoding{Kind: input.DirectKey, VK: 'H', Shift: true, Rune: 'H'}, r.encoder.Encode('H'))
	assert.Equal(t, input.UnicodeFallback, r.encoder.Encode('é').Kind)
	assert.Equal(t, input.UnicodeFallback, r.encoder.Encode('😀').Kind)
}

func TestEncodeIsTotal(t *testing.T) {
	r := newRig()
	for c := rune(0); c <= 0x10FFFF; c += 0x3FF {
		enc := r.encoder.Encode(c)
		assert.Contains(t, []input.EncodingKind{input.DirectKey, input.UnicodeFallback}, enc.Kind)
	}
}

func TestSendCharacterTrace(t *testing.T) {
	d := config.DefaultDelays()

	tests := []struct {
		name string
		char rune
		want []inputtest.Event
	}{
		{
			name: "plain key",
			char: 'i',
			want: []inputtest.Event{
				inputtest.Down('I'), inputtest.Slept(d.KeyPress), inputtest.Up('I'),
				inputtest.Slept(d.CharType),
			},
		},
		{
			name: "shifted key",
			char: 'H',
			want: []inputtest.Event{
				inputtest.Down(input.VKShift), inputtest.Slept(d.ShiftKey),
				inputtest.Down('H'), inputtest.Slept(d.KeyPress), inputtest.Up('H'),
				inputtest.Slept(d.ShiftKey), inputtest.Up(input.VKShift),
				inputtest.Slept(d.CharType),
			},
		},
		{
			name: "unicode fallback",
			char: 'ñ',
			want: []inputtest.Event{
				{Kind: inputtest.UnicodeDown, Rune: 'ñ'}, inputtest.Slept(d.UnicodeKey),
				{Kind: inputtest.UnicodeUp, Rune: 'ñ'},
				inputtest.Slept(d.CharType),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig()
			require.NoError(t, r.encoder.SendCharacter(tt.char))
			assert.Equal(t, tt.want, r.rec.Timeline())
		})
	}
}

func TestSendTextEmpty(t *testing.T) {
	r := newRig()
	require.NoError(t, r.encoder.SendText(""))
	assert.Empty(t, r.rec.Timeline())
}

func TestSendTextBalancedEvents(t *testing.T) {
	r := newRig()
	require.NoError(t, r.encoder.SendText("Hello, Wörld! 👋"))

	held := map[string]bool{}
	for _, e := range r.rec.KeyEvents() {
		key := e.String()[strings.Index(e.String(), ":")+1:]
		switch e.Kind {
		case inputtest.KeyDown, inputtest.UnicodeDown:
			assert.False(t, held[key], "duplicate down for %s", key)
			held[key] = true
		default:
			assert.True(t, held[key], "up without down for %s", key)
			delete(held, key)
		}
	}
	assert.Empty(t, held)
}

func TestSendTextStopsOnFailure(t *testing.T) {
	r := newRig()
	r.rec.FailAfter = 4 // "a" is two events, "b" is two more

	err := r.encoder.SendText("abc")
	require.ErrorIs(t, err, inputtest.ErrInjected)
	assert.Len(t, r.rec.KeyEvents(), 4)
}

func TestIsExtendedKey(t *testing.T) {
	tests := []struct {
		name string
		vk   input.VirtualKey
		want bool
	}{
		{"home", 0x24, true},
		{"end", 0x23, true},
		{"left arrow", 0x25, true},
		{"delete", 0x2E, true},
		{"left win", 0x5B, true},
		{"right alt", 0xA5, true},
		{"enter", input.VKEnter, false},
		{"shift", input.VKShift, false},
		{"letter", 'A', false},
		{"numpad 7", 0x67, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, input.IsExtendedKey(tt.vk))
		})
	}
}

func TestHotkeyNavigationKeysAreExtended(t *testing.T) {
	for _, name := range []string{"Home", "End", "PageUp", "PageDown", "Insert", "Delete", "Left", "Right", "Up", "Down"} {
		c, err := hotkey.Parse("Ctrl+" + name)
		require.NoError(t, err, name)
		assert.True(t, input.IsExtendedKey(input.VirtualKey(c.Key)), name)
	}
	c, err := hotkey.Parse("Cmd+Enter")
	require.NoError(t, err)
	assert.True(t, input.IsExtendedKey(input.VirtualKey(c.Modifiers[0])))
	assert.False(t, input.IsExtendedKey(input.VirtualKey(c.Key)))
}
