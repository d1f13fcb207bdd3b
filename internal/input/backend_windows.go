//go:build windows

package input

import (
	"fmt"
	"iter"
	"sync"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procGetWindowText       = user32.NewProc("GetWindowTextW")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procIsWindow            = user32.NewProc("IsWindow")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procSendInput           = user32.NewProc("SendInput")
	procMapVirtualKey       = user32.NewProc("MapVirtualKeyW")
	procVkKeyScan           = user32.NewProc("VkKeyScanW")
)

const (
	SW_SHOW    = 5
	SW_RESTORE = 9

	INPUT_KEYBOARD = 1

	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002
	KEYEVENTF_UNICODE     = 0x0004
	KEYEVENTF_SCANCODE    = 0x0008

	MAPVK_VK_TO_VSC    = 0
	MAPVK_VK_TO_VSC_EX = 4
)

type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type INPUT struct {
	Type uint32
	Ki   KEYBDINPUT
	_    [8]byte // Padding to the size of the MOUSEINPUT union member
}

// EnumWindows runs its callback on the calling thread, so one process-wide
// callback dispatches to the visitor registered under the lParam token.
var (
	enumCallback     uintptr
	enumCallbackOnce sync.Once

	enumMu       sync.Mutex
	enumNextID   uintptr
	enumVisitors = map[uintptr]func(WindowHandle) bool{}
)

func enumWindowsProc(hwnd uintptr, lParam uintptr) uintptr {
	enumMu.Lock()
	visit := enumVisitors[lParam]
	enumMu.Unlock()

	if visit == nil || !visit(WindowHandle(hwnd)) {
		return 0 // Stop enumeration
	}
	return 1
}

type windowsBackend struct{}

// NewBackend returns the user32 backend.
func NewBackend() Backend {
	return &windowsBackend{}
}

func (b *windowsBackend) Ready() error {
	for _, p := range []*windows.LazyProc{procEnumWindows, procSendInput, procVkKeyScan, procMapVirtualKey, procSetForegroundWindow} {
		if err := p.Find(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedPlatform, err)
		}
	}
	return nil
}

func (b *windowsBackend) Windows() iter.Seq[WindowHandle] {
	return func(yield func(WindowHandle) bool) {
		enumCallbackOnce.Do(func() {
			enumCallback = syscall.NewCallback(enumWindowsProc)
		})

		enumMu.Lock()
		enumNextID++
		token := enumNextID
		enumVisitors[token] = yield
		enumMu.Unlock()

		defer func() {
			enumMu.Lock()
			delete(enumVisitors, token)
			enumMu.Unlock()
		}()

		// EnumWindows reports failure when the callback stops early; the
		// visitor already has everything it needs in that case.
		procEnumWindows.Call(enumCallback, token)
	}
}

func (b *windowsBackend) WindowTitle(h WindowHandle) (string, bool) {
	var buf [MaxTitleLength]uint16
	n, _, _ := procGetWindowText.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "", false
	}
	return windows.UTF16ToString(buf[:n]), true
}

func (b *windowsBackend) Foreground() (WindowHandle, bool) {
	h, _, _ := procGetForegroundWindow.Call()
	return WindowHandle(h), h != 0
}

func (b *windowsBackend) Activate(h WindowHandle) error {
	if ok, _, _ := procIsWindow.Call(uintptr(h)); ok == 0 {
		return ErrInvalidWindow
	}
	procShowWindow.Call(uintptr(h), SW_RESTORE)
	procShowWindow.Call(uintptr(h), SW_SHOW)
	// SetForegroundWindow may be refused by the foreground lock; the window
	// is still restored and the caller settles before typing.
	procSetForegroundWindow.Call(uintptr(h))
	return nil
}

func (b *windowsBackend) KeyDown(vk VirtualKey) error {
	return sendInputs(scanCodeInput(vk, 0))
}

func (b *windowsBackend) KeyUp(vk VirtualKey) error {
	return sendInputs(scanCodeInput(vk, KEYEVENTF_KEYUP))
}

func (b *windowsBackend) UnicodeDown(r rune) error {
	return sendInputs(unicodeInputs(r, 0)...)
}

func (b *windowsBackend) UnicodeUp(r rune) error {
	return sendInputs(unicodeInputs(r, KEYEVENTF_KEYUP)...)
}

func (b *windowsBackend) KeyScan(r rune) (VirtualKey, bool, bool) {
	if r > 0xFFFF {
		return 0, false, false
	}
	ret, _, _ := procVkKeyScan.Call(uintptr(uint16(r)))
	res := int16(ret)
	if res == -1 {
		return 0, false, false
	}
	state := (res >> 8) & 0xFF
	// Ctrl or Alt (AltGr) layers cannot be reproduced with a Shift bracket.
	if state&0x06 != 0 {
		return 0, false, false
	}
	return VirtualKey(res & 0xFF), state&0x01 != 0, true
}

func scanCodeInput(vk VirtualKey, flags uint32) INPUT {
	scan, _, _ := procMapVirtualKey.Call(uintptr(vk), MAPVK_VK_TO_VSC_EX)
	if scan == 0 {
		scan, _, _ = procMapVirtualKey.Call(uintptr(vk), MAPVK_VK_TO_VSC)
	}
	if IsExtendedKey(vk) || scan&0xFF00 == 0xE000 {
		flags |= KEYEVENTF_EXTENDEDKEY
	}
	var in INPUT
	in.Type = INPUT_KEYBOARD
	in.Ki.WVk = uint16(vk)
	in.Ki.WScan = uint16(scan & 0xFF)
	in.Ki.DwFlags = KEYEVENTF_SCANCODE | flags
	return in
}

// unicodeInputs encodes r as one event per UTF-16 unit so that runes above
// U+FFFF arrive as a surrogate pair in a single batch.
func unicodeInputs(r rune, flags uint32) []INPUT {
	units := utf16.Encode([]rune{r})
	inputs := make([]INPUT, len(units))
	for i, u := range units {
		inputs[i].Type = INPUT_KEYBOARD
		inputs[i].Ki.WScan = u
		inputs[i].Ki.DwFlags = KEYEVENTF_UNICODE | flags
	}
	return inputs
}

func sendInputs(inputs ...INPUT) error {
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput inserted %d of %d events: %v", n, len(inputs), err)
	}
	return nil
}
