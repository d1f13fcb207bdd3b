//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	WH_KEYBOARD_LL = 13
	WM_QUIT        = 0x0012
	WM_KEYDOWN     = 0x0100
	WM_KEYUP       = 0x0101
	WM_SYSKEYDOWN  = 0x0104
	WM_SYSKEYUP    = 0x0105

	// LLKHF_INJECTED marks events produced by SendInput, including our own typing.
	LLKHF_INJECTED = 0x00000010
)

type KBDLLHOOKSTRUCT struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

var (
	hookMu          sync.Mutex
	instanceManager *Manager
	keyboardHook    uintptr

	keyboardCallback     uintptr
	keyboardCallbackOnce sync.Once
)

func (m *Manager) startPlatform() error {
	hookMu.Lock()
	if instanceManager != nil {
		hookMu.Unlock()
		return fmt.Errorf("hotkey engine already running")
	}
	instanceManager = m
	hookMu.Unlock()

	keyboardCallbackOnce.Do(func() {
		keyboardCallback = syscall.NewCallback(keyboardHookPtr)
	})

	started := make(chan error, 1)

	// Hooks must be registered in the same thread that runs the message loop
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		hMod, _, _ := procGetModuleHandle.Call(0)

		hook, _, err := procSetWindowsHookEx.Call(
			WH_KEYBOARD_LL,
			keyboardCallback,
			hMod,
			0,
		)
		if hook == 0 {
			hookMu.Lock()
			instanceManager = nil
			hookMu.Unlock()
			started <- fmt.Errorf("SetWindowsHookEx failed: %v", err)
			return
		}

		hookMu.Lock()
		keyboardHook = hook
		hookMu.Unlock()

		threadID := windows.GetCurrentThreadId()
		m.mu.Lock()
		m.stop = func() {
			procPostThreadMessage.Call(uintptr(threadID), WM_QUIT, 0, 0)
		}
		m.mu.Unlock()

		m.log.Info().Msg("Hotkey Engine: Windows keyboard hook started.")
		started <- nil

		var msg struct {
			Hwnd    syscall.Handle
			Message uint32
			Wparam  uintptr
			Lparam  uintptr
			Time    uint32
			Pt      struct{ X, Y int32 }
		}

		for {
			ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) <= 0 {
				break
			}
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
		}

		procUnhookWindowsHookEx.Call(hook)

		hookMu.Lock()
		keyboardHook = 0
		instanceManager = nil
		hookMu.Unlock()

		m.log.Info().Msg("Hotkey Engine: Windows keyboard hook stopped.")
	}()

	return <-started
}

func keyboardHookPtr(nCode int, wParam uintptr, lParam uintptr) uintptr {
	hookMu.Lock()
	mgr, hook := instanceManager, keyboardHook
	hookMu.Unlock()

	if nCode == 0 && mgr != nil {
		kbd := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
		if kbd.Flags&LLKHF_INJECTED == 0 {
			isDown := wParam == WM_KEYDOWN || wParam == WM_SYSKEYDOWN
			mgr.UpdateState(uint16(kbd.VkCode), isDown)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(hook, uintptr(nCode), wParam, lParam)
	return ret
}
