package input

import "time"

// Activator brings a located window to the foreground.
type Activator struct {
	backend Backend
	settle  time.Duration
	sleep   Sleeper
}

// NewActivator creates an activator that pauses for settle after each activation.
func NewActivator(backend Backend, settle time.Duration, sleep Sleeper) *Activator {
	return &Activator{backend: backend, settle: settle, sleep: sleep}
}

// Activate restores, shows and foregrounds h, then waits for it to settle.
// It returns false without waiting when h is no longer a window.
func (a *Activator) Activate(h WindowHandle) bool {
	if err := a.backend.Activate(h); err != nil {
		return false
	}
	a.sleep(a.settle)
	return true
}
