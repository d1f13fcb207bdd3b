package sender

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNotRunning means no window matched at the pre-check.
	ErrTargetNotRunning = errors.New("target is not running")

	// ErrWindowNotFound means the window vanished between the pre-check and activation.
	ErrWindowNotFound = errors.New("window not found")

	// ErrInputUnavailable means key events could not be injected.
	ErrInputUnavailable = errors.New("input subsystem unavailable")
)

// SendError records the step at which a line failed.
type SendError struct {
	Step  Step
	Title string
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
