// Package sender types lines of text into a target window as chat messages.
package sender

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"chattyper/internal/config"
	"chattyper/internal/hotkey"
	"chattyper/internal/input"
)

// Step is a stage of sending one line.
type Step int

const (
	StepCheckRunning Step = iota
	StepActivate
	StepSettle
	StepOpenChat
	StepOpenSettle
	StepType
	StepTypeSettle
	StepSubmit
	StepSendSettle
)

var stepNames = [...]string{
	StepCheckRunning: "check running",
	StepActivate:     "activate",
	StepSettle:       "settle",
	StepOpenChat:     "open chat",
	StepOpenSettle:   "open settle",
	StepType:         "type",
	StepTypeSettle:   "type settle",
	StepSubmit:       "submit",
	StepSendSettle:   "send settle",
}

func (s Step) String() string {
	if s >= 0 && int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Sender drives the locate, activate, open chat, type and submit sequence.
type Sender struct {
	backend   input.Backend
	locator   *input.Locator
	activator *input.Activator
	emitter   *input.Emitter
	encoder   *input.Encoder

	delays config.Delays
	chat   hotkey.Combo
	send   hotkey.Combo
	sleep  input.Sleeper
	log    zerolog.Logger
}

// Option customizes a Sender.
type Option func(*Sender)

// WithSleeper replaces time.Sleep for every delay.
func WithSleeper(sleep input.Sleeper) Option {
	return func(s *Sender) { s.sleep = sleep }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Sender) { s.log = log }
}

// New creates a Sender from a validated configuration.
func New(backend input.Backend, cfg config.Config, opts ...Option) *Sender {
	s := &Sender{
		backend: backend,
		delays:  cfg.Delays,
		chat:    cfg.ChatCombo(),
		send:    cfg.SendCombo(),
		sleep:   time.Sleep,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.locator = input.NewLocator(backend)
	s.activator = input.NewActivator(backend, s.delays.WindowFocus, s.sleep)
	s.emitter = input.NewEmitter(backend, s.delays, s.sleep)
	s.encoder = input.NewEncoder(backend, s.emitter, s.delays, s.sleep)
	return s
}

// Locator exposes the window locator for read-only queries.
func (s *Sender) Locator() *input.Locator {
	return s.locator
}

// WindowExists reports whether a window title contains title.
func (s *Sender) WindowExists(title string) bool {
	if s.backend.Ready() != nil {
		return false
	}
	return s.locator.Exists(title)
}

// Preflight checks that input can be injected and that a window title
// contains title. It returns ErrInputUnavailable or ErrTargetNotRunning.
func (s *Sender) Preflight(title string) error {
	if err := s.backend.Ready(); err != nil {
		return fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	if !s.locator.Exists(title) {
		return fmt.Errorf("%w: %q is not running, start the application first", ErrTargetNotRunning, title)
	}
	return nil
}

// SendLine types text into the first window whose title contains title and
// submits it. Failures before activation emit no key events. Text typed before
// a later failure is not rolled back.
func (s *Sender) SendLine(text, title string) error {
	log := s.log.With().Str("window", title).Str("line", preview(text, 30)).Logger()
	log.Debug().Msg("Sender: sending line")

	// 1. CheckRunning
	if err := s.Preflight(title); err != nil {
		return s.fail(log, StepCheckRunning, title, err)
	}

	// 2. Activate
	w, ok := s.locator.Find(title)
	if !ok || !s.activator.Activate(w.Handle) {
		return s.fail(log, StepActivate, title, fmt.Errorf("%w: %q", ErrWindowNotFound, title))
	}
	log.Debug().Str("title", w.Title).Msg("Sender: window focused")

	// 3. Settle
	s.sleep(s.delays.Focus)

	// 4. OpenChat
	if err := s.pressCombo(s.chat); err != nil {
		return s.fail(log, StepOpenChat, title, fmt.Errorf("%w: %w", ErrInputUnavailable, err))
	}

	// 5. OpenSettle
	s.sleep(s.delays.ChatOpen)

	// 6. Type
	if err := s.encoder.SendText(text); err != nil {
		return s.fail(log, StepType, title, fmt.Errorf("%w: %w", ErrInputUnavailable, err))
	}

	// 7. TypeSettle
	s.sleep(s.delays.AfterType)

	// 8. Submit
	if err := s.pressCombo(s.send); err != nil {
		return s.fail(log, StepSubmit, title, fmt.Errorf("%w: %w", ErrInputUnavailable, err))
	}

	// 9. SendSettle
	s.sleep(s.delays.AfterSend)

	log.Debug().Int("chars", utf8.RuneCountInString(text)).Msg("Sender: line sent")
	return nil
}

func (s *Sender) pressCombo(c hotkey.Combo) error {
	mods := make([]input.VirtualKey, len(c.Modifiers))
	for i, m := range c.Modifiers {
		mods[i] = input.VirtualKey(m)
	}
	return s.emitter.PressChord(input.VirtualKey(c.Key), mods...)
}

func (s *Sender) fail(log zerolog.Logger, step Step, title string, err error) error {
	log.Error().Err(err).Stringer("step", step).Msg("Sender: send failed")
	return &SendError{Step: step, Title: title, Err: err}
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
