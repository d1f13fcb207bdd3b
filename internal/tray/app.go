package tray

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"chattyper/internal/config"
	"chattyper/internal/files"
	"chattyper/internal/hotkey"
	"chattyper/internal/sender"
)

// Batcher sends a batch of lines. *sender.Sender implements it.
type Batcher interface {
	Preflight(title string) error
	SendBatch(ctx context.Context, lines []string, title string, opts sender.BatchOptions) (sender.BatchResult, error)
}

// menu is the slice of Tray the app drives; tests substitute a recorder.
type menu interface {
	AddMenuItem(title, tooltip string, callback func()) int
	AddSeparator()
	SetItemTitle(id int, title string)
	SetItemVisible(id int, visible bool)
	SetItemEnabled(id int, enabled bool)
	SetTooltip(tooltip string)
}

// LoginItem toggles starting the tray at login.
type LoginItem interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// App runs chattyper from the system tray: one menu entry per file, a cancel
// entry and a global cancel hotkey.
type App struct {
	cfg    config.Config
	sender Batcher
	dir    string
	log    zerolog.Logger
	menu   menu

	mu       sync.Mutex
	files    []files.TextFile
	slots    []int // menu ids reused across refreshes
	cancelID int
	login    LoginItem
	loginID  int

	busy   atomic.Bool
	cancel chan struct{}
	once   *sync.Once
	wg     sync.WaitGroup
}

// NewApp creates the tray application.
func NewApp(cfg config.Config, s Batcher, dir string, log zerolog.Logger) *App {
	return &App{cfg: cfg, sender: s, dir: dir, log: log}
}

// SetLoginItem adds a "Start at login" toggle to the menu. Call before Run.
func (a *App) SetLoginItem(l LoginItem) {
	a.login = l
}

// Run discovers files, builds the menu and blocks in the tray loop until
// Quit is chosen or ctx is done.
func (a *App) Run(ctx context.Context) error {
	found, err := files.Discover(a.dir, a.cfg.Files.Extensions, a.log)
	if err != nil {
		return err
	}

	t := New("chattyper", fmt.Sprintf("chattyper: %s", a.cfg.Target.WindowTitle))
	a.build(t, found, t.Stop)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	t.OnExit(cancel)

	go func() {
		<-ctx.Done()
		t.Stop()
	}()

	if a.cfg.Files.Watch {
		w := files.NewWatcher(a.dir, a.cfg.Files.Extensions, a.log, func(found []files.TextFile, err error) {
			if err != nil {
				a.log.Warn().Err(err).Msg("Tray: refresh failed")
				return
			}
			a.SetFiles(found)
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				a.log.Warn().Err(err).Msg("Tray: auto refresh disabled")
			}
		}()
	}

	if a.cfg.Tray.CancelHotkey != "" {
		hk := hotkey.NewManager(a.log)
		if _, err := hk.Register(a.cfg.Tray.CancelHotkey, a.Cancel); err != nil {
			return err
		}
		if err := hk.Start(); err != nil {
			a.log.Warn().Err(err).Msg("Tray: global cancel hotkey unavailable")
		}
		defer hk.Stop()
	}

	a.log.Info().Int("files", len(found)).Msg("Tray: running")
	t.Run()

	a.Cancel()
	a.wg.Wait()
	return nil
}

// build populates m with file entries followed by Cancel and Quit.
func (a *App) build(m menu, found []files.TextFile, quit func()) {
	a.menu = m
	a.SetFiles(found)

	a.mu.Lock()
	defer a.mu.Unlock()
	m.AddSeparator()
	label := "Cancel sending"
	if a.cfg.Tray.CancelHotkey != "" {
		label = fmt.Sprintf("Cancel sending (%s)", a.cfg.Tray.CancelHotkey)
	}
	a.cancelID = m.AddMenuItem(label, "Stop after the current line", a.Cancel)
	m.SetItemEnabled(a.cancelID, false)
	if a.login != nil {
		a.loginID = m.AddMenuItem(loginTitle(a.login.IsEnabled()), "Start chattyper in the tray when you log in", a.toggleLogin)
	}
	m.AddMenuItem("Quit", "Exit chattyper", quit)
}

func loginTitle(on bool) string {
	if on {
		return "Start at login: on"
	}
	return "Start at login: off"
}

func (a *App) toggleLogin() {
	var err error
	if a.login.IsEnabled() {
		err = a.login.Disable()
	} else {
		err = a.login.Enable()
	}
	if err != nil {
		a.log.Error().Err(err).Msg("Tray: could not change login item")
		a.menu.SetTooltip(fmt.Sprintf("Error: %v", err))
	}
	a.menu.SetItemTitle(a.loginID, loginTitle(a.login.IsEnabled()))
}

// SetFiles updates the file entries, reusing existing menu items.
func (a *App) SetFiles(found []files.TextFile) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files = found
	for i, f := range found {
		title := fmt.Sprintf("%s (%d lines)", f.Name, f.LineCount())
		if i < len(a.slots) {
			a.menu.SetItemTitle(a.slots[i], title)
			a.menu.SetItemVisible(a.slots[i], true)
			continue
		}
		idx := i
		a.slots = append(a.slots, a.menu.AddMenuItem(title, "Send every line of this file", func() { a.Send(idx) }))
	}
	for _, id := range a.slots[len(found):] {
		a.menu.SetItemVisible(id, false)
	}
}

// Send starts a batch for the file at idx unless one is already running.
func (a *App) Send(idx int) {
	a.mu.Lock()
	if idx < 0 || idx >= len(a.files) {
		a.mu.Unlock()
		return
	}
	f := a.files[idx]
	a.mu.Unlock()

	if !a.busy.CompareAndSwap(false, true) {
		a.log.Warn().Str("file", f.Name).Msg("Tray: a batch is already running")
		return
	}

	title := a.cfg.Target.WindowTitle
	if err := a.sender.Preflight(title); err != nil {
		a.busy.Store(false)
		a.log.Error().Err(err).Str("window", title).Msg("Tray: cannot send")
		if errors.Is(err, sender.ErrTargetNotRunning) {
			a.menu.SetTooltip(fmt.Sprintf("'%s' is not running!", title))
		} else {
			a.menu.SetTooltip(fmt.Sprintf("Error: %v", err))
		}
		return
	}

	a.mu.Lock()
	a.cancel = make(chan struct{})
	a.once = &sync.Once{}
	cancel := a.cancel
	a.mu.Unlock()

	a.menu.SetItemEnabled(a.cancelID, true)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.busy.Store(false)
		defer a.menu.SetItemEnabled(a.cancelID, false)

		res, err := a.sender.SendBatch(context.Background(), f.Lines, title, sender.BatchOptions{
			Cancel: func() bool {
				select {
				case <-cancel:
					return true
				case <-time.After(10 * time.Millisecond):
					return false
				}
			},
			OnProgress: func(i, total int, _ string) {
				a.menu.SetTooltip(fmt.Sprintf("Sending %s: %d/%d", f.Name, i, total))
			},
		})

		switch {
		case err != nil:
			a.log.Error().Err(err).Str("file", f.Name).Msg("Tray: batch failed")
			a.menu.SetTooltip(fmt.Sprintf("Error: %v", err))
		case res.Cancelled:
			a.menu.SetTooltip(fmt.Sprintf("Cancelled after %d of %d lines", res.Sent, res.Total))
		default:
			a.menu.SetTooltip(fmt.Sprintf("Sent %d messages from %s", res.Sent, f.Name))
		}
	}()
}

// Cancel stops the running batch after its current line.
func (a *App) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.once.Do(func() { close(a.cancel) })
	}
}

// Wait blocks until the running batch, if any, returns.
func (a *App) Wait() {
	a.wg.Wait()
}
