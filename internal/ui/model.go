// Package ui implements the terminal file browser, pager and send progress view.
package ui

import (
	"errors"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"chattyper/internal/browser"
	"chattyper/internal/config"
	"chattyper/internal/files"
	"chattyper/internal/sender"
)

type mode int

const (
	modeBrowse mode = iota
	modeView
	modeSending
	modeResult
)

// cancelPollInterval bounds how long the batch waits on the cancel channel
// between lines.
const cancelPollInterval = 10 * time.Millisecond

// Messages.
type (
	filesMsg struct {
		found  []files.TextFile
		err    error
		manual bool
	}
	progressMsg struct {
		index, total int
		line         string
	}
	batchDoneMsg struct {
		res sender.BatchResult
		err error
	}
	resumeMsg struct{}
)

// Model is the bubbletea model of the application.
type Model struct {
	app    *browser.App
	cfg    config.Config
	sender *sender.Sender
	dir    string
	log    zerolog.Logger
	keys   keyMap

	mode   mode
	search textinput.Model
	pager  viewport.Model
	width  int
	height int

	viewing  files.TextFile
	notice   string
	progress []string
	result   string
	resultOK bool
	events   chan tea.Msg
	cancel   *canceller
	active   *activeBatch
}

// NewModel creates the model over the initial file list.
func NewModel(found []files.TextFile, cfg config.Config, s *sender.Sender, dir string, log zerolog.Logger) Model {
	search := textinput.New()
	search.Prompt = "🔍 Search: "
	search.Placeholder = "type to filter"
	search.Focus()

	return Model{
		app:    browser.New(found),
		cfg:    cfg,
		sender: s,
		dir:    dir,
		log:    log,
		keys:   defaultKeyMap(),
		search: search,
		pager:  viewport.New(80, 20),
		active: &activeBatch{},
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.pager.Width = msg.Width
		m.pager.Height = max(1, msg.Height-6)
		return m, nil

	case filesMsg:
		return m.applyFiles(msg), nil

	case progressMsg:
		width := len(fmt.Sprint(msg.total))
		m.progress = append(m.progress, fmt.Sprintf("[%*d/%*d] Sending: %s",
			width, msg.index, width, msg.total, truncateLine(msg.line, 50)))
		return m, waitForEvent(m.events)

	case batchDoneMsg:
		return m.finishBatch(msg)

	case resumeMsg:
		if m.mode == modeResult {
			m.mode = modeBrowse
			m.progress = nil
			m.result = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeView:
			return m.updateView(msg)
		case modeSending:
			if key.Matches(msg, m.keys.Cancel) {
				m.cancel.Cancel()
				m.notice = "Cancelling after the current line..."
			}
			return m, nil
		case modeResult:
			return m, nil
		default:
			return m.updateBrowse(msg)
		}
	}

	if m.mode == modeBrowse {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.app.ClearError()
		return m, m.refresh()

	case key.Matches(msg, m.keys.View):
		if f, ok := m.app.Selected(); ok {
			m.openPager(f)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.app.MoveUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.app.MoveDown()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		m.app.ClearError()
		return m.startBatch()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.app.Query() {
		m.app.ClearError()
		m.app.SetQuery(m.search.Value())
	}
	return m, cmd
}

func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.pager.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.pager.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.pager, cmd = m.pager.Update(msg)
	return m, cmd
}

func (m *Model) openPager(f files.TextFile) {
	m.viewing = f
	m.mode = modeView
	m.pager.SetContent(numberLines(f.Lines))
	m.pager.GotoTop()
}

func (m Model) applyFiles(msg filesMsg) Model {
	if msg.err != nil {
		m.app.SetError(fmt.Sprintf("Refresh failed: %v", msg.err))
		return m
	}
	changed := m.app.SetFiles(msg.found)
	m.search.SetValue("")
	switch {
	case changed > 0:
		m.notice = fmt.Sprintf("Refreshed: %d file(s) changed", changed)
	case msg.manual:
		m.notice = "Refreshed: no changes"
	}
	m.log.Info().Int("files", len(msg.found)).Int("changed", changed).Msg("UI: file list refreshed")
	return m
}

func (m Model) refresh() tea.Cmd {
	dir, exts, log := m.dir, m.cfg.Files.Extensions, m.log
	return func() tea.Msg {
		found, err := files.Discover(dir, exts, log)
		return filesMsg{found: found, err: err, manual: true}
	}
}

func (m Model) startBatch() (tea.Model, tea.Cmd) {
	f, ok := m.app.Selected()
	if !ok {
		return m, nil
	}
	title := m.cfg.Target.WindowTitle
	m.log.Info().Str("file", f.Name).Int("lines", f.LineCount()).Msg("UI: file selected")

	if err := m.sender.Preflight(title); err != nil {
		m.log.Error().Err(err).Str("window", title).Msg("UI: cannot send")
		m.app.SetError(preflightMessage(title, err))
		return m, nil
	}

	m.mode = modeSending
	m.viewing = f
	m.notice = ""
	m.progress = nil
	m.events = make(chan tea.Msg, 8)
	m.cancel = newCanceller()
	m.active.set(m.cancel)

	lines, events, cancel, s := f.Lines, m.events, m.cancel, m.sender
	run := func() tea.Msg {
		go func() {
			res, err := s.SendBatch(context.Background(), lines, title, sender.BatchOptions{
				Cancel: cancel.Poll,
				OnProgress: func(i, total int, line string) {
					events <- progressMsg{index: i, total: total, line: line}
				},
			})
			events <- batchDoneMsg{res: res, err: err}
		}()
		return nil
	}
	return m, tea.Batch(run, waitForEvent(events))
}

func (m Model) finishBatch(msg batchDoneMsg) (tea.Model, tea.Cmd) {
	m.mode = modeResult
	m.notice = ""
	m.active.set(nil)
	pause := m.cfg.Delays.UserRead

	switch {
	case msg.err != nil:
		m.result = fmt.Sprintf("❌ Error: %v\nStopping. Make sure the target window is open.", msg.err)
		m.resultOK = false
	case msg.res.Cancelled:
		m.result = "⚠ Cancelled by user."
		m.resultOK = false
		pause = m.cfg.Delays.CancelPause
	default:
		m.result = fmt.Sprintf("✅ Done! Sent %d messages.", msg.res.Sent)
		m.resultOK = true
	}
	return m, tea.Tick(pause, func(time.Time) tea.Msg { return resumeMsg{} })
}

// CancelBatch requests cancellation of the running batch, if any. It is safe
// to call from other goroutines, such as a global hotkey callback.
func (m Model) CancelBatch() {
	m.active.Cancel()
}

// activeBatch tracks the canceller of the running batch across model copies.
type activeBatch struct {
	mu sync.Mutex
	c  *canceller
}

func (a *activeBatch) set(c *canceller) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.c = c
}

func (a *activeBatch) Cancel() {
	a.mu.Lock()
	c := a.c
	a.mu.Unlock()
	if c != nil {
		c.Cancel()
	}
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// canceller is a one-shot cancel signal polled by the batch sender.
type canceller struct {
	once sync.Once
	ch   chan struct{}
}

func newCanceller() *canceller {
	return &canceller{ch: make(chan struct{})}
}

func (c *canceller) Cancel() {
	c.once.Do(func() { close(c.ch) })
}

// Poll waits up to cancelPollInterval for a cancel request.
func (c *canceller) Poll() bool {
	select {
	case <-c.ch:
		return true
	case <-time.After(cancelPollInterval):
		return false
	}
}

func preflightMessage(title string, err error) string {
	if errors.Is(err, sender.ErrTargetNotRunning) {
		return fmt.Sprintf("'%s' is not running!", title)
	}
	return fmt.Sprintf("Cannot send: %v", err)
}
