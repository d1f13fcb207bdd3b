package tray

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chattyper/internal/config"
	"chattyper/internal/files"
	"chattyper/internal/input"
	"chattyper/internal/sender"
)

type fakeItem struct {
	title    string
	visible  bool
	enabled  bool
	callback func()
}

type fakeMenu struct {
	mu      sync.Mutex
	items   []*fakeItem
	tooltip string
}

func (m *fakeMenu) AddMenuItem(title, _ string, cb func()) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, &fakeItem{title: title, visible: true, enabled: true, callback: cb})
	return len(m.items) - 1
}

func (m *fakeMenu) AddSeparator() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, nil)
}

func (m *fakeMenu) SetItemTitle(id int, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].title = title
}

func (m *fakeMenu) SetItemVisible(id int, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].visible = v
}

func (m *fakeMenu) SetItemEnabled(id int, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].enabled = v
}

func (m *fakeMenu) SetTooltip(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tooltip = s
}

func (m *fakeMenu) Tooltip() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tooltip
}

func (m *fakeMenu) visibleTitles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, it := range m.items {
		if it != nil && it.visible {
			out = append(out, it.title)
		}
	}
	return out
}

type fakeBatcher struct {
	exists  bool
	ready   error
	release chan struct{}
	calls   chan []string
}

func (b *fakeBatcher) Preflight(title string) error {
	if b.ready != nil {
		return fmt.Errorf("%w: %w", sender.ErrInputUnavailable, b.ready)
	}
	if !b.exists {
		return fmt.Errorf("%w: %q", sender.ErrTargetNotRunning, title)
	}
	return nil
}

func (b *fakeBatcher) SendBatch(_ context.Context, lines []string, _ string, opts sender.BatchOptions) (sender.BatchResult, error) {
	b.calls <- lines
	<-b.release
	res := sender.BatchResult{Total: len(lines)}
	for i, l := range lines {
		if opts.Cancel() {
			res.Cancelled = true
			return res, nil
		}
		opts.OnProgress(i+1, len(lines), l)
		res.Sent++
	}
	return res, nil
}

func newTestApp(b *fakeBatcher) (*App, *fakeMenu) {
	cfg := config.DefaultConfig()
	app := NewApp(*cfg, b, "", zerolog.Nop())
	m := &fakeMenu{}
	app.build(m, []files.TextFile{
		{Name: "a.txt", Lines: []string{"1", "2"}},
		{Name: "b.txt", Lines: []string{"3"}},
	}, func() {})
	return app, m
}

func TestBuildMenu(t *testing.T) {
	_, m := newTestApp(&fakeBatcher{})
	assert.Equal(t, []string{
		"a.txt (2 lines)",
		"b.txt (1 lines)",
		"Cancel sending (Ctrl+Alt+X)",
		"Quit",
	}, m.visibleTitles())
	assert.False(t, m.items[3].enabled)
}

func TestSetFilesReusesSlots(t *testing.T) {
	app, m := newTestApp(&fakeBatcher{})

	app.SetFiles([]files.TextFile{{Name: "c.txt", Lines: []string{"x"}}})
	assert.Equal(t, []string{"c.txt (1 lines)", "Cancel sending (Ctrl+Alt+X)", "Quit"}, m.visibleTitles())

	app.SetFiles([]files.TextFile{
		{Name: "c.txt", Lines: []string{"x"}},
		{Name: "d.txt", Lines: []string{"y"}},
		{Name: "e.txt", Lines: []string{"z"}},
	})
	titles := m.visibleTitles()
	assert.Contains(t, titles, "e.txt (1 lines)")
	assert.Len(t, titles, 5)
}

func TestSendAndCancel(t *testing.T) {
	b := &fakeBatcher{exists: true, release: make(chan struct{}), calls: make(chan []string, 1)}
	app, m := newTestApp(b)

	m.items[0].callback()
	require.Equal(t, []string{"1", "2"}, <-b.calls)
	assert.True(t, m.items[3].enabled)

	// a second click while busy is ignored
	app.Send(1)
	select {
	case <-b.calls:
		t.Fatal("second batch started while busy")
	case <-time.After(20 * time.Millisecond):
	}

	app.Cancel()
	close(b.release)
	app.Wait()

	assert.Contains(t, m.Tooltip(), "Cancelled after 0 of 2 lines")
	assert.False(t, m.items[3].enabled)
}

func TestSendWithoutTarget(t *testing.T) {
	b := &fakeBatcher{exists: false, calls: make(chan []string, 1)}
	app, m := newTestApp(b)

	app.Send(0)
	app.Wait()
	assert.Contains(t, m.Tooltip(), "is not running")
	assert.Empty(t, b.calls)
}

type fakeLogin struct {
	on  bool
	err error
}

func (l *fakeLogin) IsEnabled() bool { return l.on }

func (l *fakeLogin) Enable() error {
	if l.err != nil {
		return l.err
	}
	l.on = true
	return nil
}

func (l *fakeLogin) Disable() error {
	l.on = false
	return nil
}

func TestLoginToggle(t *testing.T) {
	l := &fakeLogin{}
	app := NewApp(*config.DefaultConfig(), &fakeBatcher{}, "", zerolog.Nop())
	app.SetLoginItem(l)
	m := &fakeMenu{}
	app.build(m, []files.TextFile{{Name: "a.txt", Lines: []string{"1"}}}, func() {})

	titles := m.visibleTitles()
	require.Equal(t, "Start at login: off", titles[len(titles)-2])

	m.items[app.loginID].callback()
	assert.True(t, l.on)
	assert.Equal(t, "Start at login: on", m.items[app.loginID].title)

	m.items[app.loginID].callback()
	assert.False(t, l.on)
	assert.Equal(t, "Start at login: off", m.items[app.loginID].title)

	l.err = errors.New("access denied")
	m.items[app.loginID].callback()
	assert.Contains(t, m.Tooltip(), "access denied")
	assert.Equal(t, "Start at login: off", m.items[app.loginID].title)
}

func TestSendWithoutInput(t *testing.T) {
	b := &fakeBatcher{exists: true, ready: input.ErrUnsupportedPlatform, calls: make(chan []string, 1)}
	app, m := newTestApp(b)

	app.Send(0)
	app.Wait()
	assert.Contains(t, m.Tooltip(), "input subsystem unavailable")
	assert.NotContains(t, m.Tooltip(), "is not running")
	assert.Empty(t, b.calls)
}
