package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"chattyper/internal/config"
	"chattyper/internal/files"
	"chattyper/internal/hotkey"
	"chattyper/internal/sender"
)

// Run starts the interactive browser and blocks until the user quits.
func Run(ctx context.Context, cfg config.Config, s *sender.Sender, dir string, log zerolog.Logger) error {
	found, err := files.Discover(dir, cfg.Files.Extensions, log)
	if err != nil && !errors.Is(err, files.ErrNoFiles) {
		return err
	}

	m := NewModel(found, cfg, s, dir, log)
	if err != nil {
		m.app.SetError(err.Error())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Files.Watch {
		w := files.NewWatcher(dir, cfg.Files.Extensions, log, func(found []files.TextFile, err error) {
			p.Send(filesMsg{found: found, err: err})
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Warn().Err(err).Msg("UI: auto refresh disabled")
			}
		}()
	}

	// The target holds focus while typing; Esc in the terminal only works
	// after switching back, the global hotkey works from anywhere.
	if cfg.Tray.CancelHotkey != "" {
		hk := hotkey.NewManager(log)
		if _, err := hk.Register(cfg.Tray.CancelHotkey, m.CancelBatch); err != nil {
			return err
		}
		if err := hk.Start(); err != nil {
			log.Warn().Err(err).Msg("UI: global cancel hotkey unavailable")
		}
		defer hk.Stop()
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
