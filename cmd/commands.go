package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chattyper/internal/autostart"
	"chattyper/internal/config"
	"chattyper/internal/files"
	"chattyper/internal/sender"
	"chattyper/internal/tray"
	"chattyper/internal/ui"
)

func runTUI(ctx context.Context, a *app) error {
	warnElevation(a)
	a.log.Info().Msg("Main: starting browser")
	if err := ui.Run(ctx, a.cfg, a.sender, a.dir, a.log); err != nil {
		return err
	}
	fmt.Println("chattyper exited. Goodbye!")
	return nil
}

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <file>",
		Short: "Send every line of a file without the browser",
		Long: `Send every non-empty line of <file> to the target window.

Ctrl+C stops before the next line; the line being typed always completes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			warnElevation(a)

			f, ok, err := files.Load(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", args[0], files.ErrNoFiles)
			}

			title := a.cfg.Target.WindowTitle
			if err := a.sender.Preflight(title); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			width := len(fmt.Sprint(f.LineCount()))
			res, err := a.sender.SendBatch(ctx, f.Lines, title, sender.BatchOptions{
				OnProgress: func(i, total int, line string) {
					fmt.Fprintf(out, "[%*d/%*d] Sending: %s\n", width, i, width, total, line)
				},
			})
			if err != nil {
				return err
			}
			if res.Cancelled {
				fmt.Fprintf(out, "⚠ Cancelled after %d of %d messages.\n", res.Sent, res.Total)
				return nil
			}
			fmt.Fprintf(out, "✅ Done! Sent %d messages.\n", res.Sent)
			return nil
		},
	}
}

func newTrayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Run from the system tray with one menu entry per file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			warnElevation(a)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			t := tray.NewApp(a.cfg, a.sender, a.dir, a.log)
			t.SetLoginItem(loginItem{args: a.autostartArgs()})
			return t.Run(ctx)
		},
	}
}

func newWindowsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "windows [filter]",
		Short: "List top-level windows whose title contains filter",
		Long:  "List top-level windows whose title contains filter (case-insensitive). Without filter every titled window is listed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			wins := a.sender.Locator().List(filter)
			out := cmd.OutOrStdout()
			for _, w := range wins {
				if w.Title == "" {
					continue
				}
				fmt.Fprintf(out, "0x%08X  %s\n", uintptr(w.Handle), w.Title)
			}
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the target window exists and report whether it is focused",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := a.cfg.Target.WindowTitle
			out := cmd.OutOrStdout()

			elevated := warnElevation(a)
			fmt.Fprintf(out, "Administrator: %t\n", elevated)

			if err := a.sender.Preflight(title); err != nil {
				return err
			}
			w, found := a.sender.Locator().Find(title)
			if !found {
				return fmt.Errorf("%q: %w", title, sender.ErrWindowNotFound)
			}
			fmt.Fprintf(out, "Window:        %s (0x%08X)\n", w.Title, uintptr(w.Handle))
			fmt.Fprintf(out, "Focused:       %t\n", a.sender.Locator().IsFocused(title))
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.FileExists(a.mgr.Path()) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.mgr.Path())
			}
			if err := a.mgr.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", a.mgr.Path())
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.mgr.Get()
			b, err := config.MarshalConfig(&cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.mgr.Path(), b)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

// loginItem adapts the autostart package to the tray toggle.
type loginItem struct {
	args []string
}

func (l loginItem) IsEnabled() bool { return autostart.IsEnabled() }
func (l loginItem) Enable() error { return autostart.Enable(l.args...) }
func (l loginItem) Disable() error { return autostart.Disable() }

// autostartArgs pins the config file and directory the login entry starts with.
func (a *app) autostartArgs() []string {
	return []string{"--config", a.mgr.Path(), "--dir", a.dir}
}

func newAutostartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start tray mode when you log in",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Register tray mode to start at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := autostart.Enable(a.autostartArgs()...); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Autostart enabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Remove the login entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := autostart.Disable(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether the login entry exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Autostart: %t\n", autostart.IsEnabled())
				return nil
			},
		},
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading so a broken config file does not hide the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cmd.Root().Version)
			return nil
		},
	}
}
