// chattyper - types the lines of text files into a target window's chat
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"chattyper/internal/config"
	"chattyper/internal/files"
	"chattyper/internal/input"
	"chattyper/internal/logging"
	"chattyper/internal/osutils"
	"chattyper/internal/sender"
)

var version = "0.3.0"

const longHelp = `chattyper types every non-empty line of a text file into a target window
as separate chat messages.

For each line it activates the target window, opens the chat box with the chat
hotkey, types the text character by character and submits it with the send
hotkey. Files (.txt and .md by default) are read from the directory next to
the executable.

Configuration is read from the config file, then CHATTYPER_* environment
variables, then flags; later sources win.`

var exampleUsage = strings.TrimSpace(`
  chattyper
  chattyper --window "Notepad" --dir ./messages
  chattyper send quotes.txt --next-line-delay 500ms
  chattyper windows league
  chattyper config init`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// app carries what every command needs once flags and config are resolved.
type app struct {
	mgr     *config.Manager
	cfg     config.Config
	dir     string
	log     zerolog.Logger
	sender  *sender.Sender
	closeLn func() error
}

func main() {
	a := &app{}
	var cfgPath string

	mgr, err := config.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "chattyper",
		Short:         "Type the lines of text files into a window's chat",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				fresh := config.NewManagerAt(cfgPath)
				*fresh.Config() = *mgr.Config()
				mgr = fresh
			}
			return a.setup(cmd, mgr)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeLn != nil {
				return a.closeLn()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTUI(ctx, a)
		},
	}

	bindFlags(root.PersistentFlags(), mgr.Config(), &cfgPath)

	root.AddCommand(
		newSendCmd(a),
		newTrayCmd(a),
		newWindowsCmd(a),
		newCheckCmd(a),
		newConfigCmd(a),
		newAutostartCmd(a),
		newVersionCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// bindFlags registers every config field as a persistent flag. Defaults come
// from the bound config so help text shows the effective defaults.
func bindFlags(fs *pflag.FlagSet, cfg *config.Config, cfgPath *string) {
	fs.StringVar(cfgPath, "config", "", "config file path (default per-user config dir)")

	fs.StringVarP(&cfg.Target.WindowTitle, "window", "w", cfg.Target.WindowTitle, "target window title substring (case-insensitive)")
	fs.StringVar(&cfg.Target.ChatHotkey, "chat-hotkey", cfg.Target.ChatHotkey, "hotkey that opens the chat box")
	fs.StringVar(&cfg.Target.SendHotkey, "send-hotkey", cfg.Target.SendHotkey, "hotkey that sends the typed message")

	for _, d := range cfg.Delays.DelayFlags() {
		fs.DurationVar(d.Value, d.Name, *d.Value, d.Usage)
	}

	fs.StringVarP(&cfg.Files.Dir, "dir", "d", cfg.Files.Dir, "directory to read text files from (default next to the executable)")
	fs.StringSliceVar(&cfg.Files.Extensions, "ext", cfg.Files.Extensions, "supported file extensions")
	fs.BoolVar(&cfg.Files.Watch, "watch", cfg.Files.Watch, "refresh the file list when the directory changes")

	fs.BoolVar(&cfg.Logging.Enabled, "log", cfg.Logging.Enabled, "write a log file")
	fs.StringVar(&cfg.Logging.File, "log-file", cfg.Logging.File, "log file path (default chattyper.log next to the executable)")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "log level (trace, debug, info, warn, error)")

	fs.StringVar(&cfg.Tray.CancelHotkey, "cancel-hotkey", cfg.Tray.CancelHotkey, "global hotkey that cancels a running batch (empty disables)")
}

// setup resolves the configuration, installs logging and builds the sender.
func (a *app) setup(cmd *cobra.Command, mgr *config.Manager) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if err := mgr.Load(changed); err != nil {
		return err
	}
	a.mgr = mgr
	a.cfg = mgr.Get()

	// The TUI owns the terminal, so it only logs to the file.
	opts := logging.Options{Header: config.DefaultHeaderName}
	if cmd.Parent() != nil {
		opts.Console = os.Stderr
		opts.ConsoleLevel = zerolog.InfoLevel
	}
	closeLn, err := logging.Setup(a.cfg.Logging, opts)
	if err != nil {
		return err
	}
	a.closeLn = closeLn
	a.log = logging.Logger()

	dir, err := files.ResolveDir(a.cfg.Files.Dir)
	if err != nil {
		return err
	}
	a.dir = dir

	a.log.Info().
		Str("window", a.cfg.Target.WindowTitle).
		Str("dir", a.dir).
		Str("config", mgr.Path()).
		Msg("Main: configuration loaded")

	a.sender = sender.New(input.NewBackend(), a.cfg, sender.WithLogger(a.log))
	return nil
}

// printError writes err and the hints that usually resolve it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "\n❌ Error: %v\n", err)

	var hints []string
	switch {
	case errors.Is(err, sender.ErrTargetNotRunning), errors.Is(err, sender.ErrWindowNotFound):
		hints = []string{
			"The target application is running and its window is open",
			"The --window title matches part of the window title (see 'chattyper windows')",
		}
	case errors.Is(err, sender.ErrInputUnavailable):
		hints = []string{
			"chattyper is running on Windows",
			"chattyper runs as administrator when the target runs elevated",
		}
	case errors.Is(err, files.ErrNoFiles):
		hints = []string{
			"There are .txt or .md files in the same directory as the executable (or --dir)",
			"The files contain non-empty lines",
			"You have proper permissions to read the files",
		}
	default:
		return
	}

	fmt.Fprintln(w, "\nMake sure:")
	for i, h := range hints {
		fmt.Fprintf(w, "  %d. %s\n", i+1, h)
	}
}

// warnElevation reports whether the process is elevated, logging a warning
// when it is not.
func warnElevation(a *app) bool {
	return osutils.WarnIfNotElevated(a.log)
}
