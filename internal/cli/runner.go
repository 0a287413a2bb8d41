// Package cli implements the todo command line: global flags, subcommand
// dispatch and exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/idilsaglam/todo/internal/client"
	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/exitcode"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/ui"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// Options carry what the subcommands need from the root flags.
type Options struct {
	Out    io.Writer
	Err    io.Writer
	Config *config.Config
	Logger *log.Logger

	Group bool // list grouped by pending/done
}

// usageError marks errors that should exit with exitcode.Usage.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// Main parses the root flags in argv, loads configuration and runs the
// requested subcommand. It returns the process exit code.
func Main(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("todo", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.Usage = func() {}

	configPath := fs.String("config", "", "config file (default ./"+config.FileName+" when present)")
	serverURL := fs.String("server", "", "base URL of the todo server")
	group := fs.Bool("group", false, "group output by pending/done")
	theme := fs.String("theme", "", "color theme: classic, neon or mono")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	logFormat := fs.String("log-format", "", "log format: text, json or logfmt")
	colorMode := fs.String("color", "auto", "color output: auto, always or never")

	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			PrintHelp(stdout)
			return exitcode.Success
		}
		ui.Fail(stderr, err.Error())
		return exitcode.Usage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail(stderr, "config: "+err.Error())
		return exitcode.Error
	}
	if fs.Changed("server") {
		cfg.Client.URL = *serverURL
	}
	if fs.Changed("theme") {
		cfg.UI.Theme = *theme
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = *logFormat
	}
	if !ui.IsTheme(cfg.UI.Theme) {
		ui.Fail(stderr, fmt.Sprintf("unknown theme %q (want one of %s)", cfg.UI.Theme, strings.Join(ui.Themes, ", ")))
		if fs.Changed("theme") {
			return exitcode.Usage
		}
		return exitcode.Error
	}
	switch strings.ToLower(*colorMode) {
	case "auto":
		ui.SetColorForcing(false, false)
	case "always":
		ui.SetColorForcing(true, false)
	case "never":
		ui.SetColorForcing(false, true)
	default:
		ui.Fail(stderr, fmt.Sprintf("unknown color mode %q (want auto, always or never)", *colorMode))
		return exitcode.Usage
	}
	ui.SetTheme(cfg.UI.Theme)

	return Run(ctx, fs.Args(), Options{
		Out:    stdout,
		Err:    stderr,
		Config: cfg,
		Logger: logging.NewFromConfig(stderr, cfg.Log.Level, cfg.Log.Format),
		Group:  *group,
	})
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Config == nil {
		opt.Config = config.Default()
	}
	if opt.Logger == nil {
		opt.Logger = logging.Discard()
	}
	if len(args) == 0 {
		PrintHelp(opt.Err)
		return exitcode.Usage
	}
	cmd, a := args[0], args[1:]

	var err error
	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return exitcode.Success
	case "version", "--version":
		fmt.Fprintf(opt.Out, "todo %s\n", Version)
		return exitcode.Success
	case "serve":
		err = doServe(ctx, a, opt)
	case "ls":
		err = doList(ctx, a, opt)
	case "tui":
		err = doTUI(ctx, a, opt)
	case "add":
		err = doAdd(ctx, a, opt)
	case "done":
		err = doToggle(ctx, a, opt)
	case "rm":
		err = doRemove(ctx, a, opt)
	case "export":
		err = doExport(ctx, a, opt)
	default:
		ui.Fail(opt.Err, "unknown subcommand: "+cmd)
		fmt.Fprintln(opt.Err)
		PrintHelp(opt.Err)
		return exitcode.Usage
	}
	return exitCode(err, opt)
}

func exitCode(err error, opt Options) int {
	if err == nil {
		return exitcode.Success
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitcode.Success
	}
	ui.Fail(opt.Err, err.Error())
	var ue *usageError
	if errors.As(err, &ue) {
		return exitcode.Usage
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(opt.Err, ui.Colorize(opt.Err, ui.Current().Muted,
			"Hint: is the server running at "+opt.Config.Client.URL+"? Start one with `todo serve`"))
	}
	return exitcode.Error
}

// PrintHelp writes the top-level usage text to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `todo - a tiny task list server and client

Usage:
  todo [global flags] <subcommand> [args]

Subcommands:
  serve [--addr A] [--empty] [--tui]   Run the HTTP server (and optionally the TUI)
        [--log-file PATH]             with --tui, where logs go
  ls                                   List tasks
  tui                                  Interactive terminal UI
  add <text...>                        Add a task (text can be multiple words)
  done <id>                            Toggle completion of task <id>
  rm <id>                              Delete task <id>
  export [--format F] [--out PATH]     Export tasks as json, csv, yaml or pdf
         [--pdf-font TTF]
  version                              Print the version

Global flags:
  --config PATH      config file (default ./%s when present)
  --server URL       server base URL (default %s)
  --group            group ls output by pending/done
  --theme NAME       classic, neon or mono
  --color MODE       auto, always or never
  --log-level L      debug, info, warn or error
  --log-format F     text, json or logfmt

Examples:
  todo serve
  todo add "Buy milk"
  todo ls
  todo done 2
  todo export --format pdf --out todos.pdf
`, config.FileName, config.DefaultServerURL)
}

// newFlagSet returns a subcommand flag set that reports errors instead of
// exiting and prints nothing by itself.
func newFlagSet(name string, opt Options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(opt.Err)
	fs.Usage = func() {
		fmt.Fprintf(opt.Err, "Usage of %s:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usagef("%s: %v", fs.Name(), err)
	}
	return nil
}

func newClient(opt Options) (*client.Client, error) {
	timeout, err := opt.Config.ClientTimeout()
	if err != nil {
		return nil, err
	}
	return client.New(opt.Config.Client.URL, &http.Client{Timeout: timeout}), nil
}
