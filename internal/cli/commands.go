package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/todo/internal/client"
	"github.com/idilsaglam/todo/internal/export"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/server"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/taskclient"
	"github.com/idilsaglam/todo/internal/tui"
	"github.com/idilsaglam/todo/internal/ui"
)

// runTUI is swapped out in tests.
var runTUI = tui.Run

func doServe(ctx context.Context, args []string, opt Options) error {
	fs := newFlagSet("serve", opt)
	addr := fs.String("addr", opt.Config.Server.Addr, "listen address")
	empty := fs.Bool("empty", opt.Config.Server.Empty, "start without the sample tasks")
	withTUI := fs.Bool("tui", false, "open the terminal UI against the new server")
	logFile := fs.String("log-file", "", "with --tui, append logs to this file (default: discard)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usagef("serve: unexpected argument %q", fs.Arg(0))
	}
	if *logFile != "" && !*withTUI {
		return usagef("serve: --log-file requires --tui")
	}

	shutdown, err := opt.Config.ShutdownTimeout()
	if err != nil {
		return err
	}
	st := store.New()
	if *empty {
		st = store.NewEmpty()
	}
	if !*withTUI {
		srv := server.New(st, opt.Logger, server.Options{Addr: *addr, ShutdownTimeout: shutdown})
		return srv.ListenAndServe(ctx)
	}

	// The TUI owns the terminal, so nothing may log to stderr.
	logger := logging.Discard()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = logging.NewFromConfig(f, opt.Config.Log.Level, opt.Config.Log.Format)
	}
	srv := server.New(st, logger, server.Options{Addr: *addr, ShutdownTimeout: shutdown})

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// Quitting the TUI stops the server.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	g.Go(func() error {
		defer cancel()
		c := client.New("http://"+ln.Addr().String(), nil)
		return runTUI(gctx, taskclient.New(c, logger))
	})
	return g.Wait()
}

func doTUI(ctx context.Context, args []string, opt Options) error {
	if len(args) > 0 {
		return usagef("usage: todo tui")
	}
	c, err := newClient(opt)
	if err != nil {
		return err
	}
	return runTUI(ctx, taskclient.New(c, opt.Logger))
}

func doList(ctx context.Context, args []string, opt Options) error {
	if len(args) > 0 {
		return usagef("usage: todo ls")
	}
	c, err := newClient(opt)
	if err != nil {
		return err
	}
	tasks, err := c.List(ctx)
	if err != nil {
		return err
	}

	t := ui.Current()
	color := func(code, s string) string { return ui.Colorize(opt.Out, code, s) }
	d, p := stats(tasks)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		color(t.Title, "Todos"),
		color(t.Success, t.SymDone), d,
		color(t.Pending, t.SymPending), p,
		color(t.Accent, "Total"), len(tasks),
	)

	lines := []string{header, color(t.Muted, ui.ProgressBar(d, d+p, 28)), ""}
	if opt.Group {
		lines = append(lines, groupLines(tasks, color)...)
	} else {
		lines = append(lines, flatLines(tasks, color)...)
	}
	lines = append(lines, "", color(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(opt.Out, lines)
	return nil
}

func doAdd(ctx context.Context, args []string, opt Options) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return usagef("usage: todo add <text...>")
	}
	c, err := newClient(opt)
	if err != nil {
		return err
	}
	t, err := c.Create(ctx, text)
	if err != nil {
		return err
	}
	ui.OK(opt.Out, fmt.Sprintf("added #%d", t.ID))
	return nil
}

func doToggle(ctx context.Context, args []string, opt Options) error {
	id, err := parseIDArg("done", args)
	if err != nil {
		return err
	}
	c, err := newClient(opt)
	if err != nil {
		return err
	}
	state := taskclient.New(c, opt.Logger)
	if err := state.Init(ctx); err != nil {
		return err
	}
	for _, t := range state.Tasks() {
		if t.ID != id {
			continue
		}
		updated, err := state.ToggleTask(ctx, t.ID, t.Completed)
		if err != nil {
			return err
		}
		if updated.Completed {
			ui.OK(opt.Out, fmt.Sprintf("#%d done", id))
		} else {
			ui.OK(opt.Out, fmt.Sprintf("#%d pending", id))
		}
		return nil
	}
	return fmt.Errorf("done: %w", &client.Error{Status: http.StatusNotFound, Message: fmt.Sprintf("no task #%d", id)})
}

func doRemove(ctx context.Context, args []string, opt Options) error {
	id, err := parseIDArg("rm", args)
	if err != nil {
		return err
	}
	c, err := newClient(opt)
	if err != nil {
		return err
	}
	if err := c.Delete(ctx, id); err != nil {
		return err
	}
	ui.OK(opt.Out, fmt.Sprintf("removed #%d", id))
	return nil
}

func doExport(ctx context.Context, args []string, opt Options) error {
	fs := newFlagSet("export", opt)
	format := fs.StringP("format", "f", "json", "output format: "+strings.Join(export.Formats, ", "))
	out := fs.StringP("out", "o", "", "write to this file instead of stdout")
	pdfFont := fs.String("pdf-font", "", "TrueType font for pdf text (e.g. a CJK font)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usagef("export: unexpected argument %q", fs.Arg(0))
	}
	if !validFormat(*format) {
		return usagef("export: unknown format %q (want one of %s)", *format, strings.Join(export.Formats, ", "))
	}

	var renderOpts []export.Option
	if *pdfFont != "" {
		ttf, err := os.ReadFile(*pdfFont)
		if err != nil {
			return fmt.Errorf("read pdf font: %w", err)
		}
		renderOpts = append(renderOpts, export.WithPDFFont(ttf))
	}

	c, err := newClient(opt)
	if err != nil {
		return err
	}
	tasks, err := c.List(ctx)
	if err != nil {
		return err
	}
	b, err := export.Render(tasks, *format, renderOpts...)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err := opt.Out.Write(b)
		return err
	}
	if err := export.WriteFile(*out, b); err != nil {
		return err
	}
	ui.OK(opt.Out, fmt.Sprintf("exported %d tasks to %s", len(tasks), *out))
	return nil
}

func validFormat(format string) bool {
	for _, f := range export.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

func parseIDArg(cmd string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, usagef("usage: todo %s <id>", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, usagef("%s: not a task id: %s", cmd, args[0])
	}
	return id, nil
}

// -------------- rendering helpers --------------

func stats(tasks []model.Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(tasks []model.Task, color func(code, s string) string) []string {
	t := ui.Current()
	if len(tasks) == 0 {
		return []string{color(t.Muted, "no tasks")}
	}
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		id := fmt.Sprintf("%3s", "#"+strconv.FormatInt(task.ID, 10))
		box, c := t.BoxUnchecked, t.Muted
		if task.Completed {
			box, c = t.BoxChecked, t.Success
		}
		text := task.Text
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", color(t.Muted, id), color(c, box), text))
	}
	return out
}

func groupLines(tasks []model.Task, color func(code, s string) string) []string {
	t := ui.Current()
	var pend, done []model.Task
	for _, task := range tasks {
		if task.Completed {
			done = append(done, task)
		} else {
			pend = append(pend, task)
		}
	}
	section := func(title string, items []model.Task) []string {
		lines := []string{color(t.Accent, title)}
		if len(items) == 0 {
			return append(lines, color(t.Muted, "(none)"))
		}
		return append(lines, flatLines(items, color)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
