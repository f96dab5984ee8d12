package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/sqltodo/internal/logging"
	"github.com/idilsaglam/sqltodo/internal/model"
	"github.com/idilsaglam/sqltodo/internal/store/jsonstore"
	"github.com/idilsaglam/sqltodo/internal/tui"
	"github.com/idilsaglam/sqltodo/internal/ui"
)

// Store is everything the subcommands need from persistence.
type Store interface {
	tui.Store
	Get(ctx context.Context, id int64) (model.Todo, bool, error)
	Range(ctx context.Context, start, end string, opts model.RangeOptions) ([]model.Todo, error)
	Search(ctx context.Context, q string) ([]model.Todo, error)
	Count(ctx context.Context) (done, pending int, err error)
	Import(ctx context.Context, todos []model.Todo) (int, error)
	SchemaVersion(ctx context.Context) (int, error)
}

// Options carry the opened store plus output settings from root flags.
type Options struct {
	Store  Store
	Log    *log.Logger
	Out    io.Writer
	Err    io.Writer
	Group  bool         // list grouped by pending/done
	Filter model.Filter // default filter for ls and the TUI
}

// runner holds one invocation's options with defaults filled in.
type runner struct {
	ctx context.Context
	Options
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// With no args it opens the interactive list.
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Err == nil {
		opt.Err = os.Stderr
	}
	if opt.Log == nil {
		opt.Log = logging.Discard()
	}
	if opt.Filter == "" {
		opt.Filter = model.FilterAll
	}
	r := runner{ctx: ctx, Options: opt}

	if len(args) == 0 {
		args = []string{"tui"}
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.Out)
		return 0
	case "tui":
		return r.doTUI()
	}

	run, ok := map[string]func([]string) int{
		"ls":     r.doList,
		"get":    r.doGet,
		"add":    r.doAdd,
		"done":   r.doToggle,
		"edit":   r.doEdit,
		"rm":     r.doRemove,
		"search": r.doSearch,
		"range":  r.doRange,
		"dump":   r.doDump,
		"export": r.doExport,
		"import": r.doImport,
	}[cmd]
	if !ok {
		ui.Fail(r.Err, "unknown subcommand: "+cmd)
		fmt.Fprintln(r.Err)
		PrintHelp(r.Err)
		return 2
	}

	if err := r.Store.Init(ctx); err != nil {
		return r.fail("init", err)
	}
	return run(a)
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a tiny SQLite-backed todo list

Usage:
  todo [flags] [subcommand] [args]

Subcommands:
  tui                        Interactive list (default)
  ls [all|done|undone]       List todos, newest first
  get <id>                   Show one todo
  add [--done] <text...>     Add a todo (text can be multiple words)
  done <id>                  Toggle done for a todo
  edit <id> <text...>        Replace a todo's text
  rm <id>                    Remove a todo
  search <query...>          Todos whose text contains query
  range [--by created_at|finished_at] [--status all|done|undone] <start> <end>
                             Todos whose timestamp falls in [start, end]
  dump                       Print every row with raw timestamps
  export <file>              Write all todos to a JSON file
  import <file>              Add todos from a JSON file

Flags:
  -db <path>        database file
  -theme <name>     classic, neon or mono
  -filter <name>    default filter for ls and the TUI
  -log <path>       log file
  -log-level <lvl>  debug, info, warn or error
  -group            group ls output by pending/done
  -no-color         disable colours
  -force-color      colour output even when piped
  -save-config      write the effective settings to the config file

Examples:
  todo add "Buy milk"
  todo ls undone
  todo done 2
  todo range --by created_at "2025-05-01" "2025-05-31 23:59:59"
`)
}

// -------------- subcommand impls ----------------

func (r runner) doTUI() int {
	err := tui.Run(r.ctx, r.Store, tui.Options{Filter: r.Filter, Logger: r.Log})
	if err != nil {
		return r.fail("tui", err)
	}
	return 0
}

func (r runner) doList(a []string) int {
	f := r.Filter
	if len(a) > 1 {
		return r.usage("todo ls [all|done|undone]")
	}
	if len(a) == 1 {
		var err error
		if f, err = model.ParseFilter(a[0]); err != nil {
			ui.Fail(r.Err, "ls: "+err.Error())
			return 2
		}
	}

	items, err := r.Store.List(r.ctx, f)
	if err != nil {
		return r.fail("list", err)
	}
	d, p, err := r.Store.Count(r.ctx)
	if err != nil {
		return r.fail("count", err)
	}

	lines := []string{
		header(d, p),
		ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)),
		"",
	}
	if r.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	if f != model.FilterAll {
		lines = append(lines, ui.C(ui.Current().Muted, "Showing: "+f.Label()))
	}
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(r.Out, lines)
	return 0
}

func (r runner) doGet(a []string) int {
	if len(a) != 1 {
		return r.usage("todo get <id>")
	}
	id, code := r.parseID("get", a[0])
	if code != 0 {
		return code
	}
	t, found, err := r.Store.Get(r.ctx, id)
	if err != nil {
		return r.fail("get", err)
	}
	if !found {
		return r.notFound(id)
	}

	status := ui.C(ui.Current().Pending, "pending")
	if t.Done {
		status = ui.C(ui.Current().Success, "done")
	}
	lines := []string{
		fmt.Sprintf("%s %s", ui.Faint(fmt.Sprintf("#%d", t.ID)), t.Text),
		"",
		"status:   " + status,
		"created:  " + localTime(t.CreatedAt),
	}
	if t.FinishedAt != nil {
		lines = append(lines, "finished: "+localTime(*t.FinishedAt))
	}
	ui.Panel(r.Out, lines)
	return 0
}

func (r runner) doAdd(a []string) int {
	fs := r.flagSet("add")
	done := fs.Bool("done", false, "add the todo already completed")
	if err := fs.Parse(a); err != nil {
		return 2
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return r.usage("todo add [--done] <text...>")
	}

	t, err := r.Store.Add(r.ctx, text, *done)
	if err != nil {
		return r.fail("add", err)
	}
	r.Log.Info("todo added", "id", t.ID, "done", t.Done)
	ui.OK(r.Out, fmt.Sprintf("added #%d", t.ID))
	return 0
}

func (r runner) doToggle(a []string) int {
	if len(a) != 1 {
		return r.usage("todo done <id>")
	}
	id, code := r.parseID("done", a[0])
	if code != 0 {
		return code
	}
	cur, found, err := r.Store.Get(r.ctx, id)
	if err != nil {
		return r.fail("done", err)
	}
	if !found {
		return r.notFound(id)
	}

	done := !cur.Done
	t, found, err := r.Store.Update(r.ctx, id, model.Patch{Done: &done})
	if err != nil {
		return r.fail("done", err)
	}
	if !found {
		return r.notFound(id)
	}
	r.Log.Info("todo toggled", "id", t.ID, "done", t.Done)
	if t.Done {
		ui.OK(r.Out, fmt.Sprintf("completed #%d", t.ID))
	} else {
		ui.OK(r.Out, fmt.Sprintf("reopened #%d", t.ID))
	}
	return 0
}

func (r runner) doEdit(a []string) int {
	if len(a) < 2 {
		return r.usage("todo edit <id> <text...>")
	}
	id, code := r.parseID("edit", a[0])
	if code != 0 {
		return code
	}
	text := strings.TrimSpace(strings.Join(a[1:], " "))
	if text == "" {
		return r.usage("todo edit <id> <text...>")
	}

	t, found, err := r.Store.Update(r.ctx, id, model.Patch{Text: &text})
	if err != nil {
		return r.fail("edit", err)
	}
	if !found {
		return r.notFound(id)
	}
	r.Log.Info("todo edited", "id", t.ID)
	ui.OK(r.Out, fmt.Sprintf("updated #%d", t.ID))
	return 0
}

func (r runner) doRemove(a []string) int {
	if len(a) != 1 {
		return r.usage("todo rm <id>")
	}
	id, code := r.parseID("rm", a[0])
	if code != 0 {
		return code
	}
	deleted, err := r.Store.Delete(r.ctx, id)
	if err != nil {
		return r.fail("rm", err)
	}
	if !deleted {
		return r.notFound(id)
	}
	r.Log.Info("todo removed", "id", id)
	ui.OK(r.Out, fmt.Sprintf("removed #%d", id))
	return 0
}

func (r runner) doSearch(a []string) int {
	q := strings.TrimSpace(strings.Join(a, " "))
	if q == "" {
		return r.usage("todo search <query...>")
	}
	items, err := r.Store.Search(r.ctx, q)
	if err != nil {
		return r.fail("search", err)
	}
	lines := []string{
		fmt.Sprintf("%s %q  %s %d", ui.C(ui.Current().Title, "Search"), q,
			ui.C(ui.Current().Accent, "Matches"), len(items)),
		"",
	}
	ui.Panel(r.Out, append(lines, flatLines(items)...))
	return 0
}

func (r runner) doRange(a []string) int {
	const usage = "todo range [--by created_at|finished_at] [--status all|done|undone] <start> <end>"
	fs := r.flagSet("range")
	by := fs.String("by", string(model.ByFinishedAt), "timestamp to compare: finished_at or created_at")
	status := fs.String("status", string(model.FilterAll), "all, done or undone")
	if err := fs.Parse(a); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		return r.usage(usage)
	}

	var opts model.RangeOptions
	var err error
	if opts.By, err = model.ParseTimeField(*by); err != nil {
		ui.Fail(r.Err, "range: "+err.Error())
		return 2
	}
	if opts.Status, err = model.ParseFilter(*status); err != nil {
		ui.Fail(r.Err, "range: "+err.Error())
		return 2
	}

	start, end := fs.Arg(0), fs.Arg(1)
	items, err := r.Store.Range(r.ctx, start, end, opts)
	if err != nil {
		return r.fail("range", err)
	}
	lines := []string{
		fmt.Sprintf("%s %s  %s → %s  %s %d",
			ui.C(ui.Current().Title, "Range"), ui.Faint(string(opts.By)), start, end,
			ui.C(ui.Current().Accent, "Matches"), len(items)),
		"",
	}
	ui.Panel(r.Out, append(lines, flatLines(items)...))
	return 0
}

// doDump prints every stored row as-is, for debugging.
func (r runner) doDump(a []string) int {
	if len(a) != 0 {
		return r.usage("todo dump")
	}
	v, err := r.Store.SchemaVersion(r.ctx)
	if err != nil {
		return r.fail("dump", err)
	}
	items, err := r.Store.List(r.ctx, model.FilterAll)
	if err != nil {
		return r.fail("dump", err)
	}
	r.Log.Debug("dumping todos", "count", len(items), "schema", v)

	fmt.Fprintf(r.Out, "schema version %d, %d rows\n", v, len(items))
	for _, t := range items {
		finished := "NULL"
		if t.FinishedAt != nil {
			finished = t.FinishedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(r.Out, "id=%d done=%t created_at=%s finished_at=%s text=%q\n",
			t.ID, t.Done, t.CreatedAt.UTC().Format("2006-01-02 15:04:05"), finished, t.Text)
	}
	return 0
}

func (r runner) doExport(a []string) int {
	if len(a) != 1 {
		return r.usage("todo export <file>")
	}
	items, err := r.Store.List(r.ctx, model.FilterAll)
	if err != nil {
		return r.fail("export", err)
	}
	if err := jsonstore.Save(a[0], items); err != nil {
		return r.fail("export", err)
	}
	r.Log.Info("todos exported", "path", a[0], "count", len(items))
	ui.OK(r.Out, fmt.Sprintf("exported %d todos to %s", len(items), a[0]))
	return 0
}

func (r runner) doImport(a []string) int {
	if len(a) != 1 {
		return r.usage("todo import <file>")
	}
	if _, err := os.Stat(a[0]); err != nil {
		return r.fail("import", err)
	}
	items, err := jsonstore.Load(a[0])
	if err != nil {
		return r.fail("import", err)
	}
	n, err := r.Store.Import(r.ctx, items)
	if err != nil {
		return r.fail("import", err)
	}
	r.Log.Info("todos imported", "path", a[0], "count", n)
	ui.OK(r.Out, fmt.Sprintf("imported %d todos", n))
	return 0
}

// -------------- helpers --------------

func (r runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.Err)
	return fs
}

func (r runner) parseID(cmd, s string) (int64, int) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		ui.Fail(r.Err, cmd+": not a valid id: "+s)
		return 0, 2
	}
	return id, 0
}

func (r runner) usage(u string) int {
	ui.Fail(r.Err, "usage: "+u)
	return 2
}

func (r runner) notFound(id int64) int {
	ui.Fail(r.Err, fmt.Sprintf("no todo #%d", id))
	fmt.Fprintln(r.Err, ui.Faint("Hint: run `todo ls` to see valid ids"))
	return 1
}

func (r runner) fail(op string, err error) int {
	r.Log.Error(op+" failed", "err", err)
	if errors.Is(err, os.ErrNotExist) {
		ui.Fail(r.Err, op+": file not found")
		return 1
	}
	ui.Fail(r.Err, op+": "+err.Error())
	return 1
}
