package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/sqltodo/internal/model"
	"github.com/idilsaglam/sqltodo/internal/store/sqlite"
	"github.com/idilsaglam/sqltodo/internal/ui"
)

type harness struct {
	store    *sqlite.Store
	out, err bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ui.SetTheme("mono")
	t.Cleanup(func() { ui.SetTheme("classic") })

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &harness{store: s}
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.err.Reset()
	return Run(context.Background(), args, Options{Store: h.store, Out: &h.out, Err: &h.err})
}

func TestHelpAndUnknown(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 0, h.run("help"))
	assert.Contains(t, h.out.String(), "Subcommands:")

	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Contains(t, h.err.String(), "unknown subcommand: frobnicate")
}

func TestAddAndList(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("add", "Buy", "milk"))
	assert.Contains(t, h.out.String(), "added #1")
	require.Equal(t, 0, h.run("add", "--done", "Call mom"))
	assert.Contains(t, h.out.String(), "added #2")

	require.Equal(t, 0, h.run("ls"))
	out := h.out.String()
	assert.Contains(t, out, "Todos  x 1  - 1  Total 2")
	assert.Contains(t, out, "#1 [ ] Buy milk")
	assert.Contains(t, out, "#2 [x] Call mom")
	assert.Less(t, bytes.Index(h.out.Bytes(), []byte("Call mom")), bytes.Index(h.out.Bytes(), []byte("Buy milk")))

	require.Equal(t, 0, h.run("ls", "done"))
	assert.Contains(t, h.out.String(), "Call mom")
	assert.NotContains(t, h.out.String(), "#1 [ ]")
	assert.Contains(t, h.out.String(), "Showing: Done")

	assert.Equal(t, 2, h.run("ls", "later"))
	assert.Equal(t, 2, h.run("add"))
	assert.Equal(t, 2, h.run("add", "   "))
}

func TestListGrouped(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Buy milk"))

	code := Run(context.Background(), []string{"ls"}, Options{Store: h.store, Out: &h.out, Err: &h.err, Group: true})
	require.Equal(t, 0, code)
	assert.Contains(t, h.out.String(), "Pending")
	assert.Contains(t, h.out.String(), "(none)")
}

func TestToggleEditRemove(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Buy milk"))

	require.Equal(t, 0, h.run("done", "1"))
	assert.Contains(t, h.out.String(), "completed #1")
	require.Equal(t, 0, h.run("get", "1"))
	assert.Contains(t, h.out.String(), "status:   done")
	assert.Contains(t, h.out.String(), "finished: ")

	require.Equal(t, 0, h.run("done", "1"))
	assert.Contains(t, h.out.String(), "reopened #1")
	require.Equal(t, 0, h.run("get", "1"))
	assert.NotContains(t, h.out.String(), "finished: ")

	require.Equal(t, 0, h.run("edit", "1", "Buy", "oat", "milk"))
	got, found, err := h.store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Buy oat milk", got.Text)
	assert.False(t, got.Done)

	require.Equal(t, 0, h.run("rm", "1"))
	assert.Contains(t, h.out.String(), "removed #1")
	assert.Equal(t, 1, h.run("rm", "1"))
	assert.Contains(t, h.err.String(), "no todo #1")
}

func TestBadAndMissingIDs(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.run("done", "abc"))
	assert.Contains(t, h.err.String(), "not a valid id")
	assert.Equal(t, 2, h.run("get", "0"))
	assert.Equal(t, 2, h.run("edit", "1"))
	assert.Equal(t, 1, h.run("done", "99"))
	assert.Equal(t, 1, h.run("get", "99"))
	assert.Equal(t, 1, h.run("edit", "99", "nothing"))
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Buy milk"))
	require.Equal(t, 0, h.run("add", "100% done"))

	require.Equal(t, 0, h.run("search", "MILK"))
	assert.Contains(t, h.out.String(), "Matches 1")
	assert.Contains(t, h.out.String(), "Buy milk")

	require.Equal(t, 0, h.run("search", "%"))
	assert.Contains(t, h.out.String(), "Matches 1")
	assert.Contains(t, h.out.String(), "100% done")

	assert.Equal(t, 2, h.run("search"))
}

func TestRange(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Buy milk"))
	require.Equal(t, 0, h.run("add", "--done", "Call mom"))

	require.Equal(t, 0, h.run("range", "--by", "created_at", "2000-01-01", "2100-01-01"))
	assert.Contains(t, h.out.String(), "Matches 2")

	require.Equal(t, 0, h.run("range", "2000-01-01", "2100-01-01"))
	assert.Contains(t, h.out.String(), "Matches 1")
	assert.Contains(t, h.out.String(), "Call mom")

	require.Equal(t, 0, h.run("range", "--by", "created_at", "--status", "undone", "2000-01-01", "2100-01-01"))
	assert.Contains(t, h.out.String(), "Matches 1")
	assert.Contains(t, h.out.String(), "Buy milk")

	require.Equal(t, 0, h.run("range", "1990-01-01", "1990-12-31"))
	assert.Contains(t, h.out.String(), "no todos")

	assert.Equal(t, 2, h.run("range", "--by", "due_at", "2000-01-01", "2100-01-01"))
	assert.Equal(t, 2, h.run("range", "--status", "maybe", "2000-01-01", "2100-01-01"))
	assert.Equal(t, 2, h.run("range", "2000-01-01"))
	assert.Equal(t, 2, h.run("range", "--nope", "a", "b"))
}

func TestDump(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Buy milk"))

	require.Equal(t, 0, h.run("dump"))
	out := h.out.String()
	assert.Contains(t, out, "schema version 3, 1 rows")
	assert.Contains(t, out, `id=1 done=false`)
	assert.Contains(t, out, `finished_at=NULL text="Buy milk"`)
}

func TestExportImport(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("add", "Buy milk"))
	require.Equal(t, 0, h.run("add", "--done", "Call mom"))

	path := filepath.Join(t.TempDir(), "out", "todos.json")
	require.Equal(t, 0, h.run("export", path))
	assert.Contains(t, h.out.String(), "exported 2 todos")

	other := newHarness(t)
	require.Equal(t, 0, other.run("import", path))
	assert.Contains(t, other.out.String(), "imported 2 todos")

	before, err := h.store.List(context.Background(), model.FilterAll)
	require.NoError(t, err)
	all, err := other.store.List(context.Background(), model.FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, texts(before), texts(all))
	assert.Equal(t, []string{"Call mom", "Buy milk"}, texts(all))
	var done int
	for _, td := range all {
		if td.Done {
			done++
			assert.NotNil(t, td.FinishedAt)
		}
	}
	assert.Equal(t, 1, done)

	assert.Equal(t, 1, other.run("import", filepath.Join(t.TempDir(), "missing.json")))
	assert.Equal(t, 2, other.run("export"))
}

func texts(todos []model.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		out = append(out, td.Text)
	}
	return out
}

func TestInitFailureExitsOne(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Close())

	assert.Equal(t, 1, h.run("ls"))
	assert.Contains(t, h.err.String(), "init:")
}
