package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/sqltodo/internal/model"
)

// ErrEmptyText is returned when a todo would be stored with blank text.
var ErrEmptyText = errors.New("todo text is empty")

// Store provides SQLite-backed persistence for todos.
type Store struct {
	db  *sql.DB
	log *log.Logger
}

const todoColumns = `id, text, done, created_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(r rowScanner) (model.Todo, error) {
	var (
		t        model.Todo
		done     int64
		created  timestamp
		finished timestamp
	)
	if err := r.Scan(&t.ID, &t.Text, &done, &created, &finished); err != nil {
		return model.Todo{}, err
	}
	t.Done = done != 0
	t.CreatedAt = created.Time
	t.FinishedAt = finished.ptr()
	return t, nil
}

func (s *Store) queryTodos(ctx context.Context, op, query string, args ...any) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return todos, nil
}

func statusClause(f model.Filter) string {
	switch f {
	case model.FilterDone:
		return "done = 1"
	case model.FilterUndone:
		return "done = 0"
	}
	return ""
}

// List returns the todos matching status, newest first.
func (s *Store) List(ctx context.Context, status model.Filter) ([]model.Todo, error) {
	q := `SELECT ` + todoColumns + ` FROM todos`
	if c := statusClause(status); c != "" {
		q += ` WHERE ` + c
	}
	q += ` ORDER BY id DESC;`
	return s.queryTodos(ctx, "list todos", q)
}

// Get returns the todo with id. A missing row is reported with found=false.
func (s *Store) Get(ctx context.Context, id int64) (model.Todo, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ? LIMIT 1;`, id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, false, nil
	}
	if err != nil {
		return model.Todo{}, false, fmt.Errorf("get todo: scan: %w", err)
	}
	return t, true, nil
}

// Add inserts a todo and returns it as stored. When done is true the todo is
// finished at insert time.
func (s *Store) Add(ctx context.Context, text string, done bool) (model.Todo, error) {
	if strings.TrimSpace(text) == "" {
		return model.Todo{}, fmt.Errorf("add todo: %w", ErrEmptyText)
	}

	q := `INSERT INTO todos (text, done) VALUES (?, 0) RETURNING ` + todoColumns + `;`
	if done {
		q = `INSERT INTO todos (text, done, finished_at) VALUES (?, 1, datetime('now')) RETURNING ` + todoColumns + `;`
	}
	t, err := scanTodo(s.db.QueryRowContext(ctx, q, text))
	if err != nil {
		return model.Todo{}, fmt.Errorf("add todo: insert: %w", err)
	}
	return t, nil
}

// Update rewrites the fields set in p. Changing done also sets or clears
// finished_at. An empty patch executes nothing and reports found=false, as
// does an id with no row.
func (s *Store) Update(ctx context.Context, id int64, p model.Patch) (model.Todo, bool, error) {
	if p.Empty() {
		return model.Todo{}, false, nil
	}

	var (
		sets []string
		args []any
	)
	if p.Text != nil {
		if strings.TrimSpace(*p.Text) == "" {
			return model.Todo{}, false, fmt.Errorf("update todo: %w", ErrEmptyText)
		}
		sets = append(sets, "text = ?")
		args = append(args, *p.Text)
	}
	if p.Done != nil {
		if *p.Done {
			sets = append(sets, "done = 1", "finished_at = datetime('now')")
		} else {
			sets = append(sets, "done = 0", "finished_at = NULL")
		}
	}
	args = append(args, id)

	q := `UPDATE todos SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + todoColumns + `;`
	t, err := scanTodo(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, false, nil
	}
	if err != nil {
		return model.Todo{}, false, fmt.Errorf("update todo: %w", err)
	}
	return t, true, nil
}

// Delete removes the todo with id. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete todo: rows affected: %w", err)
	}
	return n > 0, nil
}

// Range returns todos whose opts.By timestamp is set and lies within
// [start, end] inclusive. Boundaries are any string SQLite's datetime()
// understands, e.g. "2025-01-01" or "2025-01-01 13:00:00".
func (s *Store) Range(ctx context.Context, start, end string, opts model.RangeOptions) ([]model.Todo, error) {
	var col string
	switch opts.By {
	case "", model.ByFinishedAt:
		col = "finished_at"
	case model.ByCreatedAt:
		col = "created_at"
	default:
		return nil, fmt.Errorf("range todos: unknown time field %q", opts.By)
	}

	q := `SELECT ` + todoColumns + ` FROM todos
		WHERE ` + col + ` IS NOT NULL AND ` + col + ` BETWEEN datetime(?) AND datetime(?)`
	if c := statusClause(opts.Status); c != "" {
		q += ` AND ` + c
	}
	q += ` ORDER BY id DESC;`
	return s.queryTodos(ctx, "range todos", q, start, end)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns todos whose text contains q. Matching follows SQLite LIKE,
// so it ignores ASCII case.
func (s *Store) Search(ctx context.Context, q string) ([]model.Todo, error) {
	pattern := "%" + likeEscaper.Replace(q) + "%"
	return s.queryTodos(ctx, "search todos",
		`SELECT `+todoColumns+` FROM todos WHERE text LIKE ? ESCAPE '\' ORDER BY id DESC;`, pattern)
}

// Count returns how many todos are done and pending.
func (s *Store) Count(ctx context.Context) (done, pending int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(done = 1), 0), COALESCE(SUM(done = 0), 0) FROM todos;`).Scan(&done, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("count todos: %w", err)
	}
	return done, pending, nil
}

// Import inserts todos in a single transaction, keeping their text, state
// and timestamps but not their ids. Rows go in oldest first (created_at,
// then original id) so the newest todo gets the highest new id whatever
// the input order. finished_at is re-derived from done where the two
// disagree. It returns the number of rows inserted.
func (s *Store) Import(ctx context.Context, todos []model.Todo) (int, error) {
	todos = slices.Clone(todos)
	slices.SortStableFunc(todos, func(a, b model.Todo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("import todos: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO todos (text, done, created_at, finished_at)
		VALUES (?, ?, COALESCE(?, datetime('now')), CASE WHEN ? = 1 THEN COALESCE(?, datetime('now')) ELSE NULL END);`)
	if err != nil {
		return 0, fmt.Errorf("import todos: prepare: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, t := range todos {
		if strings.TrimSpace(t.Text) == "" {
			s.log.Warn("import: skipping todo with empty text", "id", t.ID)
			continue
		}
		var created, finished any
		if !t.CreatedAt.IsZero() {
			created = FormatTime(t.CreatedAt)
		}
		if t.FinishedAt != nil {
			finished = FormatTime(*t.FinishedAt)
		}
		done := 0
		if t.Done {
			done = 1
		}
		if _, err := stmt.ExecContext(ctx, t.Text, done, created, done, finished); err != nil {
			return 0, fmt.Errorf("import todos: insert %q: %w", t.Text, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("import todos: commit: %w", err)
	}
	return n, nil
}
