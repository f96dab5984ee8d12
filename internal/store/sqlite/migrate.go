package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one step of the schema history. Required steps abort Init on
// failure; the rest are logged and retried on the next Init.
type migration struct {
	version  int
	name     string
	required bool
	apply    func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, name: "create_todos", required: true, apply: createTodos},
	{version: 2, name: "add_finished_at", apply: addFinishedAt},
	{version: 3, name: "index_finished_at", apply: indexFinishedAt},
}

// LatestSchemaVersion is the version a fully migrated database reports.
var LatestSchemaVersion = migrations[len(migrations)-1].version

func createTodos(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS todos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			done INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT (datetime('now')),
			finished_at DATETIME
		);`)
	return err
}

// addFinishedAt upgrades tables created before finished_at existed.
func addFinishedAt(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM pragma_table_info('todos');`)
	if err != nil {
		return fmt.Errorf("table info: %w", err)
	}
	has := false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("scan column: %w", err)
		}
		if name == "finished_at" {
			has = true
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("table info rows: %w", err)
	}
	rows.Close()

	if has {
		return nil
	}
	_, err = tx.ExecContext(ctx, `ALTER TABLE todos ADD COLUMN finished_at DATETIME;`)
	return err
}

func indexFinishedAt(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_todos_finished_at ON todos(finished_at);`)
	return err
}

// Init brings the schema up to date. It is safe to call on every start.
func (s *Store) Init(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("init: db is nil")
	}

	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("init: create schema_migrations: %w", err)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := s.applyMigration(ctx, m)
		if err == nil {
			s.log.Debug("applied migration", "version", m.version, "name", m.name)
			continue
		}
		if m.required {
			return fmt.Errorf("init: %s: %w", m.name, err)
		}
		s.log.Warn("migration skipped", "version", m.version, "name", m.name, "err", err)
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations;`)
	if err != nil {
		return nil, fmt.Errorf("read versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("versions rows: %w", err)
	}
	return applied, nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.apply(ctx, tx); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES (?);`, m.version)
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, 0 before Init.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations';`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("schema version: lookup table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v int
	err = s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("schema version: read: %w", err)
	}
	return v, nil
}
