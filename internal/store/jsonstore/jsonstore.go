package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/sqltodo/internal/model"
)

// JSON snapshots of the todo table. Single file, human-readable, portable.
// Used for export/import; the SQLite database stays the source of truth.

// snapshot is the file layout. Version lets future readers reject files
// they do not understand.
type snapshot struct {
	Version int          `json:"version"`
	Todos   []model.Todo `json:"todos"`
}

const snapshotVersion = 1

// Load reads a snapshot. A missing file loads as an empty list.
func Load(path string) ([]model.Todo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Todo{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, snapshotVersion)
	}
	if snap.Todos == nil {
		snap.Todos = []model.Todo{}
	}
	return snap.Todos, nil
}

// Save writes todos to path, creating parent directories as needed.
func Save(path string, todos []model.Todo) error {
	if todos == nil {
		todos = []model.Todo{}
	}
	b, err := json.MarshalIndent(snapshot{Version: snapshotVersion, Todos: todos}, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
