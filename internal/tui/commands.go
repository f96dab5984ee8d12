package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/sqltodo/internal/model"
)

// Store is the persistence surface the list screen needs.
type Store interface {
	Init(ctx context.Context) error
	List(ctx context.Context, status model.Filter) ([]model.Todo, error)
	Add(ctx context.Context, text string, done bool) (model.Todo, error)
	Update(ctx context.Context, id int64, p model.Patch) (model.Todo, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// loadedMsg carries a full listing. seq identifies the request so that
// replies to superseded loads can be dropped.
type loadedMsg struct {
	seq   int
	items []model.Todo
	err   error
}

// addedMsg reports an Add. text is the submitted draft, handed back to
// the input box if the write fails.
type addedMsg struct {
	text string
	todo model.Todo
	err  error
}

// updatedMsg reports an Update. fromDraft marks text edits submitted from
// the input box; text is what was submitted.
type updatedMsg struct {
	id        int64
	text      string
	todo      model.Todo
	found     bool
	fromDraft bool
	err       error
}

type deletedMsg struct {
	id  int64
	err error
}

func initCmd(ctx context.Context, s Store, seq int, f model.Filter) tea.Cmd {
	return func() tea.Msg {
		if err := s.Init(ctx); err != nil {
			return loadedMsg{seq: seq, err: fmt.Errorf("init store: %w", err)}
		}
		items, err := s.List(ctx, f)
		return loadedMsg{seq: seq, items: items, err: err}
	}
}

func loadCmd(ctx context.Context, s Store, seq int, f model.Filter) tea.Cmd {
	return func() tea.Msg {
		items, err := s.List(ctx, f)
		return loadedMsg{seq: seq, items: items, err: err}
	}
}

func addCmd(ctx context.Context, s Store, text string) tea.Cmd {
	return func() tea.Msg {
		t, err := s.Add(ctx, text, false)
		return addedMsg{text: text, todo: t, err: err}
	}
}

func updateCmd(ctx context.Context, s Store, id int64, p model.Patch, fromDraft bool) tea.Cmd {
	return func() tea.Msg {
		t, found, err := s.Update(ctx, id, p)
		msg := updatedMsg{id: id, todo: t, found: found, fromDraft: fromDraft, err: err}
		if p.Text != nil {
			msg.text = *p.Text
		}
		return msg
	}
}

func deleteCmd(ctx context.Context, s Store, id int64) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Delete(ctx, id)
		return deletedMsg{id: id, err: err}
	}
}
