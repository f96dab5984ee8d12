package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/sqltodo/internal/model"
	"github.com/idilsaglam/sqltodo/internal/ui"
)

// todoItem adapts model.Todo to list.Item.
type todoItem struct{ model.Todo }

func (i todoItem) FilterValue() string { return i.Text }

// itemDelegate renders one todo per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}

	var finished string
	if it.FinishedAt != nil {
		finished = " · finished " + it.FinishedAt.Local().Format("2006-01-02 15:04")
	}
	text := it.Text
	if room := m.Width() - 4 - lipgloss.Width(finished); room > 0 {
		text = ui.Truncate(text, room)
	}

	box := mutedStyle.Render(boxUnchecked)
	if it.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text+mutedStyle.Render(finished))
}

func (m Model) View() string {
	parts := []string{m.header(), m.filterBar()}

	if m.composing {
		title := "Add todo"
		if m.editingID != nil {
			title = fmt.Sprintf("Edit todo #%d", *m.editingID)
		}
		parts = append(parts, inputBoxStyle.Render(title+"\n"+m.draft.View()))
	}

	parts = append(parts, m.body())

	switch {
	case m.pendingDelete != nil:
		q := fmt.Sprintf("Delete %q? (y/n)", ui.Truncate(m.pendingDelete.Text, 40))
		parts = append(parts, errorStyle.Render(q), m.help.View(confirmHelp{m.keys}))
	case m.composing:
		parts = append(parts, m.statusLine(), m.help.View(inputHelp{m.keys}))
	default:
		parts = append(parts, m.statusLine(), m.help.View(m.keys))
	}
	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) header() string {
	var done, pending int
	for _, t := range m.items {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(m.items),
	)
}

func (m Model) filterBar() string {
	tabs := make([]string, 0, len(model.Filters))
	for i, f := range model.Filters {
		label := fmt.Sprintf("%d %s", i+1, f.Label())
		if f == m.filter {
			tabs = append(tabs, filterActiveStyle.Render(label))
		} else {
			tabs = append(tabs, filterStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ") + "\n"
}

func (m Model) body() string {
	if len(m.items) == 0 {
		if m.loading {
			return mutedStyle.Render("Loading…")
		}
		return mutedStyle.Render("No todos yet.")
	}
	m.list.SetSize(m.width-4, m.listHeight())
	return m.list.View()
}

// listHeight leaves room for the frame, header, filter bar and footer.
func (m Model) listHeight() int {
	h := m.height - 8
	if m.composing {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return mutedStyle.Render(m.status)
}
