package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/sqltodo/internal/logging"
	"github.com/idilsaglam/sqltodo/internal/model"
)

// Options configure the list screen.
type Options struct {
	Filter  model.Filter
	Logger  *log.Logger
	Context context.Context
}

// Model is the Bubble Tea model for the todo screen. Store calls run in
// commands; their replies are applied as deltas to items.
type Model struct {
	store Store
	log   *log.Logger
	ctx   context.Context

	list  list.Model
	draft textinput.Model
	help  help.Model
	keys  keyMap

	items     []model.Todo
	filter    model.Filter
	composing bool
	editingID *int64
	loading   bool
	loadSeq   int

	pendingDelete *model.Todo
	status        string
	statusErr     bool

	width, height int
}

func New(s Store, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Filter == "" {
		opts.Filter = model.FilterAll
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	// f and d belong to the filter and delete actions here.
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown")
	l.KeyMap.PrevPage.SetKeys("left", "h", "pgup")
	l.Styles.PaginationStyle = mutedStyle

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 500

	m := Model{
		store:   s,
		log:     opts.Logger,
		ctx:     opts.Context,
		list:    l,
		draft:   ti,
		help:    help.New(),
		keys:    defaultKeys(),
		filter:  opts.Filter,
		loading: true,
		loadSeq: 1,
		width:   80,
		height:  24,
	}
	m.list.SetSize(m.width-4, m.listHeight())
	return m
}

func (m Model) Init() tea.Cmd {
	return initCmd(m.ctx, m.store, m.loadSeq, m.filter)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(m.width-4, m.listHeight())
		return m, nil

	case loadedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.fail("load todos", msg.err)
			return m, nil
		}
		m.items = msg.items
		cmd := m.syncList()
		return m, cmd

	case addedMsg:
		if msg.err != nil {
			m.fail("add todo", msg.err)
			cmd := m.restoreDraft(msg.text, nil)
			return m, cmd
		}
		m.setStatus("added #%d", msg.todo.ID)
		if m.filter.Match(msg.todo) {
			m.items = append([]model.Todo{msg.todo}, m.items...)
			cmd := m.syncList()
			m.list.Select(0)
			return m, cmd
		}
		return m, nil

	case updatedMsg:
		if msg.err != nil {
			m.fail("update todo", msg.err)
			if msg.fromDraft {
				id := msg.id
				cmd := m.restoreDraft(msg.text, &id)
				return m, cmd
			}
			return m, nil
		}
		if !msg.found {
			m.setStatus("todo #%d no longer exists", msg.id)
			m.removeItem(msg.id)
			cmd := m.syncList()
			return m, cmd
		}
		m.applyUpdate(msg.todo)
		cmd := m.syncList()
		return m, cmd

	case deletedMsg:
		if msg.err != nil {
			m.fail("delete todo", msg.err)
			return m, nil
		}
		m.removeItem(msg.id)
		m.setStatus("deleted #%d", msg.id)
		cmd := m.syncList()
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch {
		case m.pendingDelete != nil:
			return m.updateConfirm(msg)
		case m.composing:
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	if m.composing {
		m.draft, cmd = m.draft.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.status = ""
		m.editingID = nil
		m.draft.SetValue("")
		m.draft.Placeholder = "What needs doing?"
		m.composing = true
		cmd := m.draft.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		id := t.ID
		m.status = ""
		m.editingID = &id
		m.draft.SetValue(t.Text)
		m.draft.CursorEnd()
		m.draft.Placeholder = "Todo text"
		m.composing = true
		cmd := m.draft.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		done := !t.Done
		return m, updateCmd(m.ctx, m.store, t.ID, model.Patch{Done: &done}, false)
	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pendingDelete = &t
		return m, nil
	case key.Matches(msg, m.keys.NextFilter):
		cmd := m.setFilter(m.filter.Next())
		return m, cmd
	case key.Matches(msg, m.keys.All):
		cmd := m.setFilter(model.FilterAll)
		return m, cmd
	case key.Matches(msg, m.keys.Done):
		cmd := m.setFilter(model.FilterDone)
		return m, cmd
	case key.Matches(msg, m.keys.Undone):
		cmd := m.setFilter(model.FilterUndone)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeDraft()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.draft.Value())
		if text == "" {
			return m, nil
		}
		editing := m.editingID
		m.closeDraft()
		if editing != nil {
			return m, updateCmd(m.ctx, m.store, *editing, model.Patch{Text: &text}, true)
		}
		return m, addCmd(m.ctx, m.store, text)
	}

	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		return m, deleteCmd(m.ctx, m.store, id)
	case key.Matches(msg, m.keys.Deny):
		m.pendingDelete = nil
	}
	return m, nil
}

// setFilter switches the active filter and reloads. Replies to earlier
// loads carry an older seq and are ignored.
func (m *Model) setFilter(f model.Filter) tea.Cmd {
	m.filter = f
	m.loadSeq++
	m.loading = true
	return loadCmd(m.ctx, m.store, m.loadSeq, f)
}

func (m *Model) applyUpdate(t model.Todo) {
	for i := range m.items {
		if m.items[i].ID != t.ID {
			continue
		}
		if m.filter.Match(t) {
			m.items[i] = t
		} else {
			m.items = append(m.items[:i], m.items[i+1:]...)
		}
		return
	}
}

func (m *Model) removeItem(id int64) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

func (m *Model) syncList() tea.Cmd {
	idx := m.list.Index()
	li := make([]list.Item, 0, len(m.items))
	for _, t := range m.items {
		li = append(li, todoItem{t})
	}
	cmd := m.list.SetItems(li)
	if idx >= len(li) {
		idx = len(li) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	return cmd
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.Todo, true
}

func (m *Model) closeDraft() {
	m.composing = false
	m.editingID = nil
	m.draft.SetValue("")
	m.draft.Blur()
}

// restoreDraft puts a failed submission back in the input box, unless
// the user has since started another draft or a delete prompt. Then the
// text is only named on the status line.
func (m *Model) restoreDraft(text string, editingID *int64) tea.Cmd {
	if m.composing || m.pendingDelete != nil {
		m.status += fmt.Sprintf(" (unsaved: %q)", text)
		return nil
	}
	m.editingID = editingID
	m.draft.SetValue(text)
	m.draft.CursorEnd()
	m.composing = true
	return m.draft.Focus()
}

func (m *Model) fail(op string, err error) {
	m.log.Error(op+" failed", "err", err)
	m.status = fmt.Sprintf("%s: %v", op, err)
	m.statusErr = true
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

// Items returns the todos currently shown, in display order.
func (m Model) Items() []model.Todo { return m.items }

// Filter returns the active filter.
func (m Model) Filter() model.Filter { return m.filter }
