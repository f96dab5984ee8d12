package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down   key.Binding
	Add, Edit  key.Binding
	Toggle     key.Binding
	Delete     key.Binding
	NextFilter key.Binding
	All        key.Binding
	Done       key.Binding
	Undone     key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	Confirm    key.Binding
	Deny       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
	ToggleHelp key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		NextFilter: key.NewBinding(key.WithKeys("f", "tab"), key.WithHelp("f/tab", "filter")),
		All:        key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		Done:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "done")),
		Undone:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "undone")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Confirm:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "delete")),
		Deny:       key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "keep")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		ToggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	}
}

// ShortHelp and FullHelp make keyMap a help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.NextFilter, k.Quit, k.ToggleHelp}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Add, k.Edit, k.Toggle, k.Delete},
		{k.NextFilter, k.All, k.Done, k.Undone},
		{k.Quit, k.ToggleHelp},
	}
}

// inputHelp is shown while composing or editing.
type inputHelp struct{ k keyMap }

func (h inputHelp) ShortHelp() []key.Binding  { return []key.Binding{h.k.Submit, h.k.Cancel} }
func (h inputHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// confirmHelp is shown while a delete awaits confirmation.
type confirmHelp struct{ k keyMap }

func (h confirmHelp) ShortHelp() []key.Binding  { return []key.Binding{h.k.Confirm, h.k.Deny} }
func (h confirmHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }
