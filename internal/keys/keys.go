package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Filters
	FilterStatus   key.Binding
	FilterProject  key.Binding
	FilterAssignee key.Binding
	ClearFilters   key.Binding

	// Task actions
	New         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Take        key.Binding
	Assign      key.Binding
	SetProject  key.Binding
	StatusTodo  key.Binding
	StatusDoing key.Binding
	StatusDone  key.Binding
	StatusBlock key.Binding
	CycleStatus key.Binding

	// Managers
	Projects key.Binding
	Meetings key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		FilterStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "filter status"),
		),
		FilterProject: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "filter project"),
		),
		FilterAssignee: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "filter assignee"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Take: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "take task"),
		),
		Assign: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "assign"),
		),
		SetProject: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "set project"),
		),
		StatusTodo: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "to do"),
		),
		StatusDoing: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "in progress"),
		),
		StatusDone: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "done"),
		),
		StatusBlock: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "blocked"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next status"),
		),
		Projects: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "projects"),
		),
		Meetings: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "meetings"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.New,
		k.FilterStatus, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Command, k.Help, k.Refresh, k.Projects, k.Meetings},
		{k.FilterStatus, k.FilterProject, k.FilterAssignee, k.ClearFilters},
		{k.New, k.Edit, k.Delete, k.Take, k.Assign, k.SetProject},
		{k.StatusTodo, k.StatusDoing, k.StatusDone, k.StatusBlock, k.CycleStatus},
	}
}
