package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	All      Name = "all"
	Mine     Name = "mine"
	Week     Name = "week"
	NewTask  Name = "new"
	Projects Name = "projects"
	Meetings Name = "meetings"
	Refresh  Name = "refresh"
	Clear    Name = "clear"
	Settings Name = "settings"
	Logout   Name = "logout"
	Quit     Name = "quit"
)

// Entry describes one palette command.
type Entry struct {
	Name    Name
	Aliases []string
	Help    string
}

// Commands lists every palette command in display order.
var Commands = []Entry{
	{Name: All, Help: "show every task"},
	{Name: Mine, Aliases: []string{"my"}, Help: "show tasks I created or am assigned"},
	{Name: Week, Help: "show tasks due this week"},
	{Name: NewTask, Aliases: []string{"add"}, Help: "create a task"},
	{Name: Projects, Aliases: []string{"p"}, Help: "manage projects"},
	{Name: Meetings, Aliases: []string{"m"}, Help: "manage meeting notes"},
	{Name: Refresh, Aliases: []string{"r"}, Help: "reload everything now"},
	{Name: Clear, Help: "clear all filters"},
	{Name: Settings, Aliases: []string{"config"}, Help: "edit connection and logging settings"},
	{Name: Logout, Help: "forget the stored session"},
	{Name: Quit, Aliases: []string{"q", "exit"}, Help: "quit"},
}

// CommandMsg is emitted when the user executes a known command.
type CommandMsg struct {
	Name Name
	Args []string
}

// UnknownMsg is emitted for input that matches no command.
type UnknownMsg struct {
	Input string
}

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Parse resolves palette input to a command. The command word is matched
// case-insensitively and accepts aliases; arguments keep their case.
func Parse(input string) (CommandMsg, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}
	word := strings.ToLower(fields[0])
	for _, c := range Commands {
		if string(c.Name) == word {
			return CommandMsg{Name: c.Name, Args: fields[1:]}, nil
		}
		for _, a := range c.Aliases {
			if a == word {
				return CommandMsg{Name: c.Name, Args: fields[1:]}, nil
			}
		}
	}
	return CommandMsg{}, fmt.Errorf("unknown command %q", word)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	suggestions := make([]string, len(Commands))
	for i, c := range Commands {
		suggestions[i] = string(c.Name)
	}
	ti.SetSuggestions(suggestions)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			input := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if input == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			cmd, err := Parse(input)
			if err != nil {
				return m, func() tea.Msg { return UnknownMsg{Input: input} }
			}
			return m, func() tea.Msg { return cmd }

		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
