package tasklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/filter"
	"github.com/nhle/teamflow/internal/keys"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
)

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID model.ID
}

// StatusFilterChangedMsg asks the parent to re-query tasks with the status
// sent to the server.
type StatusFilterChangedMsg struct {
	Status model.TaskStatus
}

// Scope selects which server-side task list the dashboard shows.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeMine
	ScopeWeek
)

func (s Scope) title() string {
	switch s {
	case ScopeMine:
		return "My tasks"
	case ScopeWeek:
		return "Due this week"
	default:
		return "Tasks"
	}
}

// Model is the dashboard: stats bar, filter line and task list.
type Model struct {
	list     list.Model
	keys     *keys.KeyMap
	scope    Scope
	criteria filter.Criteria
	tasks    []model.Task
	users    []model.User
	projects []model.Project
	stats    model.Stats
	loaded   bool
	width    int
	height   int
}

// chromeHeight is the stats bar plus the filter line.
const chromeHeight = 2

// New creates a new task list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-chromeHeight)
	l.Title = ScopeAll.title()
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns nil; data arrives through the poller.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.TasksMsg:
		m.tasks = msg.Tasks
		m.loaded = true
		cmd := m.refreshItems()
		return m, cmd

	case ui.StatsMsg:
		m.stats = msg.Stats
		return m, nil

	case ui.UsersMsg:
		m.users = msg.Users
		cmd := m.refreshItems()
		return m, cmd

	case ui.ProjectsMsg:
		m.projects = msg.Projects
		cmd := m.refreshItems()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, ui.Emit(SelectedTaskMsg{TaskID: task.ID})

	case key.Matches(msg, m.keys.FilterStatus):
		next := filter.Next(filter.StatusOptions(), string(m.criteria.Status))
		m.criteria.Status = model.TaskStatus(next)
		cmd := m.refreshItems()
		return m, tea.Batch(cmd, ui.Emit(StatusFilterChangedMsg{Status: m.criteria.Status}))

	case key.Matches(msg, m.keys.FilterProject):
		m.criteria.ProjectID = filter.Next(filter.ProjectOptions(m.projects), m.criteria.ProjectID)
		cmd := m.refreshItems()
		return m, cmd

	case key.Matches(msg, m.keys.FilterAssignee):
		m.criteria.AssigneeID = filter.Next(filter.AssigneeOptions(m.users), m.criteria.AssigneeID)
		cmd := m.refreshItems()
		return m, cmd

	case key.Matches(msg, m.keys.ClearFilters):
		return m.ClearFilters()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// ClearFilters drops every constraint.
func (m Model) ClearFilters() (Model, tea.Cmd) {
	statusChanged := m.criteria.Status != ""
	m.criteria = filter.Criteria{}
	cmd := m.refreshItems()
	if statusChanged {
		cmd = tea.Batch(cmd, ui.Emit(StatusFilterChangedMsg{}))
	}
	return m, cmd
}

// SetScope switches between all, mine and this week's tasks. The task list
// is emptied until the parent delivers the new result.
func (m *Model) SetScope(s Scope) tea.Cmd {
	if m.scope == s {
		return nil
	}
	m.scope = s
	m.list.Title = s.title()
	m.tasks = nil
	m.loaded = false
	return m.refreshItems()
}

// Scope returns the current server-side scope.
func (m Model) Scope() Scope { return m.scope }

// Criteria returns the active filter.
func (m Model) Criteria() filter.Criteria { return m.criteria }

// Tasks returns the last task list received from the server.
func (m Model) Tasks() []model.Task { return m.tasks }

// Users returns the last user directory received.
func (m Model) Users() []model.User { return m.users }

// Projects returns the last project list received.
func (m Model) Projects() []model.Project { return m.projects }

// Visible returns the tasks that pass the active filter.
func (m Model) Visible() []model.Task {
	return filter.Apply(m.tasks, m.criteria)
}

// SelectedTask returns the highlighted task.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

func (m *Model) refreshItems() tea.Cmd {
	visible := m.Visible()
	items := make([]list.Item, len(visible))
	for i, t := range visible {
		items[i] = TaskItem{
			Task:     t,
			Project:  ui.ProjectLabel(t, m.projects),
			Assignee: ui.AssigneeName(t, m.users),
		}
	}
	return m.list.SetItems(items)
}

// View renders the dashboard.
func (m Model) View() string {
	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderStats(), m.renderFilters(), body)
}

func (m Model) renderStats() string {
	parts := []string{lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Total %d", m.stats.Total))}
	for _, s := range model.Statuses {
		parts = append(parts, theme.StatusStyle(s).
			Padding(0).
			Render(fmt.Sprintf("%s %s %d", theme.StatusIcon(s), s.Label(), m.stats.Count(s))))
	}
	return lipgloss.NewStyle().Padding(0, 1).Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderFilters() string {
	c := m.criteria
	text := fmt.Sprintf("status: %s | project: %s | assignee: %s",
		filter.LabelOf(filter.StatusOptions(), string(c.Status)),
		filter.LabelOf(filter.ProjectOptions(m.projects), c.ProjectID),
		filter.LabelOf(filter.AssigneeOptions(m.users), c.AssigneeID),
	)
	style := theme.MutedStyle
	if !c.IsZero() {
		style = lipgloss.NewStyle().Foreground(theme.ColorYellow)
	}
	return style.Padding(0, 1).Render(text)
}

// renderEmptyState shows guidance text when no tasks are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-chromeHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case !m.loaded:
		return style.Render("Loading tasks...")
	case !m.criteria.IsZero():
		return style.Render("No matching tasks.\nPress x to clear the filters.")
	default:
		return style.Render("No tasks yet.\n\nPress n to create one.")
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-chromeHeight)
}
