package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/crossref"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
	"github.com/nhle/teamflow/internal/ui/confirm"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// EditMsg asks the parent to open the edit form for Task.
type EditMsg struct {
	Task model.Task
}

type taskLoadedMsg struct {
	id   model.ID
	task model.Task
	err  error
}

type actionDoneMsg struct {
	task   model.Task
	notice string
}

type mode int

const (
	modeView mode = iota
	modeConfirm
	modePickAssignee
	modePickProject
)

// Model is the task detail overlay. It holds only the task id and
// re-resolves the task from every fresh list result.
type Model struct {
	env      ui.Env
	viewport viewport.Model
	mode     mode
	taskID   model.ID
	task     *model.Task
	gone     bool
	tasks    []model.Task
	users    []model.User
	projects []model.Project
	confirm  confirm.Model
	picker   *huh.Form
	pick     *string
	width    int
	height   int
}

// New creates a new detail view model.
func New(env ui.Env, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		env:      env,
		viewport: vp,
		pick:     new(string),
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open shows task id, resolving it from tasks when present and from the
// backend otherwise.
func (m *Model) Open(id model.ID, tasks []model.Task) tea.Cmd {
	m.mode = modeView
	m.taskID = id
	m.task = nil
	m.gone = false
	m.viewport.GotoTop()
	m.tasks = tasks
	if t, ok := service.FindTask(tasks, id); ok {
		m.setTask(t)
		return nil
	}
	return m.fetch()
}

// TaskID returns the id of the task on display.
func (m Model) TaskID() model.ID {
	return m.taskID
}

// Task returns the last resolved copy of the task.
func (m Model) Task() (model.Task, bool) {
	if m.task == nil {
		return model.Task{}, false
	}
	return *m.task, true
}

func (m Model) fetch() tea.Cmd {
	env := m.env
	id := m.taskID
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		task, err := env.Service.Task(ctx, id)
		return taskLoadedMsg{id: id, task: task, err: err}
	}
}

func (m *Model) setTask(t model.Task) {
	m.task = &t
	m.gone = false
	m.viewport.SetContent(m.renderContent())
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.TasksMsg:
		m.tasks = msg.Tasks
		if t, ok := service.FindTask(msg.Tasks, m.taskID); ok {
			m.setTask(t)
			return m, nil
		}
		// Not in this list: it may be filtered out server-side or deleted.
		return m, m.fetch()

	case ui.UsersMsg:
		m.users = msg.Users
		m.rerender()
		return m, nil

	case ui.ProjectsMsg:
		m.projects = msg.Projects
		m.rerender()
		return m, nil

	case taskLoadedMsg:
		if msg.id != m.taskID {
			return m, nil
		}
		switch {
		case msg.err == nil:
			m.setTask(msg.task)
		case api.IsNotFound(msg.err):
			m.gone = true
			m.rerender()
		default:
			return m, ui.Fail(msg.err)
		}
		return m, nil

	case actionDoneMsg:
		if msg.task.ID == m.taskID {
			m.setTask(msg.task)
		}
		return m, ui.Notify(msg.notice)

	case confirm.DeletedMsg:
		m.mode = modeView
		return m, tea.Batch(
			ui.Emit(BackMsg{}),
			ui.Notify(fmt.Sprintf("Deleted %s #%s", msg.Deletion.Kind, msg.Deletion.ID)),
		)

	case confirm.CancelledMsg:
		m.mode = modeView
		return m, nil

	case confirm.FailedMsg:
		m.mode = modeView
		return m, ui.Fail(msg.Err)
	}

	switch m.mode {
	case modeConfirm:
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	case modePickAssignee, modePickProject:
		return m.updatePicker(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	k := m.env.Keys
	if key.Matches(msg, k.Back) {
		return m, ui.Emit(BackMsg{}), true
	}
	if m.task == nil || m.gone {
		return m, nil, false
	}
	task := *m.task

	switch {
	case key.Matches(msg, k.StatusTodo):
		return m, m.changeStatus(model.StatusTodo), true
	case key.Matches(msg, k.StatusDoing):
		return m, m.changeStatus(model.StatusDoing), true
	case key.Matches(msg, k.StatusDone):
		return m, m.changeStatus(model.StatusDone), true
	case key.Matches(msg, k.StatusBlock):
		return m, m.changeStatus(model.StatusBlocked), true
	case key.Matches(msg, k.CycleStatus):
		return m, m.changeStatus(nextStatus(task.Status)), true

	case key.Matches(msg, k.Edit):
		return m, ui.Emit(EditMsg{Task: task}), true

	case key.Matches(msg, k.Take):
		return m, m.take(), true

	case key.Matches(msg, k.Delete):
		d := m.env.Service.RequestDelete(service.KindTask, task.ID, task.Title)
		m.confirm = confirm.New(m.env, d, m.width, m.height)
		m.mode = modeConfirm
		return m, m.confirm.Init(), true

	case key.Matches(msg, k.Assign):
		*m.pick = ""
		if task.IsAssigned() {
			*m.pick = task.AssigneeID.String()
		}
		m.picker = m.buildPicker("Assign to", assigneeOptions(m.users))
		m.mode = modePickAssignee
		return m, m.picker.Init(), true

	case key.Matches(msg, k.SetProject):
		*m.pick = ""
		if task.HasProject() {
			*m.pick = task.ProjectID.String()
		}
		m.picker = m.buildPicker("Move to project", projectOptions(m.projects))
		m.mode = modePickProject
		return m, m.picker.Init(), true
	}
	return m, nil, false
}

// nextStatus returns the status after s in display order, wrapping.
func nextStatus(s model.TaskStatus) model.TaskStatus {
	for i, st := range model.Statuses {
		if st == s {
			return model.Statuses[(i+1)%len(model.Statuses)]
		}
	}
	return model.StatusTodo
}

func (m Model) buildPicker(title string, opts []huh.Option[string]) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(m.pick),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func assigneeOptions(users []model.User) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("Unassigned", "")}
	for _, u := range users {
		opts = append(opts, huh.NewOption(u.DisplayName(), u.ID.String()))
	}
	return opts
}

func projectOptions(projects []model.Project) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("No project", "")}
	for _, p := range projects {
		opts = append(opts, huh.NewOption(p.Icon()+" "+p.Name, p.ID.String()))
	}
	return opts
}

func (m Model) updatePicker(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.picker.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.picker = f
	}

	switch m.picker.State {
	case huh.StateCompleted:
		picked := model.IDPtr(model.ID(*m.pick))
		var action tea.Cmd
		if m.mode == modePickAssignee {
			action = m.assign(picked)
		} else {
			action = m.moveToProject(picked)
		}
		m.mode = modeView
		return m, action
	case huh.StateAborted:
		m.mode = modeView
		return m, nil
	}
	return m, cmd
}

func (m Model) run(notice string, fn func(ui.Env) (model.Task, error)) tea.Cmd {
	env := m.env
	return func() tea.Msg {
		task, err := fn(env)
		if err != nil {
			return ui.ErrorMsg{Err: err}
		}
		return actionDoneMsg{task: task, notice: notice}
	}
}

func (m Model) changeStatus(status model.TaskStatus) tea.Cmd {
	id := m.taskID
	notice := fmt.Sprintf("Task #%s is now %s", id, status.Label())
	return m.run(notice, func(env ui.Env) (model.Task, error) {
		ctx, cancel := env.Context()
		defer cancel()
		return env.Service.ChangeStatus(ctx, id, status)
	})
}

func (m Model) take() tea.Cmd {
	task := *m.task
	notice := fmt.Sprintf("Took task #%s", task.ID)
	return m.run(notice, func(env ui.Env) (model.Task, error) {
		ctx, cancel := env.Context()
		defer cancel()
		return env.Service.TakeTask(ctx, task, model.ID(env.CurrentUserID()))
	})
}

func (m Model) assign(userID *model.ID) tea.Cmd {
	id := m.taskID
	notice := fmt.Sprintf("Unassigned task #%s", id)
	if userID != nil {
		notice = fmt.Sprintf("Assigned task #%s", id)
	}
	return m.run(notice, func(env ui.Env) (model.Task, error) {
		ctx, cancel := env.Context()
		defer cancel()
		return env.Service.Assign(ctx, id, userID)
	})
}

func (m Model) moveToProject(projectID *model.ID) tea.Cmd {
	id := m.taskID
	notice := fmt.Sprintf("Removed task #%s from its project", id)
	if projectID != nil {
		notice = fmt.Sprintf("Moved task #%s", id)
	}
	return m.run(notice, func(env ui.Env) (model.Task, error) {
		ctx, cancel := env.Context()
		defer cancel()
		return env.Service.AssignProject(ctx, id, projectID)
	})
}

// View renders the detail view.
func (m Model) View() string {
	switch m.mode {
	case modeConfirm:
		return m.confirm.View()
	case modePickAssignee, modePickProject:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.picker.View())
	}

	center := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.gone:
		return center.Render(fmt.Sprintf("Task #%s no longer exists.\n\nPress esc to go back.", m.taskID))
	case m.task == nil:
		return center.Render("Loading task details...")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		theme.HelpStyle.Render("1-4/tab status | t take | A assign | o project | e edit | d delete | esc back"),
	)
}

func (m *Model) rerender() {
	if m.task != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(fmt.Sprintf("#%s %s", task.ID, task.Title)))

	statusBadge := theme.StatusStyle(task.Status).Render(theme.StatusIcon(task.Status) + " " + task.Status.Label())
	badges := []string{statusBadge}
	if task.Priority != "" {
		badges = append(badges, "  ", theme.PriorityStyle(task.Priority).Render(
			theme.PriorityIcon(task.Priority)+" "+strings.ToLower(string(task.Priority))))
	}
	if task.IsOverdue() {
		badges = append(badges, "  ", lipgloss.NewStyle().Foreground(theme.ColorRed).Bold(true).Render("OVERDUE"))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		if value == "" {
			value = theme.MutedStyle.Render("-")
		} else {
			value = valStyle.Render(value)
		}
		sections = append(sections, metaStyle.Render(label)+"  "+value)
	}

	row("Assignee:", ui.AssigneeName(*task, m.users))
	row("Project:", ui.ProjectLabel(*task, m.projects))
	row("Creator:", m.creatorName())
	if task.DueDate != nil {
		row("Due:", task.DueDate.Local().Format("2006-01-02"))
	}
	if !task.CreatedAt.IsZero() {
		row("Created:", task.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if !task.UpdatedAt.IsZero() {
		row("Updated:", task.UpdatedAt.Local().Format("2006-01-02 15:04")+" ("+ui.RelativeTime(task.UpdatedAt)+")")
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1).Render("Description"))

	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	if refs := crossref.MatchTaskRefs(task.ID, task.Description, m.tasks); len(refs) > 0 {
		sections = append(sections, "", lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Mentions"))
		for _, t := range refs {
			sections = append(sections, fmt.Sprintf("%s #%s %s",
				theme.StatusStyle(t.Status).Render(theme.StatusIcon(t.Status)), t.ID, t.Title))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) creatorName() string {
	if m.task.CreatorID.IsZero() {
		return ""
	}
	for _, u := range m.users {
		if u.ID == m.task.CreatorID {
			return u.DisplayName()
		}
	}
	return "#" + m.task.CreatorID.String()
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.rerender()
}
