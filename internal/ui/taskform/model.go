package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
)

const dateLayout = "2006-01-02"

// SavedMsg is dispatched when the backend accepted the task.
type SavedMsg struct {
	Task    model.Task
	Created bool
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

type saveFailedMsg struct{ err error }

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      model.TaskStatus
	priority    model.TaskPriority
	projectID   string
	assigneeID  string
	dueDate     string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	env      ui.Env
	form     *huh.Form
	fb       *formBindings
	editing  *model.Task
	projects []model.Project
	users    []model.User
	saving   bool
	err      string
	width    int
	height   int
}

// New creates a new task form model.
func New(env ui.Env, width, height int) Model {
	return Model{
		env:    env,
		fb:     &formBindings{status: model.StatusTodo},
		width:  width,
		height: height,
	}
}

// SetOptions sets the projects and users offered by the selectors.
func (m *Model) SetOptions(projects []model.Project, users []model.User) {
	m.projects = projects
	m.users = users
}

// StartCreate initializes the form for a new task.
func (m *Model) StartCreate(title string) tea.Cmd {
	m.editing = nil
	*m.fb = formBindings{title: title, status: model.StatusTodo}
	return m.start()
}

// StartEdit initializes the form from an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editing = &task
	*m.fb = formBindings{
		title:       task.Title,
		description: task.Description,
		status:      task.Status,
		priority:    task.Priority,
	}
	if task.HasProject() {
		m.fb.projectID = task.ProjectID.String()
	}
	if task.IsAssigned() {
		m.fb.assigneeID = task.AssigneeID.String()
	}
	if task.DueDate != nil {
		m.fb.dueDate = task.DueDate.Local().Format(dateLayout)
	}
	return m.start()
}

func (m *Model) start() tea.Cmd {
	m.err = ""
	m.saving = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if failed, ok := msg.(saveFailedMsg); ok {
		if api.IsAuthError(failed.err) {
			return m, ui.Fail(failed.err)
		}
		m.err = ui.ErrorText(failed.err)
		m.saving = false
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	if m.form == nil || m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.saving = true
		return m, m.save()
	case huh.StateAborted:
		return m, ui.Emit(CancelMsg{})
	}
	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editing != nil {
		titleText = fmt.Sprintf("Edit Task #%s", m.editing.ID)
	}

	parts := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1).Render(titleText),
	}
	if m.err != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.err))
	}
	if m.saving {
		parts = append(parts, theme.MutedStyle.Render("Saving..."))
	} else {
		parts = append(parts, m.form.View())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	statusOpts := make([]huh.Option[model.TaskStatus], len(model.Statuses))
	for i, s := range model.Statuses {
		statusOpts[i] = huh.NewOption(s.Label(), s)
	}

	priorityOpts := []huh.Option[model.TaskPriority]{huh.NewOption("None", model.TaskPriority(""))}
	for _, p := range model.Priorities {
		priorityOpts = append(priorityOpts, huh.NewOption(strings.ToLower(string(p)), p))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[model.TaskStatus]().
				Title("Status").
				Options(statusOpts...).
				Value(&m.fb.status),
			huh.NewSelect[model.TaskPriority]().
				Title("Priority").
				Options(priorityOpts...).
				Value(&m.fb.priority),
		),
		huh.NewGroup(
			m.projectField(),
			m.assigneeField(),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(validateOptionalDate),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m *Model) projectField() huh.Field {
	opts := []huh.Option[string]{huh.NewOption("No project", "")}
	found := m.fb.projectID == ""
	for _, p := range m.projects {
		if p.ID.String() == m.fb.projectID {
			found = true
		} else if !p.IsActive {
			continue
		}
		opts = append(opts, huh.NewOption(p.Icon()+" "+p.Name, p.ID.String()))
	}
	// Select snaps to the first option when the bound value is missing.
	if !found {
		opts = append(opts, huh.NewOption("Project #"+m.fb.projectID, m.fb.projectID))
	}
	return huh.NewSelect[string]().
		Title("Project").
		Options(opts...).
		Value(&m.fb.projectID)
}

func (m *Model) assigneeField() huh.Field {
	opts := []huh.Option[string]{huh.NewOption("Unassigned", "")}
	found := m.fb.assigneeID == ""
	for _, u := range m.users {
		found = found || u.ID.String() == m.fb.assigneeID
		opts = append(opts, huh.NewOption(u.DisplayName(), u.ID.String()))
	}
	if !found {
		opts = append(opts, huh.NewOption("User #"+m.fb.assigneeID, m.fb.assigneeID))
	}
	return huh.NewSelect[string]().
		Title("Assignee").
		Options(opts...).
		Value(&m.fb.assigneeID)
}

// input converts the bound values into a request body.
func (fb formBindings) input() (model.TaskInput, error) {
	in := model.TaskInput{
		Title:       fb.title,
		Description: fb.description,
		Status:      fb.status,
		Priority:    fb.priority,
		ProjectID:   model.IDPtr(model.ID(fb.projectID)),
		AssigneeID:  model.IDPtr(model.ID(fb.assigneeID)),
	}
	if s := strings.TrimSpace(fb.dueDate); s != "" {
		due, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return in, fmt.Errorf("invalid due date %q, use YYYY-MM-DD", s)
		}
		in.DueDate = &due
	}
	return in, nil
}

func (m Model) save() tea.Cmd {
	env := m.env
	fb := *m.fb
	editing := m.editing
	return func() tea.Msg {
		in, err := fb.input()
		if err != nil {
			return saveFailedMsg{err: err}
		}

		ctx, cancel := env.Context()
		defer cancel()

		if editing == nil {
			task, err := env.Service.CreateTask(ctx, in)
			if err != nil {
				return saveFailedMsg{err: err}
			}
			return SavedMsg{Task: task, Created: true}
		}

		// Assignee and project have their own endpoints, which also clear.
		assignee, project := in.AssigneeID, in.ProjectID
		in.AssigneeID, in.ProjectID = nil, nil
		task, err := env.Service.UpdateTask(ctx, editing.ID, in)
		if err != nil {
			return saveFailedMsg{err: err}
		}
		if !sameRef(editing.AssigneeID, assignee) {
			if task, err = env.Service.Assign(ctx, editing.ID, assignee); err != nil {
				return saveFailedMsg{err: err}
			}
		}
		if !sameRef(editing.ProjectID, project) {
			if task, err = env.Service.AssignProject(ctx, editing.ID, project); err != nil {
				return saveFailedMsg{err: err}
			}
		}
		return SavedMsg{Task: task}
	}
}

func sameRef(a, b *model.ID) bool {
	switch {
	case a == nil || a.IsZero():
		return b == nil || b.IsZero()
	case b == nil:
		return false
	default:
		return *a == *b
	}
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
