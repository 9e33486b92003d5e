package projectmgr

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
	"github.com/nhle/teamflow/internal/ui/confirm"
)

// CloseMsg signals the parent to close the project view.
type CloseMsg struct{}

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeSaving
	modeConfirmDelete
)

type formBindings struct {
	name        string
	description string
	emoji       string
	active      bool
}

type projectSavedMsg struct {
	project model.Project
	created bool
	err     error
}

// Model is the Bubble Tea model for project management.
type Model struct {
	env         ui.Env
	mode        projectMode
	projects    []model.Project
	counts      map[model.ID]int
	selectedIdx int
	editingID   model.ID
	form        *huh.Form
	confirm     confirm.Model
	fb          *formBindings
	statusMsg   string
	formErr     string
	width       int
	height      int
}

// New creates a new project manager model.
func New(env ui.Env, width, height int) Model {
	return Model{
		mode:   modeList,
		env:    env,
		fb:     &formBindings{},
		counts: make(map[model.ID]int),
		width:  width, height: height,
	}
}

// Init returns nil; projects arrive through the poller.
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the highlighted project.
func (m Model) Selected() (model.Project, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.projects) {
		return model.Project{}, false
	}
	return m.projects[m.selectedIdx], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ui.ProjectsMsg:
		m.projects = msg.Projects
		if m.selectedIdx >= len(m.projects) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.projects) - 1
		}
		return m, nil

	case ui.TasksMsg:
		m.counts = make(map[model.ID]int)
		for _, t := range msg.Tasks {
			if t.HasProject() {
				m.counts[*t.ProjectID]++
			}
		}
		return m, nil

	case projectSavedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m, ui.Fail(msg.err)
			}
			m.formErr = ui.ErrorText(msg.err)
			m.form = m.buildForm()
			m.mode = modeForm
			return m, m.form.Init()
		}
		if msg.created {
			m.statusMsg = fmt.Sprintf("Project %q created", msg.project.Name)
		} else {
			m.statusMsg = fmt.Sprintf("Project %q saved", msg.project.Name)
		}
		m.mode = modeList
		return m, nil

	case confirm.DeletedMsg:
		m.statusMsg = fmt.Sprintf("Project #%s deleted", msg.Deletion.ID)
		m.mode = modeList
		return m, nil

	case confirm.CancelledMsg:
		m.mode = modeList
		return m, nil

	case confirm.FailedMsg:
		m.mode = modeList
		return m, ui.Fail(msg.Err)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.env.Keys
	switch {
	case key.Matches(msg, k.Back):
		return m, ui.Emit(CloseMsg{})

	case key.Matches(msg, k.Down):
		if len(m.projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.projects)
		}
		return m, nil

	case key.Matches(msg, k.Up):
		if len(m.projects) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.projects) - 1
			}
		}
		return m, nil

	case key.Matches(msg, k.New):
		m.editingID = ""
		*m.fb = formBindings{emoji: model.DefaultProjectIcon, active: true}
		return m.openForm()

	case key.Matches(msg, k.Edit):
		p, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.editingID = p.ID
		*m.fb = formBindings{
			name:        p.Name,
			description: p.Description,
			emoji:       p.Emoji,
			active:      p.IsActive,
		}
		return m.openForm()

	case msg.String() == "a":
		p, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.toggleActive(p)

	case key.Matches(msg, k.Delete):
		p, ok := m.Selected()
		if !ok {
			return m, nil
		}
		d := m.env.Service.RequestDelete(service.KindProject, p.ID, p.Name)
		m.confirm = confirm.New(m.env, d, m.width, m.height)
		m.mode = modeConfirmDelete
		return m, m.confirm.Init()
	}
	return m, nil
}

func (m Model) openForm() (Model, tea.Cmd) {
	m.formErr = ""
	m.statusMsg = ""
	m.form = m.buildForm()
	m.mode = modeForm
	return m, m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Emoji").
				Placeholder(model.DefaultProjectIcon).
				Value(&m.fb.emoji),
			huh.NewConfirm().
				Title("Active?").
				Affirmative("Active").
				Negative("Inactive").
				Value(&m.fb.active),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeSaving
		return m, m.saveProject()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the project manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm()
	case modeSaving:
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.MutedStyle.Render("Saving..."))
	case modeConfirmDelete:
		return m.confirm.View()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n\n")

	if len(m.projects) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No projects yet. Press 'n' to create one."))
	} else {
		for i, p := range m.projects {
			label := fmt.Sprintf("%s  %s", p.Icon(), p.Name)
			if n := m.counts[p.ID]; n > 0 {
				label += theme.MutedStyle.Render(fmt.Sprintf("  %d tasks", n))
			}
			if !p.IsActive {
				label += " (inactive)"
			}

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
		if p, ok := m.Selected(); ok && p.Description != "" {
			b.WriteString("\n")
			b.WriteString(theme.MutedStyle.Render(p.Description))
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"n new | e edit | a activate/deactivate | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	content := m.form.View()
	if m.formErr != "" {
		content = theme.ErrorStyle.Render(m.formErr) + "\n" + content
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) saveProject() tea.Cmd {
	env := m.env
	fb := *m.fb
	editID := m.editingID
	return func() tea.Msg {
		in := model.ProjectInput{
			Name:        fb.name,
			Description: fb.description,
			Emoji:       strings.TrimSpace(fb.emoji),
			IsActive:    &fb.active,
		}
		ctx, cancel := env.Context()
		defer cancel()
		if editID == "" {
			p, err := env.Service.CreateProject(ctx, in)
			return projectSavedMsg{project: p, created: true, err: err}
		}
		p, err := env.Service.UpdateProject(ctx, editID, in)
		return projectSavedMsg{project: p, err: err}
	}
}

func (m Model) toggleActive(p model.Project) tea.Cmd {
	env := m.env
	return func() tea.Msg {
		active := !p.IsActive
		ctx, cancel := env.Context()
		defer cancel()
		updated, err := env.Service.UpdateProject(ctx, p.ID, model.ProjectInput{
			Name:        p.Name,
			Description: p.Description,
			Emoji:       p.Emoji,
			IsActive:    &active,
		})
		if err != nil {
			return ui.ErrorMsg{Err: err}
		}
		return projectSavedMsg{project: updated}
	}
}
