package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
)

// DeletedMsg reports a confirmed deletion that the backend accepted.
type DeletedMsg struct {
	Deletion service.Deletion
}

// CancelledMsg reports that the user declined the deletion.
type CancelledMsg struct {
	Deletion service.Deletion
}

// FailedMsg reports a confirmed deletion that the backend rejected.
type FailedMsg struct {
	Deletion service.Deletion
	Err      error
}

// Model asks the user to confirm a staged deletion.
type Model struct {
	env      ui.Env
	deletion service.Deletion
	form     *huh.Form
	answer   *bool
	done     bool
	width    int
	height   int
}

// New builds the confirmation form for d. Nothing is sent to the backend
// unless the user answers yes.
func New(env ui.Env, d service.Deletion, width, height int) Model {
	answer := new(bool)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Description("This cannot be undone.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(answer),
		),
	).WithWidth(ui.FormWidth(width)).WithShowHelp(false)

	return Model{
		env:      env,
		deletion: d,
		form:     form,
		answer:   answer,
		width:    width,
		height:   height,
	}
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Deletion returns the staged deletion.
func (m Model) Deletion() service.Deletion {
	return m.deletion
}

// Update handles messages for the confirmation. Once answered it ignores
// further input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.done = true
		if *m.answer {
			return m, m.Confirm()
		}
		return m, ui.Emit(CancelledMsg{Deletion: m.deletion})
	case huh.StateAborted:
		m.done = true
		return m, ui.Emit(CancelledMsg{Deletion: m.deletion})
	}
	return m, cmd
}

// Confirm issues the delete.
func (m Model) Confirm() tea.Cmd {
	env := m.env
	d := m.deletion
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		if err := env.Service.ConfirmDelete(ctx, d); err != nil {
			return FailedMsg{Deletion: d, Err: err}
		}
		return DeletedMsg{Deletion: d}
	}
}

// View renders the confirmation.
func (m Model) View() string {
	prompt := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(m.deletion.Prompt())
	return lipgloss.NewStyle().Padding(1, 2).Render(prompt + "\n" + m.form.View())
}
