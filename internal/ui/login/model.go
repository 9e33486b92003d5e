package login

import (
	"fmt"
	"net/mail"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
)

// LoggedInMsg is sent once the session holds an authenticated user.
type LoggedInMsg struct {
	User model.User
}

type loginFailedMsg struct{ err error }

type registeredMsg struct {
	username string
	password string
}

type mode int

const (
	modeLogin mode = iota
	modeRegister
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	password string
	email    string
	fullName string
}

// Model is the login and registration screen.
type Model struct {
	env     ui.Env
	mode    mode
	form    *huh.Form
	fb      *formBindings
	err     string
	notice  string
	pending bool
	width   int
	height  int
}

// New creates the login view.
func New(env ui.Env, width, height int) Model {
	m := Model{
		env:    env,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Reset rebuilds the login form, showing reason as the inline error.
func (m *Model) Reset(reason string) tea.Cmd {
	m.mode = modeLogin
	m.pending = false
	m.err = reason
	m.notice = ""
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginFailedMsg:
		m.pending = false
		m.notice = ""
		m.err = ui.ErrorText(msg.err)
		m.fb.password = ""
		m.form = m.buildForm()
		return m, m.form.Init()

	case registeredMsg:
		m.notice = fmt.Sprintf("Account %s created, signing in...", msg.username)
		return m, m.login(msg.username, msg.password)

	case tea.KeyMsg:
		if msg.String() == "ctrl+n" && !m.pending {
			if m.mode == modeLogin {
				m.mode = modeRegister
			} else {
				m.mode = modeLogin
			}
			m.err = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}

	if m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.pending = true
		m.err = ""
		if m.mode == modeRegister {
			return m, m.register()
		}
		return m, m.login(strings.TrimSpace(m.fb.username), m.fb.password)
	case huh.StateAborted:
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) login(username, password string) tea.Cmd {
	env := m.env
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		if err := env.Session.Login(ctx, username, password); err != nil {
			return loginFailedMsg{err: err}
		}
		return LoggedInMsg{User: *env.Session.User()}
	}
}

func (m Model) register() tea.Cmd {
	env := m.env
	reg := model.Registration{
		Username: strings.TrimSpace(m.fb.username),
		Email:    strings.TrimSpace(m.fb.email),
		FullName: strings.TrimSpace(m.fb.fullName),
		Password: m.fb.password,
	}
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		if _, err := env.Session.Register(ctx, reg); err != nil {
			return loginFailedMsg{err: err}
		}
		return registeredMsg{username: reg.Username, password: reg.Password}
	}
}

func (m Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Username").
			Value(&m.fb.username).
			Validate(required("username")),
	}
	if m.mode == modeRegister {
		fields = append(fields,
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Full name").
				Placeholder("optional").
				Value(&m.fb.fullName),
		)
	}
	fields = append(fields,
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(required("password")),
	)

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(ui.FormWidth(m.width) / 2).
		WithShowHelp(false)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateEmail(s string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

// View renders the login screen centred in the terminal.
func (m Model) View() string {
	title := "Sign in to TeamFlow"
	toggle := "ctrl+n create an account"
	if m.mode == modeRegister {
		title = "Create a TeamFlow account"
		toggle = "ctrl+n back to sign in"
	}

	parts := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1).Render(title),
		m.form.View(),
	}
	switch {
	case m.pending && m.notice != "":
		parts = append(parts, theme.MutedStyle.Render(m.notice))
	case m.pending:
		parts = append(parts, theme.MutedStyle.Render("Signing in..."))
	case m.err != "":
		parts = append(parts, theme.ErrorStyle.Render(m.err))
	}
	parts = append(parts, theme.HelpStyle.Render(toggle+" | ctrl+c quit"))

	box := theme.BorderStyle.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Error returns the inline error currently shown.
func (m Model) Error() string {
	return m.err
}
