package config

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/theme"
	"github.com/nhle/teamflow/internal/ui"
)

// ConfigMode represents the current state of the settings view.
type ConfigMode int

const (
	ModeSummary        ConfigMode = iota // Current settings
	ModeForm                             // Editing
	ModeValidating                       // Testing connection
	ModeValidateResult                   // Show validation result
)

// ConfigDoneMsg signals the settings view should close.
type ConfigDoneMsg struct{}

// ValidateResultMsg carries the result of a backend health check.
type ValidateResultMsg struct {
	URL string
	Err error
}

type configSavedMsg struct {
	cfg model.AppConfig
	err error
}

type formBindings struct {
	baseURL  string
	poll     string
	timeout  string
	logLevel string
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Model is the Bubble Tea model for the settings view. Saved settings are
// written to the config file and take effect on the next start.
type Model struct {
	env     ui.Env
	mode    ConfigMode
	form    *huh.Form
	fb      *formBindings
	pending model.AppConfig

	spinner     spinner.Model
	validURL    string
	validError  error
	statusMsg   string
	statusIsErr bool

	width, height int
}

// New creates a new settings view model.
func New(env ui.Env, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		env:     env,
		mode:    ModeSummary,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Init returns nil.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open resets the view to the summary of the current settings.
func (m *Model) Open() {
	m.mode = ModeSummary
	m.form = nil
	m.validError = nil
	m.statusMsg = ""
}

// Mode returns the current mode.
func (m Model) Mode() ConfigMode {
	return m.mode
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ValidateResultMsg:
		if m.mode != ModeValidating || msg.URL != m.pending.API.BaseURL {
			return m, nil
		}
		m.validURL = msg.URL
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case configSavedMsg:
		m.mode = ModeSummary
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			m.statusIsErr = true
			return m, nil
		}
		*m.env.Config = msg.cfg
		m.statusMsg = fmt.Sprintf("Saved to %s. Restart teamflow to apply.", m.env.ConfigPath)
		m.statusIsErr = false
		return m, ui.Notify("Settings saved")

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.mode == ModeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

// handleKeyMsg processes key messages based on the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeSummary:
		switch {
		case key.Matches(msg, m.env.Keys.Back):
			return m, ui.Emit(ConfigDoneMsg{})
		case key.Matches(msg, m.env.Keys.Edit):
			cmd := m.startForm()
			return m, cmd
		}
		return m, nil

	case ModeForm:
		return m.updateForm(msg)

	case ModeValidating:
		// Only allow escape during validation
		if msg.String() == "esc" {
			m.mode = ModeSummary
			return m, nil
		}
		return m, nil

	case ModeValidateResult:
		return m.handleValidateResultKeys(msg)
	}
	return m, nil
}

// handleValidateResultKeys processes key events on the validation result screen.
func (m Model) handleValidateResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "s":
		if m.validError != nil && msg.String() == "enter" {
			return m, nil
		}
		return m, m.save()
	case "r":
		if m.validError != nil {
			cmd := m.validate()
			return m, cmd
		}
		return m, nil
	case "e":
		cmd := m.startForm()
		return m, cmd
	case "esc":
		m.mode = ModeSummary
		m.validError = nil
		return m, nil
	}
	return m, nil
}

// --- Form ---

func (m *Model) startForm() tea.Cmd {
	if m.env.Config == nil {
		m.statusMsg = "No configuration loaded"
		m.statusIsErr = true
		return nil
	}
	cfg := *m.env.Config
	*m.fb = formBindings{
		baseURL:  cfg.API.BaseURL,
		poll:     strconv.Itoa(cfg.Display.PollIntervalSec),
		timeout:  strconv.Itoa(cfg.API.RequestTimeoutSec),
		logLevel: cfg.Log.Level,
	}
	m.statusMsg = ""
	m.mode = ModeForm
	m.form = m.buildForm()
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	levels := make([]huh.Option[string], 0, len(logLevels))
	for _, l := range logLevels {
		levels = append(levels, huh.NewOption(l, l))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("TeamFlow server root; requests go to /api under it").
				Placeholder("http://localhost:8180").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Refresh interval (seconds)").
				Value(&m.fb.poll).
				Validate(validateSeconds("Refresh interval")),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&m.fb.timeout).
				Validate(validateSeconds("Request timeout")),
			huh.NewSelect[string]().
				Title("Log level").
				Options(levels...).
				Value(&m.fb.logLevel),
		),
	).WithWidth(ui.FormWidth(m.width)).WithShowHelp(true)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.pending = m.fb.config(*m.env.Config)
		cmd = m.validate()
		return m, cmd
	case huh.StateAborted:
		m.mode = ModeSummary
		return m, nil
	}
	return m, cmd
}

// config applies the bindings on top of base. Inputs are already validated.
func (fb formBindings) config(base model.AppConfig) model.AppConfig {
	base.API.BaseURL = strings.TrimRight(strings.TrimSpace(fb.baseURL), "/")
	base.Display.PollIntervalSec, _ = strconv.Atoi(strings.TrimSpace(fb.poll))
	base.API.RequestTimeoutSec, _ = strconv.Atoi(strings.TrimSpace(fb.timeout))
	base.Log.Level = fb.logLevel
	return base
}

// --- Commands ---

func (m *Model) validate() tea.Cmd {
	m.mode = ModeValidating
	m.validError = nil
	return tea.Batch(m.spinner.Tick, checkHealth(m.pending))
}

func checkHealth(cfg model.AppConfig) tea.Cmd {
	return func() tea.Msg {
		timeout := cfg.RequestTimeout()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		client := api.New(cfg.API.BaseURL, nil, api.WithHTTPClient(&http.Client{Timeout: timeout}))
		return ValidateResultMsg{URL: cfg.API.BaseURL, Err: client.Health(ctx)}
	}
}

func (m Model) save() tea.Cmd {
	path := m.env.ConfigPath
	cfg := m.pending
	return func() tea.Msg {
		return configSavedMsg{cfg: cfg, err: model.SaveConfig(path, &cfg)}
	}
}

// --- View ---

// View renders the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return m.viewForm()
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	default:
		return m.viewSummary()
	}
}

func (m Model) frame() lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)
}

func (m Model) viewSummary() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	if m.env.Config == nil {
		b.WriteString(theme.MutedStyle.Render("No configuration loaded."))
	} else {
		cfg := m.env.Config
		labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(20)
		rows := [][2]string{
			{"Backend URL", cfg.API.BaseURL},
			{"Refresh interval", cfg.PollInterval().String()},
			{"Request timeout", cfg.RequestTimeout().String()},
			{"Log level", cfg.Log.Level},
			{"Log file", cfg.Log.File},
			{"Config file", m.env.ConfigPath},
		}
		for _, r := range rows {
			b.WriteString(labelStyle.Render(r[0]))
			b.WriteString(r[1])
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true)
		if m.statusIsErr {
			style = theme.ErrorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("e edit | esc back"))

	return m.frame().Render(b.String())
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
}

func (m Model) viewValidating() string {
	content := fmt.Sprintf(
		"%s Testing connection to %s...\n\nPress esc to cancel.",
		m.spinner.View(), m.pending.API.BaseURL,
	)
	return m.frame().Render(content)
}

func (m Model) viewValidateResult() string {
	var content string
	if m.validError != nil {
		errStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorRed)
		content = errStyle.Render("Connection failed") + "\n\n" +
			ui.ErrorText(m.validError) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).
				Render("r retry | s save anyway | e edit | esc back")
	} else {
		okStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorGreen)
		content = okStyle.Render("Connection successful") + "\n\n" +
			fmt.Sprintf("Backend at %s is healthy.", m.validURL) + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).
				Render("enter/s save | e edit | esc back")
	}
	return m.frame().Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// --- Validators ---

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8180)")
	}
	return nil
}

func validateSeconds(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a whole number of seconds", fieldName)
		}
		if n <= 0 || time.Duration(n)*time.Second > time.Hour {
			return fmt.Errorf("%s must be between 1 and 3600 seconds", fieldName)
		}
		return nil
	}
}
