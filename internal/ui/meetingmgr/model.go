package meetingmgr

import (
	"fmt"
	"sort"
	"strings"
	"time"

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

const dateLayout = "2006-01-02 15:04"

// CloseMsg signals the parent to close the meeting view.
type CloseMsg struct{}

type meetingMode int

const (
	modeList meetingMode = iota
	modeForm
	modeSaving
	modeConfirmDelete
)

type formBindings struct {
	summary string
	date    string
}

type meetingSavedMsg struct {
	meeting model.Meeting
	created bool
	err     error
}

// Model lists meeting notes, newest first, and edits them.
type Model struct {
	env         ui.Env
	mode        meetingMode
	meetings    []model.Meeting
	selectedIdx int
	editingID   model.ID
	form        *huh.Form
	confirm     confirm.Model
	fb          *formBindings
	statusMsg   string
	formErr     string
	now         func() time.Time
	width       int
	height      int
}

// New creates a new meeting manager model.
func New(env ui.Env, width, height int) Model {
	return Model{
		env:    env,
		fb:     &formBindings{},
		now:    time.Now,
		width:  width,
		height: height,
	}
}

// Init returns nil; meetings arrive through the poller.
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the highlighted meeting.
func (m Model) Selected() (model.Meeting, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.meetings) {
		return model.Meeting{}, false
	}
	return m.meetings[m.selectedIdx], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.MeetingsMsg:
		m.meetings = append([]model.Meeting(nil), msg.Meetings...)
		sort.SliceStable(m.meetings, func(i, j int) bool {
			return m.meetings[i].MeetingDate.After(m.meetings[j].MeetingDate)
		})
		if m.selectedIdx >= len(m.meetings) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.meetings) - 1
		}
		return m, nil

	case meetingSavedMsg:
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
			m.statusMsg = "Meeting note added"
		} else {
			m.statusMsg = fmt.Sprintf("Meeting #%s saved", msg.meeting.ID)
		}
		m.mode = modeList
		return m, nil

	case confirm.DeletedMsg:
		m.statusMsg = fmt.Sprintf("Meeting #%s deleted", msg.Deletion.ID)
		m.mode = modeList
		return m, nil

	case confirm.CancelledMsg:
		m.mode = modeList
		return m, nil

	case confirm.FailedMsg:
		m.mode = modeList
		return m, ui.Fail(msg.Err)
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeSaving:
		return m, nil
	case modeConfirmDelete:
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.env.Keys
	switch {
	case key.Matches(msg, k.Back):
		return m, ui.Emit(CloseMsg{})

	case key.Matches(msg, k.Down):
		if len(m.meetings) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.meetings)
		}

	case key.Matches(msg, k.Up):
		if len(m.meetings) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.meetings)) % len(m.meetings)
		}

	case key.Matches(msg, k.New):
		m.editingID = ""
		*m.fb = formBindings{date: m.now().Format(dateLayout)}
		return m.openForm()

	case key.Matches(msg, k.Edit):
		mt, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.editingID = mt.ID
		*m.fb = formBindings{summary: mt.Summary, date: mt.MeetingDate.Local().Format(dateLayout)}
		return m.openForm()

	case key.Matches(msg, k.Delete):
		mt, ok := m.Selected()
		if !ok {
			return m, nil
		}
		d := m.env.Service.RequestDelete(service.KindMeeting, mt.ID, "")
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
				Title("Date").
				Placeholder(dateLayout).
				Value(&m.fb.date).
				Validate(func(s string) error {
					_, err := parseDate(s)
					return err
				}),
			huh.NewText().
				Title("Summary").
				Placeholder("What was discussed and decided?").
				Value(&m.fb.summary).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("summary is required")
					}
					return nil
				}),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

// parseDate accepts a date with or without a time of day.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("use YYYY-MM-DD or YYYY-MM-DD HH:MM")
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modeSaving
		return m, m.save()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) save() tea.Cmd {
	env := m.env
	fb := *m.fb
	editID := m.editingID
	return func() tea.Msg {
		date, err := parseDate(fb.date)
		if err != nil {
			return meetingSavedMsg{err: err}
		}
		in := model.MeetingInput{Summary: fb.summary, MeetingDate: date}

		ctx, cancel := env.Context()
		defer cancel()
		if editID == "" {
			mt, err := env.Service.CreateMeeting(ctx, in)
			return meetingSavedMsg{meeting: mt, created: true, err: err}
		}
		mt, err := env.Service.UpdateMeeting(ctx, editID, in)
		return meetingSavedMsg{meeting: mt, err: err}
	}
}

// View renders the meeting manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		content := m.form.View()
		if m.formErr != "" {
			content = theme.ErrorStyle.Render(m.formErr) + "\n" + content
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(content)
	case modeSaving:
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.MutedStyle.Render("Saving..."))
	case modeConfirmDelete:
		return m.confirm.View()
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Meeting notes"))
	b.WriteString("\n\n")

	if len(m.meetings) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).
			Render("No meeting notes yet. Press 'n' to add one."))
	}
	for i, mt := range m.meetings {
		first, _, _ := strings.Cut(mt.Summary, "\n")
		line := fmt.Sprintf("%s  %s",
			theme.MutedStyle.Render(mt.MeetingDate.Local().Format("Mon Jan 02 15:04")), first)
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if mt, ok := m.Selected(); ok && strings.Contains(mt.Summary, "\n") {
		b.WriteString("\n")
		b.WriteString(theme.BorderStyle.Padding(0, 1).Width(max(m.width-8, 20)).Render(mt.Summary))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render("n new | e edit | d delete | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
