package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/model"
)

// ErrorMsg reports a failed request to the root model, which routes auth
// failures to the login view and shows everything else in the status bar.
type ErrorMsg struct {
	Err error
}

// ErrorText returns the message worth showing a user for err: the server's
// own message for backend errors, the full chain otherwise.
func ErrorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// NoticeMsg is a transient status bar message.
type NoticeMsg string

// TasksMsg carries a fresh task list.
type TasksMsg struct {
	Tasks []model.Task
}

// StatsMsg carries fresh task counts.
type StatsMsg struct {
	Stats model.Stats
}

// UsersMsg carries the user directory.
type UsersMsg struct {
	Users []model.User
}

// ProjectsMsg carries the project list.
type ProjectsMsg struct {
	Projects []model.Project
}

// MeetingsMsg carries the meeting notes.
type MeetingsMsg struct {
	Meetings []model.Meeting
}

// Fail returns a command emitting ErrorMsg for err.
func Fail(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

// Notify returns a command emitting a NoticeMsg.
func Notify(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg(text) }
}

// Emit wraps a message in a command.
func Emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// FormWidth clamps a form width to a readable range.
func FormWidth(width int) int {
	w := width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// FormHeight leaves room for the frame around a form.
func FormHeight(height int) int {
	h := height - 4
	if h < 10 {
		h = 10
	}
	return h
}
