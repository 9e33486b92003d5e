package app

import (
	"errors"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	tfsync "github.com/nhle/teamflow/internal/sync"
	"github.com/nhle/teamflow/internal/ui"
	"github.com/nhle/teamflow/internal/ui/command"
	"github.com/nhle/teamflow/internal/ui/detail"
	"github.com/nhle/teamflow/internal/ui/login"
	"github.com/nhle/teamflow/internal/ui/tasklist"
	"github.com/nhle/teamflow/tests/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func newApp(t *testing.T, loggedIn bool) (Model, ui.Env, *testutil.Backend) {
	t.Helper()

	b := testutil.NewBackend(t)
	tokens := testutil.NewTokenStore(t)
	if loggedIn {
		tokens, _ = testutil.NewLoggedInTokenStore(t, b, "alice")
	}
	env := testutil.NewEnv(t, b, tokens)
	poller := tfsync.New(env.Service.Cache(), time.Hour)
	t.Cleanup(poller.Stop)

	m := New(env, poller, zap.NewNop())
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, env, b
}

func tasksResult(key string, tasks ...model.Task) tfsync.ResultMsg {
	var k = service.TasksKey("")
	switch key {
	case "mine":
		k = service.MyTasksKey
	case "week":
		k = service.WeekTasksKey
	}
	return tfsync.ResultMsg{Slot: slotTasks, Msg: tasksLoaded{key: k, tasks: tasks}}
}

func TestNew_StartsOnLoginWithoutSession(t *testing.T) {
	m, _, _ := newApp(t, false)
	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.NotEmpty(t, m.View())
}

func TestNew_StartsOnDashboardWithSession(t *testing.T) {
	m, _, _ := newApp(t, true)
	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.Contains(t, m.View(), "alice")
}

func TestResult_DeliversCurrentTaskList(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, tasksResult("all", model.Task{ID: "1", Title: "Write docs", Status: model.StatusTodo}))
	require.Len(t, m.taskList.Tasks(), 1)
	assert.Contains(t, m.View(), "Write docs")
}

func TestResult_DropsTasksForAnotherScope(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, tasksResult("mine", model.Task{ID: "1", Title: "Mine"}))
	assert.Empty(t, m.taskList.Tasks())

	m = update(t, m, command.CommandMsg{Name: command.Mine})
	assert.Equal(t, tasklist.ScopeMine, m.taskList.Scope())

	m = update(t, m, tasksResult("all", model.Task{ID: "2", Title: "Everyone"}))
	assert.Empty(t, m.taskList.Tasks())

	m = update(t, m, tasksResult("mine", model.Task{ID: "1", Title: "Mine"}))
	require.Len(t, m.taskList.Tasks(), 1)
	assert.Equal(t, model.ID("1"), m.taskList.Tasks()[0].ID)
}

func TestResult_ErrorKeepsDataAndShowsStatus(t *testing.T) {
	m, _, _ := newApp(t, true)
	m = update(t, m, tasksResult("all", model.Task{ID: "1", Title: "Write docs"}))

	m = update(t, m, tfsync.ResultMsg{Slot: slotTasks, Err: &api.APIError{Status: http.StatusInternalServerError, Message: "boom"}})
	status, isErr := m.Status()
	assert.Equal(t, "boom", status)
	assert.True(t, isErr)
	assert.Len(t, m.taskList.Tasks(), 1)
	assert.Equal(t, ViewDashboard, m.CurrentView())

	// A later successful poll clears the poll error.
	m = update(t, m, tfsync.ResultMsg{Slot: slotStats, Msg: ui.StatsMsg{}})
	status, isErr = m.Status()
	assert.Empty(t, status)
	assert.False(t, isErr)
}

func TestResult_AuthErrorReturnsToLogin(t *testing.T) {
	m, env, _ := newApp(t, true)
	m = update(t, m, tasksResult("all", model.Task{ID: "1", Title: "Write docs"}))

	m = update(t, m, tfsync.ResultMsg{Slot: slotTasks, Err: &api.APIError{Status: http.StatusUnauthorized, Message: "expired"}})

	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.False(t, env.Session.State().IsAuthenticated)
	assert.Empty(t, m.taskList.Tasks())
	assert.Empty(t, m.poller.Slots())
	assert.Contains(t, m.login.Error(), "session expired")
}

func TestErrorMsg_NonAuthShowsStatus(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, ui.ErrorMsg{Err: errors.New("title is required")})
	status, isErr := m.Status()
	assert.Equal(t, "title is required", status)
	assert.True(t, isErr)

	// Any key clears a non-poll message.
	m = update(t, m, runes("j"))
	status, _ = m.Status()
	assert.Empty(t, status)
}

func TestKeys_HelpToggles(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.CurrentView())
	assert.Contains(t, m.View(), "Commands")

	m = update(t, m, runes("?"))
	assert.Equal(t, ViewDashboard, m.CurrentView())
}

func TestKeys_OpenManagers(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, runes("P"))
	assert.Equal(t, ViewProjects, m.CurrentView())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Equal(t, ViewDashboard, m.CurrentView())

	m = update(t, m, runes("M"))
	assert.Equal(t, ViewMeetings, m.CurrentView())
}

func TestKeys_NewOpensTaskForm(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, runes("n"))
	assert.Equal(t, ViewTaskForm, m.CurrentView())

	// Keys typed into the form are not taken as global shortcuts.
	m = update(t, m, runes("q"))
	assert.Equal(t, ViewTaskForm, m.CurrentView())
}

func TestCommandPalette(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, runes(":"))
	assert.Equal(t, ViewCommand, m.CurrentView())

	m = update(t, m, command.UnknownMsg{Input: "frobnicate"})
	assert.Equal(t, ViewDashboard, m.CurrentView())
	status, isErr := m.Status()
	assert.Contains(t, status, "frobnicate")
	assert.True(t, isErr)

	m = update(t, m, runes(":"))
	m = update(t, m, command.CommandMsg{Name: command.NewTask, Args: []string{"Write", "docs"}})
	assert.Equal(t, ViewTaskForm, m.CurrentView())
}

func TestCommand_SettingsOpensAndCloses(t *testing.T) {
	m, _, _ := newApp(t, true)

	m = update(t, m, command.CommandMsg{Name: command.Settings})
	assert.Equal(t, ViewSettings, m.CurrentView())
	assert.Contains(t, m.View(), "Settings")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Equal(t, ViewDashboard, m.CurrentView())
}

func TestCommand_LogoutClearsSession(t *testing.T) {
	m, env, _ := newApp(t, true)

	m = update(t, m, command.CommandMsg{Name: command.Logout})

	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.False(t, env.Session.State().IsAuthenticated)
	assert.Empty(t, m.poller.Slots())
}

func TestSelectedTask_OpensDetailAndBack(t *testing.T) {
	m, _, _ := newApp(t, true)
	m = update(t, m, tasksResult("all", model.Task{ID: "1", Title: "Write docs", Status: model.StatusTodo}))

	m = update(t, m, tasklist.SelectedTaskMsg{TaskID: "1"})
	assert.Equal(t, ViewDetail, m.CurrentView())
	assert.Contains(t, m.View(), "Write docs")

	m = update(t, m, detail.BackMsg{})
	assert.Equal(t, ViewDashboard, m.CurrentView())
}

func TestLoggedIn_RegistersQueries(t *testing.T) {
	m, _, _ := newApp(t, false)

	m = update(t, m, login.LoggedInMsg{User: model.User{ID: "1", Username: "alice"}})
	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.Equal(t, []string{slotMeetings, slotProjects, slotStats, slotTasks, slotUsers}, m.poller.Slots())
}
