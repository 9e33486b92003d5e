package detail

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/ui"
	"github.com/nhle/teamflow/internal/ui/confirm"
	"github.com/nhle/teamflow/tests/testutil"
)

type fixture struct {
	backend *testutil.Backend
	env     ui.Env
	user    model.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	tokens, user := testutil.NewLoggedInTokenStore(t, b, "alice")
	return fixture{backend: b, env: testutil.NewEnv(t, b, tokens), user: user}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// apply feeds the result of cmd back into m, one level deep.
func apply(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	m, _ = m.Update(msg)
	return m, msg
}

func TestOpen_ResolvesFromListWithoutRequest(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{Title: "Write docs"})

	m := New(f.env, 100, 30)
	cmd := m.Open(task.ID, []model.Task{task})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Write docs")
	assert.Zero(t, f.backend.Hits(http.MethodGet, "/api/tasks/"+task.ID.String()))
}

func TestOpen_FetchesMissingTask(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{Title: "Remote only"})

	m := New(f.env, 100, 30)
	cmd := m.Open(task.ID, nil)
	assert.Contains(t, m.View(), "Loading")

	m, _ = apply(t, m, cmd)
	got, ok := m.Task()
	require.True(t, ok)
	assert.Equal(t, "Remote only", got.Title)
}

func TestFreshListIsReflectedWhileOpen(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{Title: "Before"})

	m := New(f.env, 100, 30)
	m.Open(task.ID, []model.Task{task})

	renamed := task
	renamed.Title = "After"
	renamed.Status = model.StatusBlocked
	m, _ = m.Update(ui.TasksMsg{Tasks: []model.Task{renamed}})

	got, _ := m.Task()
	assert.Equal(t, "After", got.Title)
	assert.Contains(t, m.View(), "After")
	assert.Contains(t, m.View(), "Blocked")
}

func TestDescriptionMentionsAreListed(t *testing.T) {
	f := newFixture(t)
	tasks := []model.Task{
		{ID: "1", Title: "Write docs", Description: "Waiting on #2 and #40"},
		{ID: "2", Title: "Fix login", Status: model.StatusDoing},
	}

	m := New(f.env, 100, 30)
	m.Open("1", tasks)

	_, mentions, found := strings.Cut(m.View(), "Mentions")
	require.True(t, found)
	assert.Contains(t, mentions, "#2 Fix login")
	assert.NotContains(t, mentions, "#40")
}

func TestDeletedElsewhere_ShowsGone(t *testing.T) {
	f := newFixture(t)
	m := New(f.env, 100, 30)
	m.Open("999", nil)

	m, _ = m.Update(taskLoadedMsg{id: "999", err: notFound(t, f)})
	assert.Contains(t, m.View(), "no longer exists")
}

func notFound(t *testing.T, f fixture) error {
	t.Helper()
	_, err := f.env.Service.Task(t.Context(), "999")
	require.Error(t, err)
	return err
}

func TestStatusKeys_ChangeStatus(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{Title: "Ship"})
	m := New(f.env, 100, 30)
	m.Open(task.ID, []model.Task{task})

	_, cmd := m.Update(runes("3"))
	m, msg := apply(t, m, cmd)
	require.IsType(t, actionDoneMsg{}, msg)

	got, _ := m.Task()
	assert.Equal(t, model.StatusDone, got.Status)
	stored, _ := f.backend.Task(task.ID)
	assert.Equal(t, model.StatusDone, stored.Status)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = apply(t, m, cmd)
	got, _ = m.Task()
	assert.Equal(t, model.StatusBlocked, got.Status)
}

func TestTake_AssignsCurrentUserAndStarts(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{Title: "Unowned"})
	m := New(f.env, 100, 30)
	m.Open(task.ID, []model.Task{task})

	_, cmd := m.Update(runes("t"))
	m, _ = apply(t, m, cmd)

	got, _ := m.Task()
	require.True(t, got.IsAssigned())
	assert.Equal(t, f.user.ID, *got.AssigneeID)
	assert.Equal(t, model.StatusDoing, got.Status)
}

func TestDelete_AsksFirst(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{Title: "Doomed"})
	m := New(f.env, 100, 30)
	m.Open(task.ID, []model.Task{task})

	m, _ = m.Update(runes("d"))
	assert.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete task #"+task.ID.String())
	assert.Zero(t, f.backend.Hits(http.MethodDelete, "/api/tasks/"+task.ID.String()))

	m, _ = m.Update(confirm.CancelledMsg{})
	assert.Equal(t, modeView, m.mode)
	_, ok := f.backend.Task(task.ID)
	assert.True(t, ok)
}

func TestDeleted_GoesBack(t *testing.T) {
	f := newFixture(t)
	m := New(f.env, 100, 30)
	m.mode = modeConfirm

	_, cmd := m.Update(confirm.DeletedMsg{})
	require.NotNil(t, cmd)
	msgs := cmd()
	batch, ok := msgs.(tea.BatchMsg)
	require.True(t, ok)
	assert.Equal(t, BackMsg{}, batch[0]())
}

func TestDeleteFailure_ReturnsToView(t *testing.T) {
	f := newFixture(t)
	m := New(f.env, 100, 30)
	m.mode = modeConfirm

	m, cmd := m.Update(confirm.FailedMsg{Err: errors.New("Task not found")})
	assert.Equal(t, modeView, m.mode)
	require.NotNil(t, cmd)
	errMsg, ok := cmd().(ui.ErrorMsg)
	require.True(t, ok)
	assert.EqualError(t, errMsg.Err, "Task not found")
}

func TestEscGoesBack(t *testing.T) {
	f := newFixture(t)
	m := New(f.env, 100, 30)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestNextStatus(t *testing.T) {
	assert.Equal(t, model.StatusDoing, nextStatus(model.StatusTodo))
	assert.Equal(t, model.StatusTodo, nextStatus(model.StatusBlocked))
	assert.Equal(t, model.StatusTodo, nextStatus(""))
}
