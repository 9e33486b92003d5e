package confirm_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/ui"
	"github.com/nhle/teamflow/internal/ui/confirm"
	"github.com/nhle/teamflow/tests/testutil"
)

func TestConfirm_DeletesOnlyWhenConfirmed(t *testing.T) {
	b := testutil.NewBackend(t)
	tokens, _ := testutil.NewLoggedInTokenStore(t, b, "alice")
	env := testutil.NewEnv(t, b, tokens)
	task := b.SeedTask(model.Task{Title: "Old"})

	d := env.Service.RequestDelete(service.KindTask, task.ID, task.Title)
	m := confirm.New(env, d, 80, 24)
	assert.Contains(t, m.View(), "Delete task #"+task.ID.String())
	assert.Zero(t, b.Hits("DELETE", "/api/tasks/"+task.ID.String()))

	msg := m.Confirm()()
	assert.Equal(t, confirm.DeletedMsg{Deletion: d}, msg)
	assert.Equal(t, 1, b.Hits("DELETE", "/api/tasks/"+task.ID.String()))
	_, ok := b.Task(task.ID)
	assert.False(t, ok)
}

func TestConfirm_AbortCancels(t *testing.T) {
	b := testutil.NewBackend(t)
	tokens, _ := testutil.NewLoggedInTokenStore(t, b, "alice")
	env := testutil.NewEnv(t, b, tokens)

	d := env.Service.RequestDelete(service.KindMeeting, "12", "")
	m := confirm.New(env, d, 80, 24)
	m.Init()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Contains(t, collect(cmd), tea.Msg(confirm.CancelledMsg{Deletion: d}))
	assert.Zero(t, b.Hits("DELETE", "/api/meetings/12"))
}

func TestConfirm_BackendErrorSurfaces(t *testing.T) {
	b := testutil.NewBackend(t)
	tokens, _ := testutil.NewLoggedInTokenStore(t, b, "alice")
	env := testutil.NewEnv(t, b, tokens)

	d := env.Service.RequestDelete(service.KindProject, "404", "")
	msg := confirm.New(env, d, 80, 24).Confirm()()
	failed, ok := msg.(confirm.FailedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, d, failed.Deletion)
	assert.Equal(t, "Project not found", ui.ErrorText(failed.Err))
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
