package confirm

import (
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/tests/testutil"
)

func TestUpdate_AnsweredIgnoresFurtherInput(t *testing.T) {
	b := testutil.NewBackend(t)
	tokens, _ := testutil.NewLoggedInTokenStore(t, b, "alice")
	env := testutil.NewEnv(t, b, tokens)
	task := b.SeedTask(model.Task{Title: "Old"})

	m := New(env, env.Service.RequestDelete(service.KindTask, task.ID, task.Title), 80, 24)
	*m.answer = true
	m.form.State = huh.StateCompleted

	m, cmd := m.Update(tea.FocusMsg{})
	require.NotNil(t, cmd)
	_, ok := cmd().(DeletedMsg)
	require.True(t, ok)

	m, again := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Nil(t, again)
	_, again = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)
	assert.Equal(t, 1, b.Hits(http.MethodDelete, "/api/tasks/"+task.ID.String()))
}

func TestUpdate_DeclinedEmitsCancelOnce(t *testing.T) {
	b := testutil.NewBackend(t)
	tokens, _ := testutil.NewLoggedInTokenStore(t, b, "alice")
	env := testutil.NewEnv(t, b, tokens)

	m := New(env, env.Service.RequestDelete(service.KindMeeting, "12", ""), 80, 24)
	m.form.State = huh.StateCompleted

	m, cmd := m.Update(tea.FocusMsg{})
	require.NotNil(t, cmd)
	_, ok := cmd().(CancelledMsg)
	assert.True(t, ok)

	_, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)
}
