package taskform

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/ui"
	"github.com/nhle/teamflow/tests/testutil"
)

type fixture struct {
	backend *testutil.Backend
	env     ui.Env
	user    model.User
	project model.Project
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	tokens, user := testutil.NewLoggedInTokenStore(t, b, "alice")
	return fixture{
		backend: b,
		env:     testutil.NewEnv(t, b, tokens),
		user:    user,
		project: b.SeedProject(model.Project{Name: "Launch", IsActive: true}),
	}
}

func TestSave_CreateWithReferences(t *testing.T) {
	f := newFixture(t)
	m := New(f.env, 80, 30)
	m.SetOptions([]model.Project{f.project}, []model.User{f.user})
	m.StartCreate("")
	m.fb.title = "  Ship v1 "
	m.fb.priority = model.PriorityHigh
	m.fb.projectID = f.project.ID.String()
	m.fb.assigneeID = f.user.ID.String()
	m.fb.dueDate = "2030-01-15"

	msg := m.save()()
	saved, ok := msg.(SavedMsg)
	require.True(t, ok, "got %#v", msg)
	assert.True(t, saved.Created)
	assert.Equal(t, "Ship v1", saved.Task.Title)
	assert.Equal(t, model.StatusTodo, saved.Task.Status)

	stored, ok := f.backend.Task(saved.Task.ID)
	require.True(t, ok)
	require.NotNil(t, stored.ProjectID)
	assert.Equal(t, f.project.ID, *stored.ProjectID)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, f.user.ID, *stored.AssigneeID)
	require.NotNil(t, stored.DueDate)
	assert.Equal(t, 2030, stored.DueDate.Year())
}

func TestSave_BlankTitleIsRejectedLocally(t *testing.T) {
	f := newFixture(t)
	m := New(f.env, 80, 30)
	m.StartCreate("   ")

	msg := m.save()()
	failed, ok := msg.(saveFailedMsg)
	require.True(t, ok)
	assert.True(t, errors.Is(failed.err, service.ErrValidation))
	assert.Zero(t, f.backend.Hits(http.MethodPost, "/api/tasks"))

	m.saving = true
	m, _ = m.Update(msg)
	assert.False(t, m.saving)
	assert.Contains(t, m.err, "title is required")
	assert.Contains(t, m.View(), "title is required")
}

func TestSave_BadDueDate(t *testing.T) {
	f := newFixture(t)
	m := New(f.env, 80, 30)
	m.StartCreate("Task")
	m.fb.dueDate = "next friday"

	msg := m.save()()
	_, ok := msg.(saveFailedMsg)
	assert.True(t, ok)
	assert.Zero(t, f.backend.Hits(http.MethodPost, "/api/tasks"))
}

func TestSave_EditClearsAssigneeAndProject(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{
		Title:      "Fix login",
		AssigneeID: model.IDPtr(f.user.ID),
		ProjectID:  model.IDPtr(f.project.ID),
	})

	m := New(f.env, 80, 30)
	m.SetOptions([]model.Project{f.project}, []model.User{f.user})
	m.StartEdit(task)
	assert.Equal(t, f.user.ID.String(), m.fb.assigneeID)
	m.fb.title = "Fix login flow"
	m.fb.status = model.StatusBlocked
	m.fb.assigneeID = ""
	m.fb.projectID = ""

	msg := m.save()()
	saved, ok := msg.(SavedMsg)
	require.True(t, ok, "got %#v", msg)
	assert.False(t, saved.Created)

	stored, _ := f.backend.Task(task.ID)
	assert.Equal(t, "Fix login flow", stored.Title)
	assert.Equal(t, model.StatusBlocked, stored.Status)
	assert.False(t, stored.IsAssigned())
	assert.False(t, stored.HasProject())
	assert.Equal(t, 1, f.backend.Hits(http.MethodPost, "/api/tasks/"+task.ID.String()+"/assign"))
}

func TestSave_EditUnchangedReferencesSkipsExtraCalls(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{Title: "Docs", AssigneeID: model.IDPtr(f.user.ID)})

	m := New(f.env, 80, 30)
	m.StartEdit(task)
	m.fb.description = "more words"

	_, ok := m.save()().(SavedMsg)
	require.True(t, ok)
	assert.Zero(t, f.backend.Hits(http.MethodPost, "/api/tasks/"+task.ID.String()+"/assign"))
	assert.Zero(t, f.backend.Hits(http.MethodPost, "/api/tasks/"+task.ID.String()+"/project"))
}

func TestStartEdit_KeepsReferencesMissingFromOptions(t *testing.T) {
	f := newFixture(t)
	task := f.backend.SeedTask(model.Task{
		Title:      "Audit",
		AssigneeID: model.IDPtr(model.ID("99")),
		ProjectID:  model.IDPtr(f.project.ID),
	})

	m := New(f.env, 80, 30)
	m.SetOptions(nil, []model.User{f.user})
	m.StartEdit(task)
	assert.Equal(t, "99", m.fb.assigneeID)
	assert.Equal(t, f.project.ID.String(), m.fb.projectID)

	m.fb.description = "only this changed"
	_, ok := m.save()().(SavedMsg)
	require.True(t, ok)

	stored, _ := f.backend.Task(task.ID)
	assert.Equal(t, "only this changed", stored.Description)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, model.ID("99"), *stored.AssigneeID)
	require.NotNil(t, stored.ProjectID)
	assert.Equal(t, f.project.ID, *stored.ProjectID)
	assert.Zero(t, f.backend.Hits(http.MethodPost, "/api/tasks/"+task.ID.String()+"/assign"))
	assert.Zero(t, f.backend.Hits(http.MethodPost, "/api/tasks/"+task.ID.String()+"/project"))
}

func TestSave_AuthErrorGoesToParent(t *testing.T) {
	f := newFixture(t)
	f.backend.RevokeTokens()
	m := New(f.env, 80, 30)
	m.StartCreate("Task")

	m, cmd := m.Update(m.save()())
	require.NotNil(t, cmd)
	_, ok := cmd().(ui.ErrorMsg)
	assert.True(t, ok)
	assert.Empty(t, m.err)
}

func TestSameRef(t *testing.T) {
	empty := model.ID("")
	one, two := model.ID("1"), model.ID("2")

	assert.True(t, sameRef(nil, nil))
	assert.True(t, sameRef(&empty, nil))
	assert.True(t, sameRef(&one, &one))
	assert.False(t, sameRef(&one, &two))
	assert.False(t, sameRef(&one, nil))
	assert.False(t, sameRef(nil, &one))
}
