package tasklist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/internal/filter"
	"github.com/nhle/teamflow/internal/keys"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/ui"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and flattens batches into their messages.
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

func fixtureTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Write docs", Status: model.StatusTodo, ProjectID: model.IDPtr("10")},
		{ID: "2", Title: "Fix login", Status: model.StatusDoing, AssigneeID: model.IDPtr("7")},
		{ID: "3", Title: "Ship v1", Status: model.StatusDone, ProjectID: model.IDPtr("10"), AssigneeID: model.IDPtr("7")},
		{ID: "4", Title: "Triage", Status: model.StatusTodo},
	}
}

func loaded(t *testing.T) Model {
	t.Helper()
	m := New(keys.DefaultKeyMap(), 100, 30)
	m, _ = m.Update(ui.ProjectsMsg{Projects: []model.Project{{ID: "10", Name: "Launch"}}})
	m, _ = m.Update(ui.UsersMsg{Users: []model.User{{ID: "7", Username: "alice"}}})
	m, _ = m.Update(ui.TasksMsg{Tasks: fixtureTasks()})
	return m
}

func visibleIDs(m Model) []model.ID {
	var ids []model.ID
	for _, it := range m.list.Items() {
		ids = append(ids, it.(TaskItem).Task.ID)
	}
	return ids
}

func TestTasksMsg_PopulatesListWithLabels(t *testing.T) {
	m := loaded(t)

	require.Len(t, m.list.Items(), 4)
	first := m.list.Items()[0].(TaskItem)
	assert.Equal(t, "📁 Launch", first.Project)
	second := m.list.Items()[1].(TaskItem)
	assert.Equal(t, "alice", second.Assignee)
}

func TestStatusFilter_CyclesAndAsksForServerQuery(t *testing.T) {
	m := loaded(t)

	m, cmd := m.Update(runes("s"))
	assert.Equal(t, model.StatusTodo, m.Criteria().Status)
	assert.Equal(t, []model.ID{"1", "4"}, visibleIDs(m))
	assert.Contains(t, collect(cmd), tea.Msg(StatusFilterChangedMsg{Status: model.StatusTodo}))

	for range model.Statuses {
		m, _ = m.Update(runes("s"))
	}
	assert.Empty(t, m.Criteria().Status, "cycling wraps back to all")
	assert.Len(t, visibleIDs(m), 4)
}

func TestProjectAndAssigneeFilters_Compose(t *testing.T) {
	m := loaded(t)

	m, _ = m.Update(runes("p"))
	assert.Equal(t, filter.Unassigned, m.Criteria().ProjectID)
	assert.Equal(t, []model.ID{"2", "4"}, visibleIDs(m))

	m, _ = m.Update(runes("a"))
	assert.Equal(t, filter.Unassigned, m.Criteria().AssigneeID)
	assert.Equal(t, []model.ID{"4"}, visibleIDs(m))

	m, _ = m.Update(runes("p"))
	assert.Equal(t, "10", m.Criteria().ProjectID)
	assert.Equal(t, []model.ID{"1"}, visibleIDs(m))
}

func TestClearFilters(t *testing.T) {
	m := loaded(t)
	m, _ = m.Update(runes("s"))
	m, _ = m.Update(runes("p"))
	m, _ = m.Update(runes("p"))

	m, cmd := m.Update(runes("x"))
	assert.True(t, m.Criteria().IsZero())
	assert.Len(t, visibleIDs(m), 4)
	assert.Contains(t, collect(cmd), tea.Msg(StatusFilterChangedMsg{}))
}

func TestSelect_EmitsSelectedTask(t *testing.T) {
	m := loaded(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedTaskMsg{TaskID: "2"}, cmd())
}

func TestSetScope_ClearsUntilReload(t *testing.T) {
	m := loaded(t)

	m.SetScope(ScopeWeek)
	assert.Equal(t, ScopeWeek, m.Scope())
	assert.Empty(t, m.Tasks())
	assert.Contains(t, m.View(), "Loading tasks")

	m, _ = m.Update(ui.TasksMsg{Tasks: fixtureTasks()[:1]})
	assert.Len(t, visibleIDs(m), 1)
}

func TestView_ShowsStats(t *testing.T) {
	m := loaded(t)
	m, _ = m.Update(ui.StatsMsg{Stats: model.Stats{Total: 4, Todo: 2, Doing: 1, Done: 1}})

	out := m.View()
	assert.Contains(t, out, "Total 4")
	assert.Contains(t, out, "To do 2")
	assert.Contains(t, out, "Blocked 0")
}
