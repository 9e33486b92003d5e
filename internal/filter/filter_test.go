package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/teamflow/internal/model"
)

func ref(id string) *model.ID {
	v := model.ID(id)
	return &v
}

func sample() []model.Task {
	return []model.Task{
		{ID: "1", Title: "a", Status: model.StatusTodo, ProjectID: ref("p1"), AssigneeID: ref("u1")},
		{ID: "2", Title: "b", Status: model.StatusDoing, ProjectID: nil, AssigneeID: ref("u2")},
		{ID: "3", Title: "c", Status: model.StatusDone, ProjectID: ref("p2"), AssigneeID: nil},
		{ID: "4", Title: "d", Status: model.StatusTodo, ProjectID: nil, AssigneeID: nil},
		{ID: "5", Title: "e", Status: model.StatusBlocked, ProjectID: ref("p1"), AssigneeID: ref("u1")},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID.String())
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no constraint", Criteria{}, []string{"1", "2", "3", "4", "5"}},
		{"status", Criteria{Status: model.StatusTodo}, []string{"1", "4"}},
		{"project", Criteria{ProjectID: "p1"}, []string{"1", "5"}},
		{"project unassigned", Criteria{ProjectID: Unassigned}, []string{"2", "4"}},
		{"assignee unassigned", Criteria{AssigneeID: Unassigned}, []string{"3", "4"}},
		{"status and project", Criteria{Status: model.StatusBlocked, ProjectID: "p1"}, []string{"5"}},
		{"all three", Criteria{Status: model.StatusTodo, ProjectID: Unassigned, AssigneeID: Unassigned}, []string{"4"}},
		{"nothing matches", Criteria{AssigneeID: "u9"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sample(), tt.criteria)))
		})
	}
}

func TestUnassignedIsExactSubset(t *testing.T) {
	tasks := sample()

	got := Apply(tasks, Criteria{ProjectID: Unassigned})
	var want []model.Task
	for _, task := range tasks {
		if !task.HasProject() {
			want = append(want, task)
		}
	}
	assert.Equal(t, want, got)
}

func TestApply_EmptyIDPointerCountsAsUnassigned(t *testing.T) {
	tasks := []model.Task{{ID: "1", ProjectID: ref("")}}
	assert.Len(t, Apply(tasks, Criteria{ProjectID: Unassigned}), 1)
}

func TestNextWraps(t *testing.T) {
	opts := StatusOptions()
	assert.Equal(t, "TODO", Next(opts, ""))
	assert.Equal(t, "BLOCKED", Next(opts, "DONE"))
	assert.Equal(t, "", Next(opts, "BLOCKED"))
	assert.Equal(t, "", Next(opts, "bogus"))
	assert.Equal(t, "", Next(nil, "x"))
}

func TestOptionsAndLabels(t *testing.T) {
	projects := []model.Project{{ID: "p1", Name: "Apollo"}}
	opts := ProjectOptions(projects)
	assert.Equal(t, "📁 Apollo", LabelOf(opts, "p1"))
	assert.Equal(t, "No project", LabelOf(opts, Unassigned))

	users := []model.User{{ID: "u1", Username: "al", FullName: "Alice"}}
	assert.Equal(t, "Alice", LabelOf(AssigneeOptions(users), "u1"))
	assert.Equal(t, "zz", LabelOf(nil, "zz"))
	assert.True(t, Criteria{}.IsZero())
}
