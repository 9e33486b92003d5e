package ui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/model"
)

func TestAssigneeName(t *testing.T) {
	users := []model.User{{ID: "7", Username: "alice", FullName: "Alice Liddell"}}

	assert.Empty(t, AssigneeName(model.Task{}, users))
	assert.Equal(t, "Alice Liddell", AssigneeName(model.Task{AssigneeID: model.IDPtr("7")}, users))

	embedded := model.Task{AssigneeID: model.IDPtr("9"), AssigneeName: "bob"}
	assert.Equal(t, "bob", AssigneeName(embedded, users))

	bare := model.Task{AssigneeID: model.IDPtr("9")}
	assert.Equal(t, "9", AssigneeName(bare, nil))
}

func TestProjectLabel(t *testing.T) {
	projects := []model.Project{{ID: "1", Name: "Launch", Emoji: "🚀"}, {ID: "2", Name: "Ops"}}

	assert.Empty(t, ProjectLabel(model.Task{}, projects))
	assert.Equal(t, "🚀 Launch", ProjectLabel(model.Task{ProjectID: model.IDPtr("1")}, projects))
	assert.Equal(t, "📁 Ops", ProjectLabel(model.Task{ProjectID: model.IDPtr("2")}, projects))
	assert.Equal(t, "📁 #5", ProjectLabel(model.Task{ProjectID: model.IDPtr("5")}, projects))
}

func TestDueLabel(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	at := func(d time.Time) *time.Time { return &d }

	assert.Empty(t, DueLabel(nil, now))
	assert.Equal(t, "today", DueLabel(at(now.Add(3*time.Hour)), now))
	assert.Equal(t, "tomorrow", DueLabel(at(now.Add(24*time.Hour)), now))
	assert.Equal(t, "Mar 20", DueLabel(at(now.AddDate(0, 0, 10)), now))
	assert.Equal(t, "Jan 05 2027", DueLabel(at(time.Date(2027, 1, 5, 0, 0, 0, 0, time.Local)), now))
}

func TestErrorText(t *testing.T) {
	apiErr := &api.APIError{Status: 404, Message: "Task not found", Method: "GET", Path: "/tasks/1"}
	assert.Equal(t, "Task not found", ErrorText(fmt.Errorf("getting task 1: %w", apiErr)))
	assert.Equal(t, "boom", ErrorText(errors.New("boom")))
}
