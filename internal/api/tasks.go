package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/teamflow/internal/model"
)

// ListTasks returns tasks matching the server-side query parameters.
func (c *Client) ListTasks(ctx context.Context, q model.TaskQuery) ([]model.Task, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", c.wireStatus(q.Status))
	}
	if q.Priority != "" {
		params.Set("priority", c.wirePriority(q.Priority))
	}
	if q.AssigneeID != "" {
		params.Set("assignee_id", q.AssigneeID.String())
	}
	if q.CreatorID != "" {
		params.Set("creator_id", q.CreatorID.String())
	}
	if q.Skip > 0 {
		params.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var tasks []model.Task
	if err := c.get(ctx, "/tasks", params, &tasks); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// MyTasks returns tasks created by or assigned to the current user.
func (c *Client) MyTasks(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", c.wireStatus(status))
	}

	var tasks []model.Task
	if err := c.get(ctx, "/tasks/my", params, &tasks); err != nil {
		return nil, fmt.Errorf("listing my tasks: %w", err)
	}
	return tasks, nil
}

// WeekTasks returns the tasks due in the current week.
func (c *Client) WeekTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, "/tasks/week/current", nil, &tasks); err != nil {
		return nil, fmt.Errorf("listing this week's tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id model.ID) (model.Task, error) {
	var task model.Task
	if err := c.get(ctx, idPath("tasks", id), nil, &task); err != nil {
		return model.Task{}, fmt.Errorf("getting task %s: %w", id, err)
	}
	return task, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	var task model.Task
	if err := c.post(ctx, "/tasks", c.wireInput(in), &task); err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return task, nil
}

// UpdateTask replaces the editable fields of a task (PUT).
func (c *Client) UpdateTask(ctx context.Context, id model.ID, in model.TaskInput) (model.Task, error) {
	var task model.Task
	if err := c.put(ctx, idPath("tasks", id), c.wireInput(in), &task); err != nil {
		return model.Task{}, fmt.Errorf("updating task %s: %w", id, err)
	}
	return task, nil
}

// PatchTask applies a partial update (PATCH).
func (c *Client) PatchTask(ctx context.Context, id model.ID, p model.TaskPatch) (model.Task, error) {
	var task model.Task
	if err := c.patch(ctx, idPath("tasks", id), c.wirePatch(p), &task); err != nil {
		return model.Task{}, fmt.Errorf("patching task %s: %w", id, err)
	}
	return task, nil
}

// DeleteTask removes a task permanently.
func (c *Client) DeleteTask(ctx context.Context, id model.ID) error {
	if err := c.delete(ctx, idPath("tasks", id)); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

type statusBody struct {
	Status model.TaskStatus `json:"status"`
}

// assigneeBody always serialises assignee_id, as null when clearing.
type assigneeBody struct {
	AssigneeID *model.ID `json:"assignee_id"`
}

type projectBody struct {
	ProjectID *model.ID `json:"project_id"`
}

// ChangeTaskStatus sets the task status.
func (c *Client) ChangeTaskStatus(ctx context.Context, id model.ID, status model.TaskStatus) (model.Task, error) {
	var task model.Task
	if err := c.post(ctx, idPath("tasks", id, "status"), statusBody{Status: model.TaskStatus(c.wireStatus(status))}, &task); err != nil {
		return model.Task{}, fmt.Errorf("changing status of task %s: %w", id, err)
	}
	return task, nil
}

// AssignTask sets or (with nil) clears the assignee.
func (c *Client) AssignTask(ctx context.Context, id model.ID, assigneeID *model.ID) (model.Task, error) {
	var task model.Task
	if err := c.post(ctx, idPath("tasks", id, "assign"), assigneeBody{AssigneeID: assigneeID}, &task); err != nil {
		return model.Task{}, fmt.Errorf("assigning task %s: %w", id, err)
	}
	return task, nil
}

// AssignTaskProject sets or (with nil) clears the project reference.
func (c *Client) AssignTaskProject(ctx context.Context, id model.ID, projectID *model.ID) (model.Task, error) {
	var task model.Task
	if err := c.post(ctx, idPath("tasks", id, "project"), projectBody{ProjectID: projectID}, &task); err != nil {
		return model.Task{}, fmt.Errorf("setting project of task %s: %w", id, err)
	}
	return task, nil
}
