package service

import (
	"context"
	"strings"

	"github.com/nhle/teamflow/internal/model"
)

// normaliseTaskInput trims the input and rejects what the backend would.
func normaliseTaskInput(in model.TaskInput) (model.TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return in, invalid("title is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return in, invalid("unknown status %q", in.Status)
	}
	if _, err := model.ParsePriority(string(in.Priority)); err != nil {
		return in, invalid("%v", err)
	}
	return in, nil
}

func requireID(kind Kind, id model.ID) error {
	if id.IsZero() {
		return invalid("%s id is required", kind)
	}
	return nil
}

// CreateTask creates a task. The title is required; status defaults to TODO.
func (s *Service) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	in, err := normaliseTaskInput(in)
	if err != nil {
		return model.Task{}, err
	}
	if in.Status == "" {
		in.Status = model.StatusTodo
	}

	task, err := s.api.CreateTask(ctx, in)
	s.mutated(ctx, KindTask, "create", task.ID, err)
	return task, err
}

// UpdateTask replaces the editable fields of a task.
func (s *Service) UpdateTask(ctx context.Context, id model.ID, in model.TaskInput) (model.Task, error) {
	if err := requireID(KindTask, id); err != nil {
		return model.Task{}, err
	}
	in, err := normaliseTaskInput(in)
	if err != nil {
		return model.Task{}, err
	}

	task, err := s.api.UpdateTask(ctx, id, in)
	s.mutated(ctx, KindTask, "update", id, err)
	return task, err
}

// PatchTask applies a partial update. A patch that changes nothing, or
// blanks the title, is rejected.
func (s *Service) PatchTask(ctx context.Context, id model.ID, p model.TaskPatch) (model.Task, error) {
	if err := requireID(KindTask, id); err != nil {
		return model.Task{}, err
	}
	if p.IsEmpty() {
		return model.Task{}, invalid("nothing to update")
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return model.Task{}, invalid("title is required")
		}
		p.Title = &title
	}
	if p.Status != nil && !p.Status.Valid() {
		return model.Task{}, invalid("unknown status %q", *p.Status)
	}

	task, err := s.api.PatchTask(ctx, id, p)
	s.mutated(ctx, KindTask, "patch", id, err)
	return task, err
}

// ChangeStatus moves a task to status. Every transition is allowed.
func (s *Service) ChangeStatus(ctx context.Context, id model.ID, status model.TaskStatus) (model.Task, error) {
	if err := requireID(KindTask, id); err != nil {
		return model.Task{}, err
	}
	if !status.Valid() {
		return model.Task{}, invalid("unknown status %q", status)
	}

	task, err := s.api.ChangeTaskStatus(ctx, id, status)
	s.mutated(ctx, KindTask, "status", id, err)
	return task, err
}

// Assign sets the assignee, or clears it when userID is nil.
func (s *Service) Assign(ctx context.Context, id model.ID, userID *model.ID) (model.Task, error) {
	if err := requireID(KindTask, id); err != nil {
		return model.Task{}, err
	}
	if userID != nil && userID.IsZero() {
		userID = nil
	}

	task, err := s.api.AssignTask(ctx, id, userID)
	s.mutated(ctx, KindTask, "assign", id, err)
	return task, err
}

// AssignProject sets the project, or clears it when projectID is nil.
func (s *Service) AssignProject(ctx context.Context, id model.ID, projectID *model.ID) (model.Task, error) {
	if err := requireID(KindTask, id); err != nil {
		return model.Task{}, err
	}
	if projectID != nil && projectID.IsZero() {
		projectID = nil
	}

	task, err := s.api.AssignTaskProject(ctx, id, projectID)
	s.mutated(ctx, KindTask, "project", id, err)
	return task, err
}

// TakeTask assigns the task to userID and starts it if it was still TODO.
func (s *Service) TakeTask(ctx context.Context, task model.Task, userID model.ID) (model.Task, error) {
	if userID.IsZero() {
		return model.Task{}, invalid("no current user")
	}

	updated, err := s.Assign(ctx, task.ID, &userID)
	if err != nil {
		return model.Task{}, err
	}
	if updated.Status != model.StatusTodo {
		return updated, nil
	}
	return s.ChangeStatus(ctx, task.ID, model.StatusDoing)
}
