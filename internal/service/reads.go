package service

import (
	"context"

	"github.com/nhle/teamflow/internal/cache"
	"github.com/nhle/teamflow/internal/model"
)

// usersPageSize is large enough to list every user of a team.
const usersPageSize = 500

// TasksKey is the cache key of the task list filtered by status on the
// server. An empty status lists every task.
func TasksKey(status model.TaskStatus) cache.Key {
	return cache.NewKey(cache.ResourceTasks, "status", string(status))
}

// Keys of the unparameterised resources.
var (
	StatsKey     = cache.NewKey(cache.ResourceStats)
	UsersKey     = cache.NewKey(cache.ResourceUsers)
	ProjectsKey  = cache.NewKey(cache.ResourceProjects)
	MeetingsKey  = cache.NewKey(cache.ResourceMeetings)
	MyTasksKey   = cache.NewKey(cache.ResourceTasks, "scope", "my")
	WeekTasksKey = cache.NewKey(cache.ResourceTasks, "scope", "week")
)

func read[T any](ctx context.Context, c *cache.Cache, key cache.Key, force bool, fetch func(context.Context) (T, error)) (T, error) {
	if force {
		return cache.Refresh(ctx, c, key, fetch)
	}
	return cache.Get(ctx, c, key, fetch)
}

// Tasks lists tasks, optionally filtered by status on the server. force
// bypasses a fresh cache entry.
func (s *Service) Tasks(ctx context.Context, status model.TaskStatus, force bool) ([]model.Task, error) {
	return read(ctx, s.cache, TasksKey(status), force, func(ctx context.Context) ([]model.Task, error) {
		return s.api.ListTasks(ctx, model.TaskQuery{Status: status})
	})
}

// MyTasks lists the tasks created by or assigned to the current user.
func (s *Service) MyTasks(ctx context.Context, force bool) ([]model.Task, error) {
	return read(ctx, s.cache, MyTasksKey, force, func(ctx context.Context) ([]model.Task, error) {
		return s.api.MyTasks(ctx, "")
	})
}

// WeekTasks lists the tasks due this week.
func (s *Service) WeekTasks(ctx context.Context, force bool) ([]model.Task, error) {
	return read(ctx, s.cache, WeekTasksKey, force, s.api.WeekTasks)
}

// Task returns one task. A copy from a fresh cached task list is
// preferred; otherwise the task is fetched on its own.
func (s *Service) Task(ctx context.Context, id model.ID) (model.Task, error) {
	if tasks, ok, err := cache.Fresh[[]model.Task](ctx, s.cache, TasksKey("")); err == nil && ok {
		if t, found := FindTask(tasks, id); found {
			return t, nil
		}
	}
	key := cache.NewKey(cache.ResourceTasks, "id", id.String())
	return cache.Get(ctx, s.cache, key, func(ctx context.Context) (model.Task, error) {
		return s.api.GetTask(ctx, id)
	})
}

// Stats returns the server task counts.
func (s *Service) Stats(ctx context.Context, force bool) (model.Stats, error) {
	return read(ctx, s.cache, StatsKey, force, s.api.Stats)
}

// Users lists every user.
func (s *Service) Users(ctx context.Context, force bool) ([]model.User, error) {
	return read(ctx, s.cache, UsersKey, force, func(ctx context.Context) ([]model.User, error) {
		return s.api.ListUsers(ctx, 0, usersPageSize)
	})
}

// Projects lists every project.
func (s *Service) Projects(ctx context.Context, force bool) ([]model.Project, error) {
	return read(ctx, s.cache, ProjectsKey, force, s.api.ListProjects)
}

// Meetings lists every meeting note.
func (s *Service) Meetings(ctx context.Context, force bool) ([]model.Meeting, error) {
	return read(ctx, s.cache, MeetingsKey, force, s.api.ListMeetings)
}

// FindTask returns the task with id from tasks.
func FindTask(tasks []model.Task, id model.ID) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
