package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/teamflow/internal/cache"
	"github.com/nhle/teamflow/internal/metrics"
	"github.com/nhle/teamflow/internal/model"
)

// ErrValidation marks input rejected before any request was sent.
var ErrValidation = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// API is the subset of the REST client the service uses.
type API interface {
	ListTasks(ctx context.Context, q model.TaskQuery) ([]model.Task, error)
	MyTasks(ctx context.Context, status model.TaskStatus) ([]model.Task, error)
	WeekTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id model.ID) (model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id model.ID, in model.TaskInput) (model.Task, error)
	PatchTask(ctx context.Context, id model.ID, p model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id model.ID) error
	ChangeTaskStatus(ctx context.Context, id model.ID, status model.TaskStatus) (model.Task, error)
	AssignTask(ctx context.Context, id model.ID, assigneeID *model.ID) (model.Task, error)
	AssignTaskProject(ctx context.Context, id model.ID, projectID *model.ID) (model.Task, error)

	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error)
	UpdateProject(ctx context.Context, id model.ID, in model.ProjectInput) (model.Project, error)
	DeleteProject(ctx context.Context, id model.ID) error

	ListMeetings(ctx context.Context) ([]model.Meeting, error)
	CreateMeeting(ctx context.Context, in model.MeetingInput) (model.Meeting, error)
	UpdateMeeting(ctx context.Context, id model.ID, in model.MeetingInput) (model.Meeting, error)
	DeleteMeeting(ctx context.Context, id model.ID) error

	ListUsers(ctx context.Context, skip, limit int) ([]model.User, error)
	Stats(ctx context.Context) (model.Stats, error)
}

// Service is the single entry point for reads (through the cache) and
// mutations (straight to the backend, then coarse invalidation).
type Service struct {
	api     API
	cache   *cache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics enables mutation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service.
func New(api API, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		api:    api,
		cache:  c,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the query cache the service reads through.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// mutated records the outcome of a mutation and, on success, invalidates
// every mutation resource. Invalidation failures are logged only; the
// mutation itself already succeeded.
func (s *Service) mutated(ctx context.Context, kind Kind, action string, id model.ID, err error) {
	s.metrics.Mutation(kind.String(), action, err)
	if err != nil {
		s.logger.Warn("mutation failed",
			zap.Stringer("kind", kind),
			zap.String("action", action),
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("mutation",
		zap.Stringer("kind", kind),
		zap.String("action", action),
		zap.String("id", id.String()),
	)
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), cache.MutationResources...); err != nil {
		s.logger.Warn("invalidating cache", zap.Error(err))
	}
}
