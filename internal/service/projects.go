package service

import (
	"context"
	"strings"

	"github.com/nhle/teamflow/internal/model"
)

func normaliseProjectInput(in model.ProjectInput) (model.ProjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Emoji = strings.TrimSpace(in.Emoji)
	if in.Name == "" {
		return in, invalid("project name is required")
	}
	return in, nil
}

// CreateProject creates a project. The name is required.
func (s *Service) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	in, err := normaliseProjectInput(in)
	if err != nil {
		return model.Project{}, err
	}

	p, err := s.api.CreateProject(ctx, in)
	s.mutated(ctx, KindProject, "create", p.ID, err)
	return p, err
}

// UpdateProject edits a project. The name is required.
func (s *Service) UpdateProject(ctx context.Context, id model.ID, in model.ProjectInput) (model.Project, error) {
	if err := requireID(KindProject, id); err != nil {
		return model.Project{}, err
	}
	in, err := normaliseProjectInput(in)
	if err != nil {
		return model.Project{}, err
	}

	p, err := s.api.UpdateProject(ctx, id, in)
	s.mutated(ctx, KindProject, "update", id, err)
	return p, err
}
