package api

import (
	"context"
	"fmt"

	"github.com/nhle/teamflow/internal/model"
)

// ListProjects returns every project.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := c.get(ctx, "/projects", nil, &projects); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	var p model.Project
	if err := c.post(ctx, "/projects", in, &p); err != nil {
		return model.Project{}, fmt.Errorf("creating project: %w", err)
	}
	return p, nil
}

// UpdateProject patches a project.
func (c *Client) UpdateProject(ctx context.Context, id model.ID, in model.ProjectInput) (model.Project, error) {
	var p model.Project
	if err := c.patch(ctx, idPath("projects", id), in, &p); err != nil {
		return model.Project{}, fmt.Errorf("updating project %s: %w", id, err)
	}
	return p, nil
}

// DeleteProject removes a project. Tasks keep a dangling reference that the
// server is expected to clear.
func (c *Client) DeleteProject(ctx context.Context, id model.ID) error {
	if err := c.delete(ctx, idPath("projects", id)); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return nil
}
