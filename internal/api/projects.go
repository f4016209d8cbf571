package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/poorman/TaskFlow/internal/models"
)

// ProjectsAPI covers /api/v1/projects.
type ProjectsAPI struct {
	c *Client
}

// List returns every project visible to the caller's organization.
func (p ProjectsAPI) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := p.c.do(ctx, http.MethodGet, "/api/v1/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Get fetches a single project.
func (p ProjectsAPI) Get(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	if err := p.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", id), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Create adds a project. An empty color falls back to the server default.
func (p ProjectsAPI) Create(ctx context.Context, req models.ProjectCreate) (*models.Project, error) {
	if req.Color == "" {
		req.Color = "#3B82F6"
	}
	var project models.Project
	if err := p.c.do(ctx, http.MethodPost, "/api/v1/projects", nil, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Update patches a project.
func (p ProjectsAPI) Update(ctx context.Context, id int64, upd models.ProjectUpdate) (*models.Project, error) {
	var project models.Project
	if err := p.c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/projects/%d", id), nil, upd, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project.
func (p ProjectsAPI) Delete(ctx context.Context, id int64) error {
	return p.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", id), nil, nil, nil)
}
