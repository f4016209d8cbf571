package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/poorman/TaskFlow/internal/models"
)

// TasksAPI covers /api/v1/tasks.
type TasksAPI struct {
	c *Client
}

// List returns tasks, optionally narrowed by project, status or assignee.
func (t TasksAPI) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query := url.Values{}
	if filter.ProjectID != nil {
		query.Set("project_id", strconv.FormatInt(*filter.ProjectID, 10))
	}
	if filter.Status != nil {
		query.Set("status", string(*filter.Status))
	}
	if filter.AssigneeID != nil {
		query.Set("assignee_id", strconv.FormatInt(*filter.AssigneeID, 10))
	}
	var tasks []models.Task
	if err := t.c.do(ctx, http.MethodGet, "/api/v1/tasks", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get fetches a single task.
func (t TasksAPI) Get(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := t.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create adds a task and returns the server's version of it.
func (t TasksAPI) Create(ctx context.Context, req models.TaskCreate) (*models.Task, error) {
	var task models.Task
	if err := t.c.do(ctx, http.MethodPost, "/api/v1/tasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update patches a task; only non-nil fields change.
func (t TasksAPI) Update(ctx context.Context, id int64, upd models.TaskUpdate) (*models.Task, error) {
	var task models.Task
	if err := t.c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/tasks/%d", id), nil, upd, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task permanently.
func (t TasksAPI) Delete(ctx context.Context, id int64) error {
	return t.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", id), nil, nil, nil)
}

// Archive hides a task from the default list without deleting it.
func (t TasksAPI) Archive(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := t.c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/tasks/%d/archive", id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
