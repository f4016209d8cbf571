package apitest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/poorman/TaskFlow/internal/models"
)

func (s *Server) orgProjectIDs(orgID int64) ([]int64, error) {
	var ids []int64
	err := s.DB.Model(&projectRow{}).Where("organization_id = ?", orgID).Pluck("id", &ids).Error
	return ids, err
}

// enrich fills the denormalized name fields the real backend serves.
func (s *Server) enrich(task models.Task) models.Task {
	var project projectRow
	if err := s.DB.First(&project, task.ProjectID).Error; err == nil {
		task.ProjectName = project.Name
	}
	if task.AssigneeID != nil {
		var assignee userRow
		if err := s.DB.First(&assignee, *task.AssigneeID).Error; err == nil {
			task.AssigneeName = displayName(assignee)
		}
	}
	var creator userRow
	if err := s.DB.First(&creator, task.CreatedByID).Error; err == nil {
		task.CreatorName = displayName(creator)
	}
	return task
}

func displayName(u userRow) string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}

func (s *Server) handleListTasks(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	projectIDs, err := s.orgProjectIDs(user.OrganizationID)
	if err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	if len(projectIDs) == 0 {
		c.JSON(http.StatusOK, []any{})
		return
	}

	query := s.DB.Where("project_id IN ?", projectIDs).Where("is_archived = ?", false)
	if v := c.Query("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			detailError(c, http.StatusUnprocessableEntity, "Invalid project_id")
			return
		}
		query = query.Where("project_id = ?", id)
	}
	if v := c.Query("status"); v != "" {
		query = query.Where("status = ?", v)
	}
	if v := c.Query("assignee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			detailError(c, http.StatusUnprocessableEntity, "Invalid assignee_id")
			return
		}
		query = query.Where("assignee_id = ?", id)
	}

	var rows []taskRow
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	out := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.enrich(row.toModel()))
	}
	c.JSON(http.StatusOK, out)
}

type taskCreateRequest struct {
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	ProjectID      int64    `json:"project_id"`
	AssigneeID     *int64   `json:"assignee_id"`
	DueDate        *string  `json:"due_date"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Price          *float64 `json:"price"`
	Tags           []string `json:"tags"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		validationError(c, "title", "field required")
		return
	}
	var project projectRow
	if err := s.DB.First(&project, "id = ? AND organization_id = ?", req.ProjectID, user.OrganizationID).Error; err != nil {
		detailError(c, http.StatusNotFound, "Project not found")
		return
	}
	if req.Status == "" {
		req.Status = string(models.StatusTodo)
	}
	if req.Priority == "" {
		req.Priority = string(models.PriorityMedium)
	}

	row := taskRow{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		ProjectID:      req.ProjectID,
		AssigneeID:     req.AssigneeID,
		CreatedByID:    user.ID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Price:          req.Price,
		Tags:           joinTags(req.Tags),
		CreatedAt:      nowStamp(),
	}
	if row.Status == string(models.StatusDone) {
		completed := nowStamp()
		row.CompletedAt = &completed
	}
	if err := s.DB.Create(&row).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to create task")
		return
	}
	s.broadcastTaskUpdate(user.OrganizationID, "created", row.ID)
	c.JSON(http.StatusOK, s.enrich(row.toModel()))
}

func (s *Server) findTask(c *gin.Context, orgID int64) (taskRow, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detailError(c, http.StatusUnprocessableEntity, "Invalid task id")
		return taskRow{}, false
	}
	projectIDs, err := s.orgProjectIDs(orgID)
	if err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to fetch task")
		return taskRow{}, false
	}
	var row taskRow
	if err := s.DB.First(&row, "id = ? AND project_id IN ?", id, projectIDs).Error; err != nil {
		detailError(c, http.StatusNotFound, "Task not found")
		return taskRow{}, false
	}
	return row, true
}

func (s *Server) handleGetTask(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	row, ok := s.findTask(c, user.OrganizationID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.enrich(row.toModel()))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	row, ok := s.findTask(c, user.OrganizationID)
	if !ok {
		return
	}
	var upd models.TaskUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if upd.Title != nil {
		row.Title = *upd.Title
	}
	if upd.Description != nil {
		row.Description = upd.Description
	}
	if upd.Status != nil {
		next := string(*upd.Status)
		// completed_at is a server-derived field: set on entering done,
		// cleared on leaving it. Clients pick it up via reconciliation.
		if next == string(models.StatusDone) && row.Status != string(models.StatusDone) {
			completed := nowStamp()
			row.CompletedAt = &completed
		} else if next != string(models.StatusDone) {
			row.CompletedAt = nil
		}
		row.Status = next
	}
	if upd.Priority != nil {
		row.Priority = string(*upd.Priority)
	}
	if upd.ProjectID != nil {
		row.ProjectID = *upd.ProjectID
	}
	if upd.AssigneeID != nil {
		row.AssigneeID = upd.AssigneeID
	}
	if upd.DueDate != nil {
		row.DueDate = upd.DueDate
	}
	if upd.EstimatedHours != nil {
		row.EstimatedHours = upd.EstimatedHours
	}
	if upd.ActualHours != nil {
		row.ActualHours = upd.ActualHours
	}
	if upd.Price != nil {
		row.Price = upd.Price
	}
	if upd.Tags != nil {
		row.Tags = joinTags(upd.Tags)
	}
	if upd.PositionX != nil {
		row.PositionX = upd.PositionX
	}
	if upd.PositionY != nil {
		row.PositionY = upd.PositionY
	}
	if upd.BoxWidth != nil {
		row.BoxWidth = upd.BoxWidth
	}
	if upd.BoxHeight != nil {
		row.BoxHeight = upd.BoxHeight
	}
	updated := nowStamp()
	row.UpdatedAt = &updated

	if err := s.DB.Save(&row).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to update task")
		return
	}
	s.broadcastTaskUpdate(user.OrganizationID, "updated", row.ID)
	c.JSON(http.StatusOK, s.enrich(row.toModel()))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	row, ok := s.findTask(c, user.OrganizationID)
	if !ok {
		return
	}
	if err := s.DB.Delete(&row).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	s.broadcastTaskUpdate(user.OrganizationID, "deleted", row.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (s *Server) handleArchiveTask(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	row, ok := s.findTask(c, user.OrganizationID)
	if !ok {
		return
	}
	row.IsArchived = true
	updated := nowStamp()
	row.UpdatedAt = &updated
	if err := s.DB.Save(&row).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to archive task")
		return
	}
	s.broadcastTaskUpdate(user.OrganizationID, "archived", row.ID)
	c.JSON(http.StatusOK, s.enrich(row.toModel()))
}
