package apitest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListProjects(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var rows []projectRow
	if err := s.DB.Where("organization_id = ? AND is_active = ?", user.OrganizationID, true).Order("id asc").Find(&rows).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to fetch projects")
		return
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	c.JSON(http.StatusOK, out)
}

type projectCreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

func (s *Server) handleCreateProject(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var req projectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		validationError(c, "name", "field required")
		return
	}
	if req.Color == "" {
		req.Color = "#3B82F6"
	}
	row := projectRow{
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: user.OrganizationID,
		OwnerID:        user.ID,
		IsActive:       true,
		Color:          req.Color,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to create project")
		return
	}
	c.JSON(http.StatusOK, row.toModel())
}

func (s *Server) findProject(c *gin.Context, orgID int64) (projectRow, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detailError(c, http.StatusUnprocessableEntity, "Invalid project id")
		return projectRow{}, false
	}
	var row projectRow
	if err := s.DB.First(&row, "id = ? AND organization_id = ?", id, orgID).Error; err != nil {
		detailError(c, http.StatusNotFound, "Project not found")
		return projectRow{}, false
	}
	return row, true
}

func (s *Server) handleGetProject(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	row, ok := s.findProject(c, user.OrganizationID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, row.toModel())
}

type projectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	row, ok := s.findProject(c, user.OrganizationID)
	if !ok {
		return
	}
	var req projectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil {
		row.Name = *req.Name
	}
	if req.Description != nil {
		row.Description = req.Description
	}
	if req.Color != nil {
		row.Color = *req.Color
	}
	if err := s.DB.Save(&row).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, row.toModel())
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	row, ok := s.findProject(c, user.OrganizationID)
	if !ok {
		return
	}
	if err := s.DB.Where("project_id = ?", row.ID).Delete(&taskRow{}).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to delete project tasks")
		return
	}
	if err := s.DB.Delete(&row).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	s.broadcastTaskUpdate(user.OrganizationID, "deleted", row.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
