package apitest

import (
	"github.com/poorman/TaskFlow/internal/models"
)

// Storage rows for the fake backend. They mirror the real backend's schema
// closely enough to serve the wire model.

type userRow struct {
	ID             int64  `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	FullName       *string
	IsActive       bool `gorm:"default:true"`
	IsAdmin        bool
	OrganizationID int64 `gorm:"index"`
}

func (userRow) TableName() string { return "users" }

type orgRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (orgRow) TableName() string { return "organizations" }

type projectRow struct {
	ID             int64  `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Description    *string
	OrganizationID int64 `gorm:"index"`
	OwnerID        int64
	IsActive       bool   `gorm:"default:true"`
	Color          string `gorm:"default:'#3B82F6'"`
}

func (projectRow) TableName() string { return "projects" }

type taskRow struct {
	ID             int64  `gorm:"primaryKey"`
	Title          string `gorm:"not null"`
	Description    *string
	Status         string `gorm:"default:'todo';index"`
	Priority       string `gorm:"default:'medium'"`
	ProjectID      int64  `gorm:"index"`
	AssigneeID     *int64
	CreatedByID    int64
	DueDate        *string
	CompletedAt    *string
	EstimatedHours *float64
	ActualHours    *float64
	Price          *float64
	Tags           string // comma-joined; empty means none
	PositionX      *float64
	PositionY      *float64
	BoxWidth       *float64
	BoxHeight      *float64
	IsArchived     bool `gorm:"default:false;index"`
	CreatedAt      string
	UpdatedAt      *string
}

func (taskRow) TableName() string { return "tasks" }

func (u userRow) toModel(orgName string) models.User {
	user := models.User{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		IsActive:       u.IsActive,
		IsAdmin:        u.IsAdmin,
		OrganizationID: u.OrganizationID,
	}
	if orgName != "" {
		user.OrganizationName = &orgName
	}
	return user
}

func (p projectRow) toModel() models.Project {
	return models.Project{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		OrganizationID: p.OrganizationID,
		OwnerID:        p.OwnerID,
		IsActive:       p.IsActive,
		Color:          p.Color,
	}
}

func (t taskRow) toModel() models.Task {
	task := models.Task{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         models.TaskStatus(t.Status),
		Priority:       models.TaskPriority(t.Priority),
		ProjectID:      t.ProjectID,
		AssigneeID:     t.AssigneeID,
		CreatedByID:    t.CreatedByID,
		DueDate:        t.DueDate,
		CompletedAt:    t.CompletedAt,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Price:          t.Price,
		Tags:           splitTags(t.Tags),
		PositionX:      t.PositionX,
		PositionY:      t.PositionY,
		BoxWidth:       t.BoxWidth,
		BoxHeight:      t.BoxHeight,
		IsArchived:     t.IsArchived,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	return task
}
