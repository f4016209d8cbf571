// Package localdb persists the last fetched task/project snapshot in a local
// SQLite file so the CLI can still render the board when the backend is
// unreachable. It is a cache, never a source of truth: every successful
// refetch overwrites it wholesale.
package localdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/poorman/TaskFlow/internal/models"
)

const lastSyncKey = "last_sync"

// taskRow keeps a few queryable columns plus the full wire payload.
type taskRow struct {
	ID        int64  `gorm:"primaryKey"`
	ProjectID int64  `gorm:"index"`
	Status    string `gorm:"index"`
	Payload   []byte `gorm:"not null"`
}

func (taskRow) TableName() string { return "task_snapshots" }

type projectRow struct {
	ID      int64  `gorm:"primaryKey"`
	Payload []byte `gorm:"not null"`
}

func (projectRow) TableName() string { return "project_snapshots" }

type metaRow struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (metaRow) TableName() string { return "snapshot_meta" }

// Store wraps the snapshot database.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the snapshot file and migrates its schema.
// Using glebarez/sqlite, a pure Go driver, so no CGO is required.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := db.AutoMigrate(&taskRow{}, &projectRow{}, &metaRow{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveTasks replaces the stored task snapshot.
func (s *Store) SaveTasks(tasks []models.Task) error {
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode task %d: %w", t.ID, err)
		}
		rows = append(rows, taskRow{ID: t.ID, ProjectID: t.ProjectID, Status: string(t.Status), Payload: payload})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&taskRow{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return setMeta(tx, lastSyncKey, time.Now().UTC().Format(time.RFC3339))
	})
}

// SaveProjects replaces the stored project snapshot.
func (s *Store) SaveProjects(projects []models.Project) error {
	rows := make([]projectRow, 0, len(projects))
	for _, p := range projects {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode project %d: %w", p.ID, err)
		}
		rows = append(rows, projectRow{ID: p.ID, Payload: payload})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&projectRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// LoadTasks returns the stored task snapshot.
func (s *Store) LoadTasks() ([]models.Task, error) {
	var rows []taskRow
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		var t models.Task
		if err := json.Unmarshal(row.Payload, &t); err != nil {
			return nil, fmt.Errorf("decode task %d: %w", row.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// LoadProjects returns the stored project snapshot.
func (s *Store) LoadProjects() ([]models.Project, error) {
	var rows []projectRow
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		var p models.Project
		if err := json.Unmarshal(row.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode project %d: %w", row.ID, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// LastSync reports when the snapshot was last written, if ever.
func (s *Store) LastSync() (time.Time, bool) {
	var row metaRow
	if err := s.db.First(&row, "key = ?", lastSyncKey).Error; err != nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, row.Value)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func setMeta(tx *gorm.DB, key, value string) error {
	row := metaRow{Key: key, Value: value}
	if err := tx.Save(&row).Error; err != nil {
		return err
	}
	return nil
}
