package localdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poorman/TaskFlow/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_TaskRoundTrip(t *testing.T) {
	s := openTestStore(t)

	price := 99.5
	desc := "write the report"
	tasks := []models.Task{
		{ID: 1, Title: "Report", Description: &desc, Status: models.StatusTodo, Priority: models.PriorityHigh, ProjectID: 7, CreatedByID: 1, Price: &price, Tags: []string{"q3"}, CreatedAt: "2026-08-01T10:00:00Z"},
		{ID: 2, Title: "Review", Status: models.StatusDone, Priority: models.PriorityLow, ProjectID: 7, CreatedByID: 1, CreatedAt: "2026-08-02T10:00:00Z"},
	}
	require.NoError(t, s.SaveTasks(tasks))

	loaded, err := s.LoadTasks()
	require.NoError(t, err)
	require.Equal(t, tasks, loaded)

	ts, ok := s.LastSync()
	require.True(t, ok)
	require.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestStore_SaveReplacesSnapshot(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveTasks([]models.Task{{ID: 1, Title: "old", ProjectID: 1, Status: models.StatusTodo}}))
	require.NoError(t, s.SaveTasks([]models.Task{{ID: 2, Title: "new", ProjectID: 1, Status: models.StatusTodo}}))

	loaded, err := s.LoadTasks()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, int64(2), loaded[0].ID)
}

func TestStore_ProjectRoundTrip(t *testing.T) {
	s := openTestStore(t)

	projects := []models.Project{
		{ID: 7, Name: "Core", OrganizationID: 1, OwnerID: 1, IsActive: true, Color: "#3B82F6"},
	}
	require.NoError(t, s.SaveProjects(projects))

	loaded, err := s.LoadProjects()
	require.NoError(t, err)
	require.Equal(t, projects, loaded)
}

func TestStore_EmptySnapshot(t *testing.T) {
	s := openTestStore(t)

	tasks, err := s.LoadTasks()
	require.NoError(t, err)
	require.Empty(t, tasks)

	_, ok := s.LastSync()
	require.False(t, ok)
}
