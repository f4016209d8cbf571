package board

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poorman/TaskFlow/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: 1, Title: "Design landing page", Status: models.StatusTodo, ProjectID: 1, Price: ptr(100.0)},
		{ID: 2, Title: "Fix login bug", Status: models.StatusDone, ProjectID: 1, Price: ptr(300.0)},
		{ID: 3, Title: "Write docs", Description: ptr("user guide"), Status: models.StatusInProgress, ProjectID: 2},
		{ID: 4, Title: "Old chore", Status: models.StatusDone, ProjectID: 2, IsArchived: true},
	}
}

func TestIncompleteAndCompleted(t *testing.T) {
	tasks := sampleTasks()

	incomplete := Incomplete(tasks)
	require.Len(t, incomplete, 2)
	for _, task := range incomplete {
		require.NotEqual(t, models.StatusDone, task.Status)
	}

	completed := Completed(tasks)
	require.Len(t, completed, 1) // archived done task excluded
	require.Equal(t, int64(2), completed[0].ID)
}

func TestFilterByProject(t *testing.T) {
	tasks := sampleTasks()

	require.Len(t, FilterByProject(tasks, nil), 4)

	filtered := FilterByProject(tasks, ptr(int64(1)))
	require.Len(t, filtered, 2)
	for _, task := range filtered {
		require.Equal(t, int64(1), task.ProjectID)
	}
}

func TestMatchSearch(t *testing.T) {
	tasks := sampleTasks()

	require.Len(t, MatchSearch(tasks, ""), 4)
	require.Len(t, MatchSearch(tasks, "LOGIN"), 1)
	require.Len(t, MatchSearch(tasks, "user guide"), 1) // matches description
	require.Empty(t, MatchSearch(tasks, "nonexistent"))
}

func TestCompletionPercent_MoneyBased(t *testing.T) {
	// 300 of 400 earned => 75%, regardless of task counts.
	require.Equal(t, 75, CompletionPercent(sampleTasks()))
}

func TestCompletionPercent_TaskFallback(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Status: models.StatusDone},
		{ID: 2, Status: models.StatusTodo},
		{ID: 3, Status: models.StatusTodo},
		{ID: 4, Status: models.StatusInReview},
	}
	require.Equal(t, 25, CompletionPercent(tasks))
	require.Equal(t, 0, CompletionPercent(nil))
}

func TestTotalPrice_ExcludesUnpriced(t *testing.T) {
	// Task 3 has no price and the archived task would not count anyway.
	require.Equal(t, 400.0, TotalPrice(sampleTasks()))
}

func TestByStatus(t *testing.T) {
	groups := ByStatus(sampleTasks())
	require.Len(t, groups[models.StatusTodo], 1)
	require.Len(t, groups[models.StatusDone], 1) // archived excluded
	require.Len(t, groups[models.StatusInProgress], 1)
	require.Empty(t, groups[models.StatusBlocked])
}
