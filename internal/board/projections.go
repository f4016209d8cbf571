// Package board holds the presentation-side math for the task board: pure
// projections over store snapshots and the drag/resize geometry. Nothing in
// here owns state; views recompute these from the store on every change.
package board

import (
	"math"
	"strings"

	"github.com/poorman/TaskFlow/internal/models"
)

// Active filters out archived tasks.
func Active(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsArchived {
			out = append(out, t)
		}
	}
	return out
}

// Incomplete returns active tasks that are not done.
func Incomplete(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsArchived && t.Status != models.StatusDone {
			out = append(out, t)
		}
	}
	return out
}

// Completed returns active tasks that are done.
func Completed(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsArchived && t.Status == models.StatusDone {
			out = append(out, t)
		}
	}
	return out
}

// MatchSearch keeps tasks whose title or description contains query,
// case-insensitively. An empty query keeps everything.
func MatchSearch(tasks []models.Task, query string) []models.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), query) {
			out = append(out, t)
			continue
		}
		if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), query) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByProject keeps tasks of one project; a nil projectID keeps all.
func FilterByProject(tasks []models.Task, projectID *int64) []models.Task {
	if projectID == nil {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID == *projectID {
			out = append(out, t)
		}
	}
	return out
}

// ByStatus groups active tasks into board columns.
func ByStatus(tasks []models.Task) map[models.TaskStatus][]models.Task {
	out := make(map[models.TaskStatus][]models.Task, len(models.Statuses))
	for _, t := range tasks {
		if t.IsArchived {
			continue
		}
		out[t.Status] = append(out[t.Status], t)
	}
	return out
}

// CompletionPercent computes the chart's center percentage. When priced
// tasks exist the chart tracks money earned (done price over total price);
// otherwise it falls back to the plain completed-task ratio.
func CompletionPercent(tasks []models.Task) int {
	active := Active(tasks)
	if len(active) == 0 {
		return 0
	}

	var totalPrice, earnedPrice float64
	for _, t := range active {
		if t.Price == nil {
			continue
		}
		totalPrice += *t.Price
		if t.Status == models.StatusDone {
			earnedPrice += *t.Price
		}
	}
	if totalPrice > 0 {
		return int(math.Round(earnedPrice / totalPrice * 100))
	}

	done := 0
	for _, t := range active {
		if t.Status == models.StatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(active)) * 100))
}

// TotalPrice sums the price of tasks that carry one; unpriced tasks are
// excluded rather than treated as zero-cost entries in averages.
func TotalPrice(tasks []models.Task) float64 {
	var sum float64
	for _, t := range tasks {
		if !t.IsArchived && t.Price != nil {
			sum += *t.Price
		}
	}
	return sum
}
