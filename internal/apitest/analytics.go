package apitest

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poorman/TaskFlow/internal/models"
)

func parseStamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *Server) orgTasks(orgID int64) ([]taskRow, error) {
	projectIDs, err := s.orgProjectIDs(orgID)
	if err != nil {
		return nil, err
	}
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var rows []taskRow
	err = s.DB.Where("project_id IN ? AND is_archived = ?", projectIDs, false).Find(&rows).Error
	return rows, err
}

func (s *Server) handleDashboard(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	rows, err := s.orgTasks(user.OrganizationID)
	if err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))

	out := models.Analytics{
		TasksByStatus:   map[string]int{},
		TasksByPriority: map[string]int{},
		PriceByStatus:   map[string]float64{},
		PriceByPriority: map[string]float64{},
		TopContributors: []models.TopContributor{},
	}
	doneByAssignee := map[int64]int{}
	var completionHours []float64

	for _, row := range rows {
		out.TotalTasks++
		out.TasksByStatus[row.Status]++
		out.TasksByPriority[row.Priority]++

		// Unpriced tasks are excluded from every price aggregate rather
		// than counted as zero.
		if row.Price != nil {
			out.TotalPrice += *row.Price
			out.PriceByStatus[row.Status] += *row.Price
			out.PriceByPriority[row.Priority] += *row.Price
		}

		if row.CompletedAt != nil {
			if done, ok := parseStamp(*row.CompletedAt); ok {
				if !done.Before(today) {
					out.TasksCompletedToday++
				}
				if !done.Before(weekStart) {
					out.TasksCompletedThisWeek++
				}
				if created, ok := parseStamp(row.CreatedAt); ok && done.After(created) {
					completionHours = append(completionHours, done.Sub(created).Hours())
				}
			}
			if row.AssigneeID != nil {
				doneByAssignee[*row.AssigneeID]++
			}
		}

		if row.DueDate != nil && row.Status != string(models.StatusDone) {
			if due, ok := parseStamp(*row.DueDate); ok && due.Before(now) {
				out.TasksOverdue++
			}
		}
	}

	if len(completionHours) > 0 {
		var sum float64
		for _, h := range completionHours {
			sum += h
		}
		avg := sum / float64(len(completionHours))
		out.AverageCompletionTimeHour = &avg
	}
	if out.TotalTasks > 0 {
		done := out.TasksByStatus[string(models.StatusDone)]
		out.ProductivityScore = math.Round(float64(done) / float64(out.TotalTasks) * 100)
	}

	for assigneeID, count := range doneByAssignee {
		var assignee userRow
		if err := s.DB.First(&assignee, assigneeID).Error; err != nil {
			continue
		}
		out.TopContributors = append(out.TopContributors, models.TopContributor{
			UserID:         assigneeID,
			Name:           displayName(assignee),
			Email:          assignee.Email,
			TasksCompleted: count,
		})
	}
	sort.Slice(out.TopContributors, func(i, j int) bool {
		return out.TopContributors[i].TasksCompleted > out.TopContributors[j].TasksCompleted
	})

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleTimeSeries(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	days := 30
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	rows, err := s.orgTasks(user.OrganizationID)
	if err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to compute timeseries")
		return
	}

	type bucket struct{ created, completed int }
	buckets := map[string]*bucket{}
	start := time.Now().UTC().AddDate(0, 0, -days+1).Truncate(24 * time.Hour)
	for d := 0; d < days; d++ {
		buckets[start.AddDate(0, 0, d).Format("2006-01-02")] = &bucket{}
	}

	for _, row := range rows {
		if created, ok := parseStamp(row.CreatedAt); ok {
			if b, ok := buckets[created.Format("2006-01-02")]; ok {
				b.created++
			}
		}
		if row.CompletedAt != nil {
			if done, ok := parseStamp(*row.CompletedAt); ok {
				if b, ok := buckets[done.Format("2006-01-02")]; ok {
					b.completed++
				}
			}
		}
	}

	points := make([]models.TimeSeriesPoint, 0, days)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format("2006-01-02")
		b := buckets[date]
		points = append(points, models.TimeSeriesPoint{Date: date, Created: b.created, Completed: b.completed})
	}
	c.JSON(http.StatusOK, points)
}
