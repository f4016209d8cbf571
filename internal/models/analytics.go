package models

// TopContributor is a leaderboard row in the analytics dashboard.
type TopContributor struct {
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	TasksCompleted int    `json:"tasks_completed"`
}

// Analytics is the server-computed dashboard aggregate. It is read-only on
// the client; the store replaces it wholesale on every refresh.
type Analytics struct {
	TotalTasks                int                `json:"total_tasks"`
	TasksByStatus             map[string]int     `json:"tasks_by_status"`
	TasksByPriority           map[string]int     `json:"tasks_by_priority"`
	TasksCompletedToday       int                `json:"tasks_completed_today"`
	TasksCompletedThisWeek    int                `json:"tasks_completed_this_week"`
	AverageCompletionTimeHour *float64           `json:"average_completion_time_hours"`
	TasksOverdue              int                `json:"tasks_overdue"`
	ProductivityScore         float64            `json:"productivity_score"`
	TopContributors           []TopContributor   `json:"top_contributors"`
	TotalPrice                float64            `json:"total_price"`
	PriceByStatus             map[string]float64 `json:"price_by_status"`
	PriceByPriority           map[string]float64 `json:"price_by_priority"`
}

// TimeSeriesPoint is one bucket of GET /api/v1/analytics/timeseries.
type TimeSeriesPoint struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}
