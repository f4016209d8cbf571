package models

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusDone       TaskStatus = "done"
	StatusBlocked    TaskStatus = "blocked"
)

// Statuses lists every task status in board order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusBlocked}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Priorities lists every task priority from least to most urgent.
var Priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Task represents a task as served by the TaskFlow API.
// Date fields are kept as the server's string representation; the client
// only ever displays them or sends them back verbatim.
type Task struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Description    *string      `json:"description"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	ProjectID      int64        `json:"project_id"`
	AssigneeID     *int64       `json:"assignee_id"`
	CreatedByID    int64        `json:"created_by_id"`
	DueDate        *string      `json:"due_date"`
	CompletedAt    *string      `json:"completed_at"`
	EstimatedHours *float64     `json:"estimated_hours"`
	ActualHours    *float64     `json:"actual_hours"`
	Price          *float64     `json:"price"`
	Tags           []string     `json:"tags"`
	PositionX      *float64     `json:"position_x,omitempty"`
	PositionY      *float64     `json:"position_y,omitempty"`
	BoxWidth       *float64     `json:"box_width,omitempty"`
	BoxHeight      *float64     `json:"box_height,omitempty"`
	IsArchived     bool         `json:"is_archived"`
	CreatedAt      string       `json:"created_at"`
	UpdatedAt      *string      `json:"updated_at"`
	AssigneeName   string       `json:"assignee_name,omitempty"`
	CreatorName    string       `json:"creator_name,omitempty"`
	ProjectName    string       `json:"project_name,omitempty"`
}

// Clone returns a deep copy of the task, so a stored snapshot cannot be
// mutated through shared pointers or the tags slice.
func (t Task) Clone() Task {
	c := t
	c.Description = clonePtr(t.Description)
	c.AssigneeID = clonePtr(t.AssigneeID)
	c.DueDate = clonePtr(t.DueDate)
	c.CompletedAt = clonePtr(t.CompletedAt)
	c.EstimatedHours = clonePtr(t.EstimatedHours)
	c.ActualHours = clonePtr(t.ActualHours)
	c.Price = clonePtr(t.Price)
	c.PositionX = clonePtr(t.PositionX)
	c.PositionY = clonePtr(t.PositionY)
	c.BoxWidth = clonePtr(t.BoxWidth)
	c.BoxHeight = clonePtr(t.BoxHeight)
	c.UpdatedAt = clonePtr(t.UpdatedAt)
	if t.Tags != nil {
		// Preserve empty-vs-nil: the server serves "tags": [] and the copy
		// must compare equal to a freshly decoded response.
		c.Tags = make([]string, len(t.Tags))
		copy(c.Tags, t.Tags)
	}
	return c
}

// CloneTasks deep-copies a task collection.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// TaskCreate is the payload for POST /api/v1/tasks.
type TaskCreate struct {
	Title          string       `json:"title"`
	Description    *string      `json:"description,omitempty"`
	Status         TaskStatus   `json:"status,omitempty"`
	Priority       TaskPriority `json:"priority,omitempty"`
	ProjectID      int64        `json:"project_id"`
	AssigneeID     *int64       `json:"assignee_id,omitempty"`
	DueDate        *string      `json:"due_date,omitempty"`
	EstimatedHours *float64     `json:"estimated_hours,omitempty"`
	Price          *float64     `json:"price,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
}

// TaskUpdate is the partial payload for PATCH /api/v1/tasks/{id}.
// Nil fields are omitted from the request and left untouched server-side.
type TaskUpdate struct {
	Title          *string       `json:"title,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Status         *TaskStatus   `json:"status,omitempty"`
	Priority       *TaskPriority `json:"priority,omitempty"`
	ProjectID      *int64        `json:"project_id,omitempty"`
	AssigneeID     *int64        `json:"assignee_id,omitempty"`
	DueDate        *string       `json:"due_date,omitempty"`
	EstimatedHours *float64      `json:"estimated_hours,omitempty"`
	ActualHours    *float64      `json:"actual_hours,omitempty"`
	Price          *float64      `json:"price,omitempty"`
	Tags           []string      `json:"tags,omitempty"`
	PositionX      *float64      `json:"position_x,omitempty"`
	PositionY      *float64      `json:"position_y,omitempty"`
	BoxWidth       *float64      `json:"box_width,omitempty"`
	BoxHeight      *float64      `json:"box_height,omitempty"`
}

// TaskFilter narrows GET /api/v1/tasks.
type TaskFilter struct {
	ProjectID  *int64
	Status     *TaskStatus
	AssigneeID *int64
}
