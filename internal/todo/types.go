package todo

import "time"

// Priority levels for todos.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority belongs to the closed set.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Todo is a single task owned by exactly one user.
type Todo struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Completed    bool       `json:"completed"`
	Priority     Priority   `json:"priority"`
	Category     string     `json:"category,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	DisplayOrder *int       `json:"display_order,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Overdue reports whether the todo has a due date in the past and is still
// open.
func (t *Todo) Overdue(now time.Time) bool {
	return t.DueDate != nil && !t.Completed && now.After(*t.DueDate)
}

// Filter narrows a listing. Nil/empty fields are ignored. Search matches
// title or description, case-insensitively.
type Filter struct {
	Completed *bool
	Priority  *Priority
	Category  string
	Search    string
}

// Stats summarizes a user's todos.
type Stats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Active    int64 `json:"active"`
	Overdue   int64 `json:"overdue"`
}

// ReorderItem assigns a display order to one todo during drag-and-drop
// reordering.
type ReorderItem struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}
