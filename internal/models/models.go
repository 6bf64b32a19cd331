package models

import (
	"time"
)

// Task status values. The UI offers exactly these three.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Task priority values.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// History actions recorded against tasks.
const (
	ActionCreated       = "CREATED"
	ActionStatusChanged = "STATUS_CHANGED"
	ActionTitleChanged  = "TITLE_CHANGED"
	ActionDeleted       = "DELETED"
)

// Notification types.
const (
	NotifyTaskAssigned = "task_assigned"
	NotifyTaskUpdated  = "task_updated"
)

// IDs are opaque strings: UUIDs in the relational backend, 24-hex ObjectIDs
// in the document backend. Optional references are empty strings when unset.

type User struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	Username string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Password string `json:"-" gorm:"size:100;not null"` // bcrypt hash
}

type Project struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	Name        string `json:"name" gorm:"size:80;not null"`
	Description string `json:"description" gorm:"size:2000"`
}

type Task struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	Title          string     `json:"title" gorm:"size:100;not null"`
	Description    string     `json:"description" gorm:"size:5000"`
	Status         string     `json:"status" gorm:"size:20;not null;default:'Pending'"`
	Priority       string     `json:"priority" gorm:"size:20;not null;default:'Medium'"`
	ProjectID      string     `json:"project_id" gorm:"size:36;index"`
	AssignedTo     string     `json:"assigned_to" gorm:"size:36;index"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours float64    `json:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours"`
	CreatedBy      string     `json:"created_by" gorm:"size:36;not null"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Comment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	TaskID      string    `json:"task_id" gorm:"size:36;index;not null"`
	UserID      string    `json:"user_id" gorm:"size:36;not null"`
	CommentText string    `json:"comment_text" gorm:"size:3000;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryEntry is an append-only audit record of one change or lifecycle
// event on a task. Entries outlive the task they describe.
type HistoryEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TaskID    string    `json:"task_id" gorm:"size:36;index;not null"`
	UserID    string    `json:"user_id" gorm:"size:36;not null"`
	Action    string    `json:"action" gorm:"size:20;not null"`
	OldValue  string    `json:"old_value" gorm:"size:100"`
	NewValue  string    `json:"new_value" gorm:"size:100"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;index;not null"`
	Message   string    `json:"message" gorm:"size:200;not null"`
	Type      string    `json:"type" gorm:"size:30;not null"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// DueDateString renders the due date the way the HTTP surface expects it:
// ISO date or empty when unset.
func (t *Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format("2006-01-02")
}
