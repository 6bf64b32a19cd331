// Package store defines the storage-agnostic record store contract shared by
// the relational (gormstore) and document (mongostore) adapters. Identifiers
// are opaque strings; an identifier in the wrong format for the backend is
// indistinguishable from an unknown one and yields ErrNotFound.
package store

import (
	"context"
	"errors"

	"taskboard/internal/models"
)

// ErrNotFound is returned for unknown or malformed identifiers.
var ErrNotFound = errors.New("record not found")

// TaskFilter narrows FindTasks/CountTasks. Zero-value fields are ignored;
// set fields are AND-combined. Query matches title OR description,
// case-insensitive substring.
type TaskFilter struct {
	Query      string
	Status     string
	Priority   string
	ProjectID  string
	AssignedTo string
}

// Store is the record store contract. Mutating operations that belong to one
// logical unit of work should run inside Transact; the relational adapter
// makes the unit atomic, the document adapter executes it sequentially.
type Store interface {
	// Transact runs fn against a store view that groups its writes into a
	// single unit of work where the backend supports it.
	Transact(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
	CountProjects(ctx context.Context) (int64, error)

	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	FindTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	CountTasks(ctx context.Context, f TaskFilter) (int64, error)
	// ClearTaskProject unsets project_id on every task referencing the
	// project, so a project delete leaves no dangling references.
	ClearTaskProject(ctx context.Context, projectID string) error

	CreateComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, taskID string) ([]models.Comment, error)
	DeleteCommentsByTask(ctx context.Context, taskID string) error

	// History entries are append-only; they survive task deletion so the
	// DELETED entry keeps its audit value.
	CreateHistory(ctx context.Context, h *models.HistoryEntry) error
	// ListHistory returns entries newest first, up to limit. An empty taskID
	// returns entries across all tasks.
	ListHistory(ctx context.Context, taskID string, limit int) ([]models.HistoryEntry, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListUnreadNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
