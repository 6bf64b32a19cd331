package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/store"
	"taskboard/internal/validate"
)

// TaskInput carries raw form values for a task create or update. Numeric and
// date fields arrive as strings and are validated here.
type TaskInput struct {
	Title          string
	Description    string
	Status         string
	Priority       string
	ProjectID      string
	AssignedTo     string
	DueDate        string
	EstimatedHours string
}

type TaskService interface {
	Create(ctx context.Context, actorID string, in TaskInput) (*models.Task, error)
	Update(ctx context.Context, actorID, id string, in TaskInput) (*models.Task, error)
	Delete(ctx context.Context, actorID, id string) error
	Get(ctx context.Context, id string) (*models.Task, error)
}

type TaskServiceImpl struct {
	store store.Store
}

func NewTaskService(st store.Store) *TaskServiceImpl {
	return &TaskServiceImpl{store: st}
}

// validatedTaskFields is the outcome of checking a TaskInput.
type validatedTaskFields struct {
	title       string
	description string
	status      string
	priority    string
	projectID   string
	assignedTo  string
	dueDate     *time.Time
	dueDateOK   bool
	hours       float64
}

func (s *TaskServiceImpl) validateInput(ctx context.Context, in TaskInput) (*validatedTaskFields, error) {
	title, err := validate.Length("Title", in.Title, validate.MaxTitle)
	if err != nil {
		return nil, err
	}
	if title, err = validate.Required("Title", title); err != nil {
		return nil, err
	}
	description, err := validate.Length("Description", in.Description, validate.MaxDescription)
	if err != nil {
		return nil, err
	}
	hours, err := validate.Hours(in.EstimatedHours)
	if err != nil {
		return nil, err
	}
	due, dueOK := validate.Date(in.DueDate)

	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	return &validatedTaskFields{
		title:       title,
		description: description,
		status:      status,
		priority:    priority,
		projectID:   s.resolveProject(ctx, in.ProjectID),
		assignedTo:  s.resolveUser(ctx, in.AssignedTo),
		dueDate:     due,
		dueDateOK:   dueOK,
		hours:       hours,
	}, nil
}

// resolveProject returns the project id when it refers to an existing
// project, empty otherwise. References that do not resolve are treated as
// unset, same as a malformed one.
func (s *TaskServiceImpl) resolveProject(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	if _, err := s.store.GetProject(ctx, id); err != nil {
		return ""
	}
	return id
}

func (s *TaskServiceImpl) resolveUser(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return ""
	}
	return id
}

func (s *TaskServiceImpl) Create(ctx context.Context, actorID string, in TaskInput) (*models.Task, error) {
	fields, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		Title:          fields.title,
		Description:    fields.description,
		Status:         fields.status,
		Priority:       fields.priority,
		ProjectID:      fields.projectID,
		AssignedTo:     fields.assignedTo,
		DueDate:        fields.dueDate,
		EstimatedHours: fields.hours,
		ActualHours:    0,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.store.Transact(ctx, func(tx store.Store) error {
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		if err := addHistory(ctx, tx, task.ID, actorID, models.ActionCreated, "", task.Title, now); err != nil {
			return err
		}
		if task.AssignedTo != "" {
			return addNotification(ctx, tx, task.AssignedTo,
				fmt.Sprintf("New task assigned: %s", task.Title), models.NotifyTaskAssigned, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, actorID, id string, in TaskInput) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}

	// Change detection happens before the fields are overwritten.
	oldStatus := task.Status
	oldTitle := task.Title

	now := time.Now().UTC()
	task.Title = fields.title
	task.Description = fields.description
	task.Status = fields.status
	task.Priority = fields.priority
	task.ProjectID = fields.projectID
	task.AssignedTo = fields.assignedTo
	if fields.dueDateOK {
		task.DueDate = fields.dueDate
	}
	// An unparsable date keeps the previous stored value.
	task.EstimatedHours = fields.hours
	task.UpdatedAt = now

	err = s.store.Transact(ctx, func(tx store.Store) error {
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		if oldStatus != task.Status {
			if err := addHistory(ctx, tx, task.ID, actorID, models.ActionStatusChanged, oldStatus, task.Status, now); err != nil {
				return err
			}
		}
		if oldTitle != task.Title {
			if err := addHistory(ctx, tx, task.ID, actorID, models.ActionTitleChanged, oldTitle, task.Title, now); err != nil {
				return err
			}
		}
		// The current assignee is re-notified on every update, reassigned
		// or not.
		if task.AssignedTo != "" {
			return addNotification(ctx, tx, task.AssignedTo,
				fmt.Sprintf("Task updated: %s", task.Title), models.NotifyTaskUpdated, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, actorID, id string) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return s.store.Transact(ctx, func(tx store.Store) error {
		// The DELETED entry is written first and retained afterwards;
		// comments go with the task.
		if err := addHistory(ctx, tx, task.ID, actorID, models.ActionDeleted, task.Title, "", now); err != nil {
			return err
		}
		if err := tx.DeleteCommentsByTask(ctx, task.ID); err != nil {
			return err
		}
		return tx.DeleteTask(ctx, task.ID)
	})
}

func (s *TaskServiceImpl) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.store.GetTask(ctx, id)
}

func addHistory(ctx context.Context, tx store.Store, taskID, userID, action, oldValue, newValue string, at time.Time) error {
	return tx.CreateHistory(ctx, &models.HistoryEntry{
		TaskID:    taskID,
		UserID:    userID,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  newValue,
		Timestamp: at,
	})
}

func addNotification(ctx context.Context, tx store.Store, userID, message, notifType string, at time.Time) error {
	return tx.CreateNotification(ctx, &models.Notification{
		UserID:    userID,
		Message:   message,
		Type:      notifType,
		Read:      false,
		CreatedAt: at,
	})
}

// IsNotFound reports whether err is the record-store not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// IsValidation reports whether err is a user-visible validation failure.
func IsValidation(err error) bool {
	var ve *validate.Error
	return errors.As(err, &ve)
}
