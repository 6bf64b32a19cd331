package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
	"taskboard/internal/services"
	"taskboard/internal/store"
	"taskboard/internal/store/gormstore"
)

type fixture struct {
	store    store.Store
	tasks    *services.TaskServiceImpl
	actor    *models.User
	assignee *models.User
	project  *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := gormstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close(context.Background()) })

	ctx := context.Background()
	actor := &models.User{Username: "actor", Password: "x"}
	require.NoError(t, st.CreateUser(ctx, actor))
	assignee := &models.User{Username: "assignee", Password: "x"}
	require.NoError(t, st.CreateUser(ctx, assignee))
	project := &models.Project{Name: "Demo Project", Description: "Sample project"}
	require.NoError(t, st.CreateProject(ctx, project))

	return &fixture{
		store:    st,
		tasks:    services.NewTaskService(st),
		actor:    actor,
		assignee: assignee,
		project:  project,
	}
}

func (f *fixture) history(t *testing.T, taskID string) []models.HistoryEntry {
	t.Helper()
	entries, err := f.store.ListHistory(context.Background(), taskID, 100)
	require.NoError(t, err)
	return entries
}

func (f *fixture) unread(t *testing.T, userID string) []models.Notification {
	t.Helper()
	notifs, err := f.store.ListUnreadNotifications(context.Background(), userID)
	require.NoError(t, err)
	return notifs
}

func TestCreateEmitsCreatedHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{Title: "Write docs"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Zero(t, task.ActualHours)
	assert.Equal(t, f.actor.ID, task.CreatedBy)

	entries := f.history(t, task.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionCreated, entries[0].Action)
	assert.Equal(t, "", entries[0].OldValue)
	assert.Equal(t, "Write docs", entries[0].NewValue)

	// No assignee, no notification.
	assert.Empty(t, f.unread(t, f.assignee.ID))
}

func TestCreateWithAssigneeNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{
		Title:      "Ship release",
		AssignedTo: f.assignee.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.assignee.ID, task.AssignedTo)

	notifs := f.unread(t, f.assignee.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotifyTaskAssigned, notifs[0].Type)
	assert.Equal(t, "New task assigned: Ship release", notifs[0].Message)
	assert.False(t, notifs[0].Read)
}

func TestCreateRejectsOverlongTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{
		Title: strings.Repeat("x", 101),
	})
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))

	n, err := f.store.CountTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "rejected input must not create a record")
}

func TestCreateRequiresTitle(t *testing.T) {
	f := newFixture(t)
	_, err := f.tasks.Create(context.Background(), f.actor.ID, services.TaskInput{Title: "   "})
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))
}

func TestCreateUnresolvableReferencesAreUnset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{
		Title:      "Loose ends",
		ProjectID:  "not-an-id",
		AssignedTo: "also-not-an-id",
	})
	require.NoError(t, err)
	assert.Empty(t, task.ProjectID)
	assert.Empty(t, task.AssignedTo)
}

func TestCreateLenientDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{
		Title:   "Bad date",
		DueDate: "06/15/2025",
	})
	require.NoError(t, err)
	assert.Nil(t, task.DueDate, "unparsable date falls back to unset on create")

	task, err = f.tasks.Create(ctx, f.actor.ID, services.TaskInput{
		Title:   "Good date",
		DueDate: "2025-06-15",
	})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-06-15", task.DueDateString())
}

func TestUpdateStatusChangeEmitsOneEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{Title: "Track me"})
	require.NoError(t, err)

	_, err = f.tasks.Update(ctx, f.actor.ID, task.ID, services.TaskInput{
		Title:  "Track me",
		Status: models.StatusCompleted,
	})
	require.NoError(t, err)

	var statusChanges []models.HistoryEntry
	for _, e := range f.history(t, task.ID) {
		if e.Action == models.ActionStatusChanged {
			statusChanges = append(statusChanges, e)
		}
	}
	require.Len(t, statusChanges, 1)
	assert.Equal(t, models.StatusPending, statusChanges[0].OldValue)
	assert.Equal(t, models.StatusCompleted, statusChanges[0].NewValue)
}

func TestUpdateWithoutChangesEmitsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{Title: "Stable"})
	require.NoError(t, err)
	before := len(f.history(t, task.ID))

	_, err = f.tasks.Update(ctx, f.actor.ID, task.ID, services.TaskInput{
		Title:  "Stable",
		Status: models.StatusPending,
	})
	require.NoError(t, err)

	assert.Len(t, f.history(t, task.ID), before, "no status or title change, no new entries")
}

func TestUpdateTitleChangeRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{Title: "Old name"})
	require.NoError(t, err)

	_, err = f.tasks.Update(ctx, f.actor.ID, task.ID, services.TaskInput{
		Title:  "New name",
		Status: models.StatusPending,
	})
	require.NoError(t, err)

	entries := f.history(t, task.ID)
	require.Len(t, entries, 2) // CREATED + TITLE_CHANGED
	assert.Equal(t, models.ActionTitleChanged, entries[0].Action)
	assert.Equal(t, "Old name", entries[0].OldValue)
	assert.Equal(t, "New name", entries[0].NewValue)
}

func TestUpdateRenotifiesAssigneeEveryTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{
		Title:      "Noisy",
		AssignedTo: f.assignee.ID,
	})
	require.NoError(t, err)
	require.Len(t, f.unread(t, f.assignee.ID), 1)

	// Two no-op updates with the same assignee: two more notifications.
	for i := 0; i < 2; i++ {
		_, err = f.tasks.Update(ctx, f.actor.ID, task.ID, services.TaskInput{
			Title:      "Noisy",
			Status:     models.StatusPending,
			AssignedTo: f.assignee.ID,
		})
		require.NoError(t, err)
	}
	notifs := f.unread(t, f.assignee.ID)
	assert.Len(t, notifs, 3)
	assert.Equal(t, models.NotifyTaskUpdated, notifs[0].Type)
}

func TestUpdateMissingTaskIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.tasks.Update(context.Background(), f.actor.ID,
		"00000000-0000-0000-0000-000000000000", services.TaskInput{Title: "x"})
	assert.True(t, services.IsNotFound(err))

	_, err = f.tasks.Update(context.Background(), f.actor.ID, "garbage",
		services.TaskInput{Title: "x"})
	assert.True(t, services.IsNotFound(err))
}

func TestUpdateRejectsOverlongTitleWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{Title: "Keep me"})
	require.NoError(t, err)

	_, err = f.tasks.Update(ctx, f.actor.ID, task.ID, services.TaskInput{
		Title: strings.Repeat("x", 101),
	})
	require.Error(t, err)
	assert.True(t, services.IsValidation(err))

	got, err := f.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep me", got.Title)
}

func TestUpdateKeepsDueDateOnParseFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{
		Title:   "Dated",
		DueDate: "2025-06-15",
	})
	require.NoError(t, err)

	updated, err := f.tasks.Update(ctx, f.actor.ID, task.ID, services.TaskInput{
		Title:   "Dated",
		Status:  models.StatusPending,
		DueDate: "not a date",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2025-06-15", updated.DueDateString())

	// An empty date clears it.
	updated, err = f.tasks.Update(ctx, f.actor.ID, task.ID, services.TaskInput{
		Title:  "Dated",
		Status: models.StatusPending,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestDeleteEmitsHistoryAndCascadesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.actor.ID, services.TaskInput{Title: "Short lived"})
	require.NoError(t, err)

	comments := services.NewCommentService(f.store)
	_, err = comments.Add(ctx, f.actor.ID, task.ID, "will vanish")
	require.NoError(t, err)

	require.NoError(t, f.tasks.Delete(ctx, f.actor.ID, task.ID))

	_, err = f.store.GetTask(ctx, task.ID)
	assert.True(t, services.IsNotFound(err))

	// Comments are gone; the audit trail, including DELETED, survives.
	got, err := comments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	entries := f.history(t, task.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionDeleted, entries[0].Action)
	assert.Equal(t, "Short lived", entries[0].OldValue)
	assert.Equal(t, "", entries[0].NewValue)
}

func TestDeleteMissingTaskIsNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.tasks.Delete(context.Background(), f.actor.ID, "garbage")
	assert.True(t, services.IsNotFound(err))
}
