package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "admin", Password: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	byName, err := s.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetTask(ctx, "12345")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetProject(ctx, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListUsersSortedByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zoe", "alice", "mike"} {
		require.NoError(t, s.CreateUser(ctx, &models.User{Username: name, Password: "x"}))
	}
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "zoe", users[2].Username)
}

func TestTaskFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	creator := &models.User{Username: "creator", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, creator))
	project := &models.Project{Name: "Rollouts"}
	require.NoError(t, s.CreateProject(ctx, project))

	mk := func(title, desc, status, priority, projectID string) {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			Title:       title,
			Description: desc,
			Status:      status,
			Priority:    priority,
			ProjectID:   projectID,
			CreatedBy:   creator.ID,
		}))
	}
	mk("Alpha rollout", "first phase", models.StatusPending, models.PriorityHigh, project.ID)
	mk("Beta rollout", "second phase", models.StatusCompleted, models.PriorityLow, "")
	mk("Cleanup", "remove alpha leftovers", models.StatusPending, models.PriorityMedium, "")

	// Case-insensitive substring on title OR description.
	found, err := s.FindTasks(ctx, store.TaskFilter{Query: "alpha"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.FindTasks(ctx, store.TaskFilter{Query: "ALPHA", Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.FindTasks(ctx, store.TaskFilter{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Beta rollout", found[0].Title)

	found, err = s.FindTasks(ctx, store.TaskFilter{ProjectID: project.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alpha rollout", found[0].Title)

	n, err := s.CountTasks(ctx, store.TaskFilter{Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTaskSearchMatchesMetacharactersLiterally(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	creator := &models.User{Username: "creator", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, creator))

	for _, title := range []string{"50% rollout", "50 tasks done", "under_score", "underscore"} {
		require.NoError(t, s.CreateTask(ctx, &models.Task{
			Title:     title,
			Status:    models.StatusPending,
			Priority:  models.PriorityMedium,
			CreatedBy: creator.ID,
		}))
	}

	// "%" and "_" are literal characters of the search text, not wildcards.
	found, err := s.FindTasks(ctx, store.TaskFilter{Query: "50%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "50% rollout", found[0].Title)

	found, err = s.FindTasks(ctx, store.TaskFilter{Query: "under_"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "under_score", found[0].Title)
}

func TestClearTaskProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	creator := &models.User{Username: "creator", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, creator))
	project := &models.Project{Name: "Doomed"}
	require.NoError(t, s.CreateProject(ctx, project))

	task := &models.Task{Title: "orphan me", Status: models.StatusPending,
		Priority: models.PriorityMedium, ProjectID: project.ID, CreatedBy: creator.ID}
	require.NoError(t, s.CreateTask(ctx, task))

	require.NoError(t, s.ClearTaskProject(ctx, project.ID))
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ProjectID)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "actor", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, user))
	task := &models.Task{Title: "t", Status: models.StatusPending,
		Priority: models.PriorityMedium, CreatedBy: user.ID}
	require.NoError(t, s.CreateTask(ctx, task))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateHistory(ctx, &models.HistoryEntry{
			TaskID:    task.ID,
			UserID:    user.ID,
			Action:    models.ActionStatusChanged,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := s.ListHistory(ctx, task.ID, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp), "newest first")

	all, err := s.ListHistory(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestNotificationsUnreadAndMarkRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "u", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, user))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{
			UserID:    user.ID,
			Message:   "msg",
			Type:      models.NotifyTaskAssigned,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	unread, err := s.ListUnreadNotifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, unread, 3)
	assert.True(t, unread[0].CreatedAt.After(unread[2].CreatedAt), "newest first")

	require.NoError(t, s.MarkAllNotificationsRead(ctx, user.ID))
	unread, err = s.ListUnreadNotifications(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// Idempotent: a second pass changes nothing and does not fail.
	require.NoError(t, s.MarkAllNotificationsRead(ctx, user.ID))
}

func TestCommentsOrderedOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "u", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, user))
	task := &models.Task{Title: "t", Status: models.StatusPending,
		Priority: models.PriorityMedium, CreatedBy: user.ID}
	require.NoError(t, s.CreateTask(ctx, task))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateComment(ctx, &models.Comment{
			TaskID:      task.ID,
			UserID:      user.ID,
			CommentText: text,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	comments, err := s.ListComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].CommentText)
	assert.Equal(t, "third", comments[2].CommentText)

	require.NoError(t, s.DeleteCommentsByTask(ctx, task.ID))
	comments, err = s.ListComments(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestTransactRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "u", Password: "x"}
	require.NoError(t, s.CreateUser(ctx, user))

	err := s.Transact(ctx, func(tx store.Store) error {
		if err := tx.CreateTask(ctx, &models.Task{Title: "doomed",
			Status: models.StatusPending, Priority: models.PriorityMedium,
			CreatedBy: user.ID}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	n, err := s.CountTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "failed unit of work must leave no rows")
}
