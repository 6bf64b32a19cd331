package services

import (
	"context"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/store"
	"taskboard/internal/validate"
)

// CommentView is one comment as the API serves it, with the author's
// username resolved.
type CommentView struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentService interface {
	Add(ctx context.Context, userID, taskID, text string) (*models.Comment, error)
	ListByTask(ctx context.Context, taskID string) ([]CommentView, error)
}

type CommentServiceImpl struct {
	store store.Store
}

func NewCommentService(st store.Store) *CommentServiceImpl {
	return &CommentServiceImpl{store: st}
}

func (s *CommentServiceImpl) Add(ctx context.Context, userID, taskID, text string) (*models.Comment, error) {
	trimmed, err := validate.Length("Comment text", text, validate.MaxComment)
	if err != nil {
		return nil, err
	}
	if trimmed, err = validate.Required("Comment", trimmed); err != nil {
		return nil, err
	}
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		TaskID:      taskID,
		UserID:      userID,
		CommentText: trimmed,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentServiceImpl) ListByTask(ctx context.Context, taskID string) ([]CommentView, error) {
	comments, err := s.store.ListComments(ctx, taskID)
	if err != nil {
		return nil, err
	}
	usernames, err := usernamesByID(ctx, s.store)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:        c.ID,
			User:      usernameOr(usernames, c.UserID),
			Text:      c.CommentText,
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

func usernamesByID(ctx context.Context, st store.Store) (map[string]string, error) {
	users, err := st.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]string, len(users))
	for _, u := range users {
		byID[u.ID] = u.Username
	}
	return byID, nil
}

// usernameOr resolves a user id, with the original's "?" placeholder for
// authors that no longer exist.
func usernameOr(usernames map[string]string, id string) string {
	if name, ok := usernames[id]; ok {
		return name
	}
	return "?"
}
