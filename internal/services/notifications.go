package services

import (
	"context"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

type NotificationService interface {
	// Unread returns the caller's unread notifications, newest first.
	Unread(ctx context.Context, userID string) ([]models.Notification, error)
	// MarkAllRead flips read=true on every notification the caller owns.
	// Idempotent.
	MarkAllRead(ctx context.Context, userID string) error
}

type NotificationServiceImpl struct {
	store store.Store
}

func NewNotificationService(st store.Store) *NotificationServiceImpl {
	return &NotificationServiceImpl{store: st}
}

func (s *NotificationServiceImpl) Unread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.store.ListUnreadNotifications(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}
