package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// MarkAllRead answers POST /notifications/read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := currentUser(c)
	if err := h.notificationService.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		redirectDashboard(c, "notifications", "Could not mark notifications as read.")
		return
	}
	redirectDashboard(c, "notifications", "")
}

// Unread answers GET /api/notifications.
func (h *NotificationHandler) Unread(c *gin.Context) {
	user := currentUser(c)
	notifs, err := h.notificationService.Unread(c.Request.Context(), user.ID)
	if err != nil {
		apiError(c, err)
		return
	}
	payload := make([]gin.H, 0, len(notifs))
	for _, n := range notifs {
		payload = append(payload, gin.H{
			"id":         n.ID,
			"message":    n.Message,
			"type":       n.Type,
			"created_at": n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, payload)
}
