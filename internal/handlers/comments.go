package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Add answers POST /comment/add.
func (h *CommentHandler) Add(c *gin.Context) {
	user := currentUser(c)
	taskID := c.PostForm("comment_task_id")
	text := c.PostForm("comment_text")
	if _, err := h.commentService.Add(c.Request.Context(), user.ID, taskID, text); err != nil {
		if services.IsNotFound(err) {
			redirectDashboard(c, "comments", "Task not found.")
			return
		}
		redirectDashboard(c, "comments", err.Error())
		return
	}
	redirectDashboard(c, "comments", "")
}

// ListByTask answers GET /api/comments/{task_id}. A malformed task id yields
// an empty list, not an error.
func (h *CommentHandler) ListByTask(c *gin.Context) {
	views, err := h.commentService.ListByTask(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		if services.IsNotFound(err) {
			c.JSON(http.StatusOK, []services.CommentView{})
			return
		}
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
