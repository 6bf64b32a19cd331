package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type TaskHandler struct {
	taskService services.TaskService
	viewService services.ViewService
}

func NewTaskHandler(taskService services.TaskService, viewService services.ViewService) *TaskHandler {
	return &TaskHandler{taskService: taskService, viewService: viewService}
}

func taskInputFromForm(c *gin.Context) services.TaskInput {
	return services.TaskInput{
		Title:          c.PostForm("task_title"),
		Description:    c.PostForm("task_description"),
		Status:         c.PostForm("task_status"),
		Priority:       c.PostForm("task_priority"),
		ProjectID:      c.PostForm("task_project_id"),
		AssignedTo:     c.PostForm("task_assigned_to"),
		DueDate:        c.PostForm("task_due_date"),
		EstimatedHours: c.PostForm("task_hours"),
	}
}

// Add answers POST /task/add.
func (h *TaskHandler) Add(c *gin.Context) {
	user := currentUser(c)
	_, err := h.taskService.Create(c.Request.Context(), user.ID, taskInputFromForm(c))
	if err != nil {
		redirectDashboard(c, "tasks", err.Error())
		return
	}
	redirectDashboard(c, "tasks", "")
}

// Update answers POST /task/update/{id}.
func (h *TaskHandler) Update(c *gin.Context) {
	user := currentUser(c)
	_, err := h.taskService.Update(c.Request.Context(), user.ID, c.Param("id"), taskInputFromForm(c))
	if err != nil {
		if services.IsNotFound(err) {
			redirectDashboard(c, "tasks", "Task not found.")
			return
		}
		redirectDashboard(c, "tasks", err.Error())
		return
	}
	redirectDashboard(c, "tasks", "")
}

// Delete answers POST /task/delete/{id}.
func (h *TaskHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if err := h.taskService.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		if services.IsNotFound(err) {
			redirectDashboard(c, "tasks", "Task not found.")
			return
		}
		redirectDashboard(c, "tasks", err.Error())
		return
	}
	redirectDashboard(c, "tasks", "")
}

// Detail answers GET /api/task/{id}.
func (h *TaskHandler) Detail(c *gin.Context) {
	detail, err := h.viewService.TaskDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
