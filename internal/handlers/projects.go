package handlers

import (
	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func projectInputFromForm(c *gin.Context) services.ProjectInput {
	return services.ProjectInput{
		Name:        c.PostForm("project_name"),
		Description: c.PostForm("project_description"),
	}
}

// Add answers POST /project/add.
func (h *ProjectHandler) Add(c *gin.Context) {
	if _, err := h.projectService.Create(c.Request.Context(), projectInputFromForm(c)); err != nil {
		redirectDashboard(c, "projects", err.Error())
		return
	}
	redirectDashboard(c, "projects", "")
}

// Update answers POST /project/update/{id}.
func (h *ProjectHandler) Update(c *gin.Context) {
	_, err := h.projectService.Update(c.Request.Context(), c.Param("id"), projectInputFromForm(c))
	if err != nil {
		if services.IsNotFound(err) {
			redirectDashboard(c, "projects", "Project not found.")
			return
		}
		redirectDashboard(c, "projects", err.Error())
		return
	}
	redirectDashboard(c, "projects", "")
}

// Delete answers POST /project/delete/{id}.
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if services.IsNotFound(err) {
			redirectDashboard(c, "projects", "Invalid project.")
			return
		}
		redirectDashboard(c, "projects", err.Error())
		return
	}
	redirectDashboard(c, "projects", "")
}
