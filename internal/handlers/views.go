package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

// ViewHandler serves the dashboard view model and the derived read views:
// search, history, reports, stats and the CSV export.
type ViewHandler struct {
	viewService services.ViewService
}

func NewViewHandler(viewService services.ViewService) *ViewHandler {
	return &ViewHandler{viewService: viewService}
}

// Dashboard answers GET /dashboard?tab=.
func (h *ViewHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.viewService.Dashboard(c.Request.Context(), c.Query("tab"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Stats answers GET /api/stats.
func (h *ViewHandler) Stats(c *gin.Context) {
	stats, err := h.viewService.Stats(c.Request.Context())
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Search answers GET /api/search?q&status&priority&project_id.
func (h *ViewHandler) Search(c *gin.Context) {
	rows, err := h.viewService.Search(c.Request.Context(),
		c.Query("q"), c.Query("status"), c.Query("priority"), c.Query("project_id"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// History answers GET /api/history and GET /api/history/{task_id}.
func (h *ViewHandler) History(c *gin.Context) {
	views, err := h.viewService.History(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Report answers GET /api/report/{kind}.
func (h *ViewHandler) Report(c *gin.Context) {
	lines, err := h.viewService.Report(c.Request.Context(), c.Param("kind"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// ExportCSV answers GET /export/csv with a BOM-prefixed attachment.
func (h *ViewHandler) ExportCSV(c *gin.Context) {
	data, err := h.viewService.ExportCSV(c.Request.Context())
	if err != nil {
		apiError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks_export.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
