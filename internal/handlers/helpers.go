package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

// currentUser returns the user the session middleware resolved.
func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// redirectDashboard sends the caller back to a dashboard tab, carrying an
// optional user-visible message in the query string.
func redirectDashboard(c *gin.Context, tab, errMsg string) {
	target := "/dashboard?tab=" + url.QueryEscape(tab)
	if errMsg != "" {
		target += "&error=" + url.QueryEscape(errMsg)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// apiError maps service errors onto API status codes.
func apiError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
	}
}
