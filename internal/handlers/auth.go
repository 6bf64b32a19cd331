package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/middleware"
	"taskboard/internal/services"
	"taskboard/internal/session"
)

type AuthHandler struct {
	authService services.AuthService
	sessions    *session.Manager
	cookieTTL   int
	secure      bool
}

func NewAuthHandler(authService services.AuthService, sessions *session.Manager, cookieTTLSeconds int, secure bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		cookieTTL:   cookieTTLSeconds,
		secure:      secure,
	}
}

// LoginPage answers GET /login. A caller with a live session is sent to the
// dashboard.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if _, err := h.sessions.Resolve(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sign in with your username and password."})
}

// Login answers POST /login with form credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	user, err := h.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid username or password.",
		})
		return
	}

	token, err := h.sessions.Issue(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.SetCookie(middleware.SessionCookie, token, h.cookieTTL, "/", "", h.secure, true)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		// A session that no longer resolves is already signed out.
		_ = h.sessions.Revoke(c.Request.Context(), token)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secure, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

// Index answers GET / by session state.
func (h *AuthHandler) Index(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if _, err := h.sessions.Resolve(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
