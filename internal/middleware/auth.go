package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/session"
	"taskboard/internal/store"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

// RequireSession resolves the session cookie to a user record and aborts the
// request when that fails: API routes get a 401 JSON error, page routes are
// redirected to /login.
func RequireSession(mgr *session.Manager, st store.Store, api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err == nil && token != "" {
			userID, err := mgr.Resolve(c.Request.Context(), token)
			if err == nil {
				user, err := st.GetUser(c.Request.Context(), userID)
				if err == nil {
					c.Set("user", user)
					c.Set("user_id", user.ID)
					c.Next()
					return
				}
			}
		}
		if api {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "Please sign in to continue.",
			})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}
