// Package router wires middleware and routes onto a gin engine.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/session"
	"taskboard/internal/store"
)

type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         store.Store
	Sessions      *session.Manager
	Auth          *handlers.AuthHandler
	Tasks         *handlers.TaskHandler
	Projects      *handlers.ProjectHandler
	Comments      *handlers.CommentHandler
	Notifications *handlers.NotificationHandler
	Views         *handlers.ViewHandler
}

func Setup(d Deps) *gin.Engine {
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))

	engine.GET("/", d.Auth.Index)
	engine.GET("/login", d.Auth.LoginPage)
	engine.POST("/login", middleware.RateLimit(d.Config.RateLimit), d.Auth.Login)

	pages := engine.Group("/", middleware.RequireSession(d.Sessions, d.Store, false))
	{
		pages.GET("/logout", d.Auth.Logout)
		pages.GET("/dashboard", d.Views.Dashboard)

		pages.POST("/task/add", d.Tasks.Add)
		pages.POST("/task/update/:id", d.Tasks.Update)
		pages.POST("/task/delete/:id", d.Tasks.Delete)

		pages.POST("/project/add", d.Projects.Add)
		pages.POST("/project/update/:id", d.Projects.Update)
		pages.POST("/project/delete/:id", d.Projects.Delete)

		pages.POST("/comment/add", d.Comments.Add)
		pages.POST("/notifications/read", d.Notifications.MarkAllRead)

		pages.GET("/export/csv", d.Views.ExportCSV)
	}

	api := engine.Group("/api",
		cors.Default(),
		middleware.RequireSession(d.Sessions, d.Store, true))
	{
		api.GET("/task/:id", d.Tasks.Detail)
		api.GET("/comments/:task_id", d.Comments.ListByTask)
		api.GET("/history", d.Views.History)
		api.GET("/history/:task_id", d.Views.History)
		api.GET("/notifications", d.Notifications.Unread)
		api.GET("/search", d.Views.Search)
		api.GET("/report/:kind", d.Views.Report)
		api.GET("/stats", d.Views.Stats)
	}

	return engine
}
