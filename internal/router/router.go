package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/middleware"
)

type Handlers struct {
	Drag     *apiHandler.DragHandler
	Board    *apiHandler.BoardHandler
	Task     *apiHandler.TaskHandler
	Session  *apiHandler.SessionHandler
	Settings *apiHandler.SettingsHandler
	Health   *apiHandler.HealthHandler
	// Metrics is mounted at /metrics when set.
	Metrics fasthttp.RequestHandler
}

func New(handlers Handlers, auth middleware.Middleware) *router.Router {
	r := router.New()
	if auth == nil {
		auth = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	api := r.Group("/api/v1")

	api.POST("/drag", auth(handlers.Drag.Drag))

	api.GET("/boards", auth(handlers.Board.List))
	api.POST("/boards", auth(handlers.Board.Create))
	api.PUT("/boards/{id}", auth(handlers.Board.Update))
	api.DELETE("/boards/{id}", auth(handlers.Board.Delete))
	api.POST("/boards/{id}/archive", auth(handlers.Board.Archive))
	api.POST("/boards/{id}/restore", auth(handlers.Board.Restore))
	api.POST("/boards/{id}/duplicate", auth(handlers.Board.Duplicate))
	api.GET("/boards/{id}/tasks", auth(handlers.Board.Tasks))

	api.GET("/tasks/archived", auth(handlers.Task.Archived))
	api.POST("/tasks", auth(handlers.Task.Create))
	api.PUT("/tasks/{id}", auth(handlers.Task.Update))
	api.DELETE("/tasks/{id}", auth(handlers.Task.Delete))
	api.POST("/tasks/{id}/archive", auth(handlers.Task.Archive))
	api.POST("/tasks/{id}/restore", auth(handlers.Task.Restore))
	api.POST("/tasks/{id}/duplicate", auth(handlers.Task.Duplicate))

	api.GET("/sessions", auth(handlers.Session.List))
	api.POST("/sessions", auth(handlers.Session.Start))
	api.POST("/sessions/{id}/stop", auth(handlers.Session.Stop))
	api.DELETE("/sessions/{id}", auth(handlers.Session.Delete))

	api.GET("/settings", auth(handlers.Settings.Get))
	api.PUT("/settings", auth(handlers.Settings.Update))

	return r
}
