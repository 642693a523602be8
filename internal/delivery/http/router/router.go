// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"agency/internal/delivery/http/middleware"
	"agency/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	ThemeHandler     *handler.ThemeHandler
	PublicHandler    *handler.PublicHandler
	DashboardHandler *handler.DashboardHandler
	GuardMiddleware  *middleware.GuardMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	themeHandler     *handler.ThemeHandler
	publicHandler    *handler.PublicHandler
	dashboardHandler *handler.DashboardHandler
	guardMiddleware  *middleware.GuardMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		themeHandler:     params.ThemeHandler,
		publicHandler:    params.PublicHandler,
		dashboardHandler: params.DashboardHandler,
		guardMiddleware:  params.GuardMiddleware,
	}
}

// RegisterRoutes sets up all the routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Session routes
	e.GET("/login", r.authHandler.LoginPage)
	e.POST("/login", r.authHandler.Login)
	e.POST("/signup", r.authHandler.Signup)
	e.POST("/logout", r.authHandler.Logout)
	e.GET("/unauthorized", r.authHandler.Unauthorized)

	// Theme routes
	e.GET("/theme", r.themeHandler.Get)
	e.POST("/theme/toggle", r.themeHandler.Toggle)

	// Public read routes
	publicGroup := e.Group("/api")
	{
		publicGroup.GET("/blogs", r.publicHandler.Blogs)
		publicGroup.GET("/blogs/:id", r.publicHandler.Blog)
		publicGroup.GET("/projects", r.publicHandler.Projects)
		publicGroup.GET("/team", r.publicHandler.Team)
		publicGroup.GET("/clients", r.publicHandler.Clients)
		publicGroup.GET("/journey", r.publicHandler.Journey)
		publicGroup.GET("/journey/:kind", r.publicHandler.JourneyByKind)
	}

	// Dashboard routes require a session with an allowed role
	dashboardGroup := e.Group("/dashboard")
	dashboardGroup.Use(r.guardMiddleware.Require())
	r.dashboardHandler.Register(dashboardGroup)
}
