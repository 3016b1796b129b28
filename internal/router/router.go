package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/sport-facility-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/sport-facility-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the public sport
// listing.
func RegisterRoutes(e *echo.Echo, sports *handler.SportHandler) {
	e.GET("/healthz", handler.Health)
	// Guests may browse the sports on offer before registering.
	e.GET("/v1/sports", sports.List)
}

// RegisterAuth registers all authentication‑related routes.
// Unauthenticated operations live under /v1/auth; /v1/me is protected.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only issues a
	// new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token (all sessions) or a
	// refresh_token body (one session), so it skips the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	auth.GET("/me", a.Me)
}

// RegisterReservations registers the reservation engine endpoints.
// Everything requires authentication; admin-only operations also
// go through RequireRole(ADMIN). The engine re-checks roles itself, the
// middleware just rejects early.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

	g.POST("", r.Create)
	g.GET("", r.List)
	g.GET("/mine", r.Mine)
	g.GET("/by-sport/mine", r.MineBySport)
	g.PATCH("/:id/cancel", r.Cancel)
	g.POST("/:id/join", r.Join)
	g.POST("/:id/leave", r.Leave)

	admin := e.Group("/v1/reservations")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/by-sport", r.BySport)
	admin.PATCH("/:id/block", r.Block)
	admin.PATCH("/:id/time", r.UpdateTime)
	admin.POST("/blocked", r.CreateBlocked)
}

// RegisterSports registers sport management. Listing is public and
// registered in RegisterRoutes; everything here is admin-only.
func RegisterSports(e *echo.Echo, s *handler.SportHandler, jwtSecret string) {
	admin := e.Group("/v1/sports")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("", s.Create)
	admin.PUT("/:id", s.Update)
	admin.DELETE("/:id", s.Delete)
	admin.GET("/statistics", s.Statistics)
}

// RegisterRatings registers the reservation rating endpoints.
func RegisterRatings(e *echo.Echo, r *handler.RatingHandler, jwtSecret string) {
	g := e.Group("/v1/reservations/:id/ratings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	g.POST("", r.Create)
	g.GET("", r.List)
	g.GET("/mine", r.Mine)
	g.DELETE("/mine", r.Delete)
}

// RegisterNotifications registers the notification read endpoints.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group("/v1/notifications")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	g.GET("", n.List)
	g.POST("/seen", n.MarkSeen)
}
