// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sportmaps/sportmaps-server/internal/config"
	"github.com/sportmaps/sportmaps-server/internal/handler"
	"github.com/sportmaps/sportmaps-server/internal/middleware"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations live under /v1/auth behind the rate limiter; /v1/me and the
// profile recovery endpoint require only a valid access token, because
// both must keep working for a session whose profile row is missing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: a refresh token in the
	// body is enough to invalidate that session.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/me/profile", p.Update)
}

// RegisterProtected registers endpoints that require an authenticated
// session with a complete profile.  The guard resolves the profile once
// per request and enforces role allow-lists; the admin subtree adds a
// permission check on top.
func RegisterProtected(e *echo.Echo, jwtSecret string, profiles middleware.ProfileFetcher,
	d *handler.DashboardHandler, n *handler.NotificationHandler, adm *handler.AdminHandler) {

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.Guard(profiles))
	auth.GET("/me/permissions", handler.Permissions)
	auth.GET("/dashboard", d.Get)
	auth.GET("/notifications", n.List)
	auth.POST("/notifications/:id/read", n.MarkRead)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.Guard(profiles, rbac.RoleAdmin))
	admin.Use(middleware.RequirePermission(rbac.Perm(rbac.ResAdmin, rbac.ActUsers)))
	admin.GET("/users", adm.ListUsers)
	admin.PATCH("/users/:id/active", adm.SetUserActive)
}

// RegisterPublic registers the unauthenticated school directory.  List and
// detail responses are cached in Redis so popular directory pages do not
// hit MySQL on every request.
func RegisterPublic(e *echo.Echo, s *handler.SchoolHandler, rdb *redis.Client) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/schools", s.List, cache)
	e.GET("/v1/schools/:id", s.Get, cache)
}
