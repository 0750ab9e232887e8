// Package router wires the HTTP surface: which handler serves each path
// and which middleware guards it. Authorization is declared here, once
// per route, instead of being re-checked inside every handler.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cineforum/club-api/internal/config"
	"github.com/cineforum/club-api/internal/handler"
	"github.com/cineforum/club-api/internal/middleware"
)

// Handlers groups the endpoint implementations handed to Register.
type Handlers struct {
	Auth       *handler.AuthHandler
	Members    *handler.MemberHandler
	Films      *handler.FilmHandler
	Attendance *handler.AttendanceHandler
	Proposals  *handler.ProposalHandler
}

// Register mounts every route. rdb may be nil; the throttle and cache
// middleware turn themselves off without it.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.Static("/uploads", cfg.UploadDir)

	// Login is the only unauthenticated operation and the brute-force
	// target, so it alone sits behind the throttle.
	e.POST("/auth/login", h.Auth.Login, middleware.NewLoginThrottle(config.LoadThrottle(), rdb))

	authed := e.Group("", middleware.JWTAuth(cfg.JWTSecret))
	authed.GET("/auth/me", h.Auth.Me)

	admin := authed.Group("", middleware.RequireRole(middleware.RoleAdmin))

	// Membership lifecycle, admin only.
	admin.POST("/members", h.Members.Create)
	admin.GET("/members", h.Members.List)
	admin.GET("/members/:id", h.Members.Get)
	admin.PUT("/members/:id", h.Members.Update)
	admin.DELETE("/members/:id", h.Members.Delete)
	admin.POST("/members/:id/renew", h.Members.Renew)
	admin.POST("/members/:id/reset-password", h.Members.ResetPassword)

	// Attendance ledger. Registration and the per-film register are
	// admin operations; a member may read their own history.
	admin.POST("/attendance", h.Attendance.Register)
	admin.GET("/attendance/film/:filmId", h.Attendance.ByFilm)
	authed.GET("/attendance/member/:memberId", h.Attendance.ByMember,
		middleware.RequireAdminOrSelf("memberId"))

	// Screening catalog: listings readable by any principal and cached,
	// mutations admin only.
	cache := middleware.NewRedisCache(config.LoadCache(), rdb)
	authed.GET("/films", h.Films.List, cache)
	authed.GET("/films/upcoming", h.Films.Upcoming, cache)
	authed.GET("/films/past", h.Films.Past, cache)
	admin.POST("/films", h.Films.Create)
	admin.PUT("/films/:id", h.Films.Update)
	admin.DELETE("/films/:id", h.Films.Delete)

	// Proposal register: members submit, listing is role-scoped inside
	// the handler, review is admin only.
	authed.POST("/proposals", h.Proposals.Create, middleware.RequireRole(middleware.RoleMember))
	authed.GET("/proposals", h.Proposals.List)
	admin.PATCH("/proposals/:id", h.Proposals.Review)
}
