// Package handler implements the HTTP endpoints. Handlers depend on the
// narrow store interfaces declared here rather than on the concrete MySQL
// repositories, so each operation states exactly what persistence it
// needs and tests can substitute in-memory fakes.
package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineforum/club-api/internal/model"
)

// MemberStore is the persistence surface of the membership lifecycle:
// creation with generated credentials, lookups by id, login username and
// membership code, renewal and credential reset.
type MemberStore interface {
	Create(ctx context.Context, m *model.Member) error
	GetByID(ctx context.Context, id uint64) (model.Member, error)
	GetByUsername(ctx context.Context, username string) (model.Member, error)
	GetByMembershipCode(ctx context.Context, code string) (model.Member, error)
	List(ctx context.Context) ([]model.Member, error)
	UpdateExpiry(ctx context.Context, id uint64, expiry time.Time) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateProfile(ctx context.Context, id uint64, p model.Profile) error
	Delete(ctx context.Context, id uint64) error
}

// AdminStore resolves admin credentials at login time.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (model.Admin, error)
}

// FilmStore is the screening catalog surface.
type FilmStore interface {
	Create(ctx context.Context, f *model.Film) error
	GetByID(ctx context.Context, id uint64) (model.Film, error)
	List(ctx context.Context) ([]model.Film, error)
	Upcoming(ctx context.Context, now time.Time) ([]model.Film, error)
	Past(ctx context.Context, now time.Time) ([]model.Film, error)
	Update(ctx context.Context, id uint64, f model.Film) error
	Delete(ctx context.Context, id uint64) error
}

// AttendanceStore is the ledger surface: append, duplicate pre-check and
// the two history queries.
type AttendanceStore interface {
	Create(ctx context.Context, a *model.Attendance) error
	Exists(ctx context.Context, memberID, filmID uint64) (bool, error)
	ListByMember(ctx context.Context, memberID uint64) ([]model.MemberAttendance, error)
	ListByFilm(ctx context.Context, filmID uint64) ([]model.FilmAttendance, error)
}

// ProposalStore is the proposal register surface.
type ProposalStore interface {
	Create(ctx context.Context, p *model.Proposal) error
	ListByMember(ctx context.Context, memberID uint64) ([]model.Proposal, error)
	ListAll(ctx context.Context) ([]model.ProposalWithMember, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// dbCtx derives a bounded context for a store call from the request.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
