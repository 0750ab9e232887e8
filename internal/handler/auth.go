package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineforum/club-api/internal/config"
	"github.com/cineforum/club-api/internal/middleware"
	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/repository"
	"github.com/cineforum/club-api/internal/utils"
)

// AuthHandler bundles dependencies for the login and whoami endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Admins  AdminStore
	Members MemberStore
}

func NewAuthHandler(cfg config.Config, admins AdminStore, members MemberStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Admins: admins, Members: members}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// principalPart is the user half of the login payload. The membership
// fields are only present for member logins; an admin gets the bare
// id/username/role triple.
type principalPart struct {
	ID             uint64     `json:"id"`
	Username       string     `json:"username"`
	Role           string     `json:"role"`
	FullName       string     `json:"fullName,omitempty"`
	MembershipCode string     `json:"membershipCode,omitempty"`
	ExpiryDate     *time.Time `json:"expiryDate,omitempty"`
	QRCode         string     `json:"qrCode,omitempty"`
	Status         string     `json:"status,omitempty"`
}

type loginResp struct {
	Token string        `json:"token"`
	User  principalPart `json:"user"`
}

// Login verifies credentials and issues a session token. The username is
// looked up first among admins, then among members. Every failure path
// returns the same generic message: the response must not reveal whether
// the username exists, which table it was found in, or that only the
// password was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "username and password required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	admin, err := h.Admins.GetByUsername(ctx, req.Username)
	switch {
	case err == nil:
		if !utils.VerifyPassword(admin.PasswordHash, req.Password) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
		}
		return h.issue(c, admin.ID, admin.Username, middleware.RoleAdmin, nil)
	case errors.Is(err, repository.ErrNotFound):
		// fall through to member lookup
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}

	member, err := h.Members.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}
	if !utils.VerifyPassword(member.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}
	return h.issue(c, member.ID, member.Username, middleware.RoleMember, &member)
}

// issue signs the token and writes the login payload. member is nil for
// admin logins.
func (h *AuthHandler) issue(c echo.Context, id uint64, username, role string, member *model.Member) error {
	token, _, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, username, role, h.Cfg.TokenTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}
	user := principalPart{ID: id, Username: username, Role: role}
	if member != nil {
		expiry := member.ExpiryDate
		user.FullName = member.FullName()
		user.MembershipCode = member.MembershipCode
		user.ExpiryDate = &expiry
		user.QRCode = member.QRCode
		user.Status = model.MembershipStatus(expiry, time.Now())
	}
	return c.JSON(http.StatusOK, loginResp{Token: token, User: user})
}

// Me returns the principal of the presented token.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthenticated"})
	}
	return c.JSON(http.StatusOK, principalPart{ID: p.ID, Username: p.Username, Role: p.Role})
}
