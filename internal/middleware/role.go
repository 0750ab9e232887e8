package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Principal roles carried in the token's role claim.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// RequireRole enforces that the authenticated principal has one of the
// given roles. Must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil || !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdminOrSelf allows admins through unconditionally and members
// only when the numeric path parameter equals their own principal id.
// This is the ownership clause on self-lookup endpoints such as a
// member's attendance history.
func RequireAdminOrSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			if p.Role == RoleAdmin {
				return next(c)
			}
			id, err := strconv.ParseUint(c.Param(param), 10, 64)
			if p.Role != RoleMember || err != nil || id != p.ID {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}
