// Package middleware provides the request-processing chain shared by the
// protected routes: session-token verification, role checks, the login
// throttle and the film-listing response cache.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cineforum/club-api/internal/utils"
)

// Context key under which the verified token claims are stored.
const PrincipalKey = "principal"

// JWTAuth returns a middleware that validates a Bearer session token and
// stores the verified claims in the request context under PrincipalKey.
// An expired token and a malformed or forged one produce distinct log
// lines but the same 401 response; the client learns only that it is not
// authenticated.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				if err == utils.ErrTokenExpired {
					c.Logger().Infof("auth: expired token from %s", c.RealIP())
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token expired"})
				}
				c.Logger().Infof("auth: invalid token from %s", c.RealIP())
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
			}

			c.Set(PrincipalKey, claims)
			return next(c)
		}
	}
}

// Principal returns the verified claims stored by JWTAuth, or nil when
// the request did not pass through it.
func Principal(c echo.Context) *utils.Claims {
	if claims, ok := c.Get(PrincipalKey).(*utils.Claims); ok {
		return claims
	}
	return nil
}
