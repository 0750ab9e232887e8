package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineforum/club-api/internal/utils"
)

func contextWithPrincipal(role string, id uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(PrincipalKey, &utils.Claims{ID: id, Username: "u", Role: role})
	}
	return c, rec
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		role    string
		want    int
	}{
		{"admin allowed", []string{RoleAdmin}, RoleAdmin, http.StatusOK},
		{"member blocked from admin route", []string{RoleAdmin}, RoleMember, http.StatusForbidden},
		{"member allowed", []string{RoleMember}, RoleMember, http.StatusOK},
		{"either role allowed", []string{RoleAdmin, RoleMember}, RoleMember, http.StatusOK},
		{"no principal", []string{RoleAdmin}, "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := contextWithPrincipal(tt.role, 1)
			h := RequireRole(tt.allowed...)(okHandler)
			require.NoError(t, h(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAdminOrSelf(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		id    uint64
		param string
		want  int
	}{
		{"admin any member", RoleAdmin, 1, "42", http.StatusOK},
		{"member own id", RoleMember, 42, "42", http.StatusOK},
		{"member other id", RoleMember, 42, "43", http.StatusForbidden},
		{"member bad param", RoleMember, 42, "abc", http.StatusForbidden},
		{"no principal", "", 0, "42", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := contextWithPrincipal(tt.role, tt.id)
			c.SetParamNames("memberId")
			c.SetParamValues(tt.param)
			h := RequireAdminOrSelf("memberId")(okHandler)
			require.NoError(t, h(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
