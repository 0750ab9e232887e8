package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cineforum/club-api/internal/config"
	"github.com/cineforum/club-api/internal/middleware"
	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/utils"
)

func testCfg() config.Config {
	return config.Config{
		JWTSecret:     "test-secret",
		TokenTTLHours: 24,
		BcryptCost:    bcrypt.MinCost,
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authFixture(t *testing.T) (*AuthHandler, *fakeMemberStore) {
	t.Helper()
	admins := &fakeAdminStore{admins: map[string]model.Admin{
		"admin": {ID: 1, Username: "admin", PasswordHash: mustHash(t, "AdminPass1!")},
	}}
	members := newFakeMemberStore()
	members.add(model.Member{
		ID:             5,
		FirstName:      "Giulia",
		LastName:       "Bianchi",
		Username:       "giuliabianchi042",
		PasswordHash:   mustHash(t, "Xy7kQm2P"),
		MembershipCode: "CF000042",
		QRCode:         "data:image/png;base64,abc",
		ExpiryDate:     time.Now().UTC().AddDate(1, 0, 0),
	})
	return NewAuthHandler(testCfg(), admins, members), members
}

func TestLoginAdmin(t *testing.T) {
	h, _ := authFixture(t)
	c, rec := postJSON("/auth/login", `{"username":"admin","password":"AdminPass1!"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.User.Username)
	assert.Equal(t, middleware.RoleAdmin, resp.User.Role)
	assert.Empty(t, resp.User.MembershipCode)
	assert.Empty(t, resp.User.Status)

	claims, err := utils.ParseAccessToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)
	assert.Equal(t, uint64(1), claims.ID)
}

func TestLoginMemberCarriesMembershipFields(t *testing.T) {
	h, _ := authFixture(t)
	c, rec := postJSON("/auth/login", `{"username":"giuliabianchi042","password":"Xy7kQm2P"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, middleware.RoleMember, resp.User.Role)
	assert.Equal(t, "Giulia Bianchi", resp.User.FullName)
	assert.Equal(t, "CF000042", resp.User.MembershipCode)
	assert.Equal(t, "data:image/png;base64,abc", resp.User.QRCode)
	assert.Equal(t, model.StatusActive, resp.User.Status)
	require.NotNil(t, resp.User.ExpiryDate)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	h, _ := authFixture(t)
	tests := []struct {
		name string
		body string
	}{
		{"unknown username", `{"username":"nobody","password":"whatever"}`},
		{"admin wrong password", `{"username":"admin","password":"wrong"}`},
		{"member wrong password", `{"username":"giuliabianchi042","password":"wrong"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := postJSON("/auth/login", tt.body)
			require.NoError(t, h.Login(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid credentials")
		})
	}
}

func TestLoginMissingFields(t *testing.T) {
	h, _ := authFixture(t)
	c, rec := postJSON("/auth/login", `{"username":"  ","password":""}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	h, _ := authFixture(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.PrincipalKey, &utils.Claims{ID: 5, Username: "giuliabianchi042", Role: middleware.RoleMember})

	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got principalPart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint64(5), got.ID)
	assert.Equal(t, middleware.RoleMember, got.Role)
}

func TestMeUnauthenticated(t *testing.T) {
	h, _ := authFixture(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Me(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
