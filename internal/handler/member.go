package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineforum/club-api/internal/config"
	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/repository"
	"github.com/cineforum/club-api/internal/utils"
)

// MemberHandler implements the membership lifecycle endpoints: admin
// registration, listing, profile updates, renewal and credential reset.
type MemberHandler struct {
	Cfg     config.Config
	Members MemberStore
}

func NewMemberHandler(cfg config.Config, members MemberStore) *MemberHandler {
	return &MemberHandler{Cfg: cfg, Members: members}
}

type memberReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD
	TaxCode   string `json:"taxCode"`
	Email     string `json:"email"`
}

// profile validates the request fields and converts the birth date.
func (r memberReq) profile() (model.Profile, error) {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.TaxCode = strings.ToUpper(strings.TrimSpace(r.TaxCode))
	r.Email = strings.TrimSpace(r.Email)
	if r.FirstName == "" || r.LastName == "" || r.BirthDate == "" || r.TaxCode == "" || r.Email == "" {
		return model.Profile{}, errors.New("firstName, lastName, birthDate, taxCode and email are required")
	}
	birth, err := time.Parse("2006-01-02", r.BirthDate)
	if err != nil {
		return model.Profile{}, errors.New("birthDate must be YYYY-MM-DD")
	}
	return model.Profile{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		BirthDate: birth,
		TaxCode:   r.TaxCode,
		Email:     r.Email,
	}, nil
}

// memberResp decorates a member with its derived membership status. The
// status is recomputed on every read from the expiry date.
type memberResp struct {
	model.Member
	Status string `json:"status"`
}

func toMemberResp(m model.Member) memberResp {
	return memberResp{Member: m, Status: model.MembershipStatus(m.ExpiryDate, time.Now())}
}

// Create registers a new member: generates the login username, a one-time
// password, the membership code and its QR image, sets expiry one year
// out, and persists the record. The cleartext password appears once in
// the response and is never retrievable again. Generation is single-shot;
// a collision surfaces as a per-field duplicate message and the admin
// resubmits.
func (h *MemberHandler) Create(c echo.Context) error {
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	p, err := req.profile()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	username, err := utils.GenerateUsername(p.FirstName, p.LastName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member creation failed"})
	}
	plainPassword, err := utils.GeneratePassword()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member creation failed"})
	}
	hash, err := utils.HashPassword(plainPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member creation failed"})
	}
	code, err := utils.GenerateMembershipCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member creation failed"})
	}
	qr, err := utils.MembershipQR(code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member creation failed"})
	}

	now := time.Now().UTC()
	m := model.Member{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		BirthDate:      p.BirthDate,
		TaxCode:        p.TaxCode,
		Email:          p.Email,
		Username:       username,
		PasswordHash:   hash,
		MembershipCode: code,
		QRCode:         qr,
		ExpiryDate:     now.AddDate(1, 0, 0),
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Members.Create(ctx, &m); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": duplicateMessage(dup)})
		}
		c.Logger().Errorf("create member: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member creation failed"})
	}

	return c.JSON(http.StatusOK, struct {
		memberResp
		PlainPassword string `json:"plainPassword"`
	}{toMemberResp(m), plainPassword})
}

// duplicateMessage turns the conflicting field into the user-facing text
// shown to the admin.
func duplicateMessage(dup *repository.DuplicateError) string {
	switch dup.Field {
	case repository.DupUsername:
		return "username already exists"
	case repository.DupTaxCode:
		return "tax code already exists"
	case repository.DupMembershipCode:
		return "membership code already exists"
	default:
		return "duplicate entry already exists"
	}
}

// List returns all members, newest first, each with its derived status.
func (h *MemberHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	members, err := h.Members.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch members"})
	}
	out := make([]memberResp, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single member by id.
func (h *MemberHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid member id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	m, err := h.Members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch member"})
	}
	return c.JSON(http.StatusOK, toMemberResp(m))
}

// Update rewrites a member's identity fields. Credentials, membership
// code and expiry are untouched; they change only through the dedicated
// reset and renew operations.
func (h *MemberHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid member id"})
	}
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	p, err := req.profile()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Members.UpdateProfile(ctx, id, p); err != nil {
		var dup *repository.DuplicateError
		switch {
		case errors.As(err, &dup):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": duplicateMessage(dup)})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "member updated"})
}

// Delete removes a member.
func (h *MemberHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid member id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Members.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "member deletion failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "member deleted"})
}

// Renew pushes the member's expiry to one year from now. Renewal is
// always relative to today, never additive on the previous expiry, so
// repeated calls are harmless.
func (h *MemberHandler) Renew(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid member id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Members.UpdateExpiry(ctx, id, time.Now().UTC().AddDate(1, 0, 0)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "renewal failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "membership renewed"})
}

// ResetPassword replaces the member's password with a fresh random one
// and returns the cleartext exactly once.
func (h *MemberHandler) ResetPassword(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid member id"})
	}
	plain, err := utils.GeneratePassword()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "password reset failed"})
	}
	hash, err := utils.HashPassword(plain, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "password reset failed"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Members.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "password reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset", "newPassword": plain})
}
