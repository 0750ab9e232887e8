package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cineforum/club-api/internal/middleware"
	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/repository"
)

// ProposalHandler implements the proposal register: members submit film
// suggestions, admins review them into a terminal state.
type ProposalHandler struct {
	Proposals ProposalStore
}

func NewProposalHandler(proposals ProposalStore) *ProposalHandler {
	return &ProposalHandler{Proposals: proposals}
}

type proposalReq struct {
	Title    string `json:"title"`
	Director string `json:"director"`
	Reason   string `json:"reason"`
}

// Create submits a proposal on behalf of the authenticated member. The
// member id always comes from the token, never from the body.
func (h *ProposalHandler) Create(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil || p.Role != middleware.RoleMember {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	var req proposalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Director = strings.TrimSpace(req.Director)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Title == "" || req.Director == "" || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "title, director and reason are required"})
	}

	proposal := model.Proposal{
		MemberID: p.ID,
		Title:    req.Title,
		Director: req.Director,
		Reason:   req.Reason,
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Proposals.Create(ctx, &proposal); err != nil {
		c.Logger().Errorf("create proposal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "proposal submission failed"})
	}
	return c.JSON(http.StatusOK, proposal)
}

// List is role-scoped: admins see every proposal with the submitting
// member's name, members see only their own.
func (h *ProposalHandler) List(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthenticated"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if p.Role == middleware.RoleAdmin {
		proposals, err := h.Proposals.ListAll(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch proposals"})
		}
		return c.JSON(http.StatusOK, proposals)
	}
	proposals, err := h.Proposals.ListByMember(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch proposals"})
	}
	return c.JSON(http.StatusOK, proposals)
}

type reviewReq struct {
	Status string `json:"status"`
}

// Review moves a pending proposal to approved or rejected. The review is
// one-directional: an already-reviewed proposal cannot be changed again
// and reports not found.
func (h *ProposalHandler) Review(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid proposal id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Status != model.ProposalApproved && req.Status != model.ProposalRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "status must be approved or rejected"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Proposals.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "pending proposal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "proposal review failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "proposal reviewed"})
}
