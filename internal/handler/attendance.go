package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/queue"
	"github.com/cineforum/club-api/internal/repository"
)

// AttendancePublisher emits an event after a successful registration.
// Publishing is best effort: a broker outage must never fail the scan.
type AttendancePublisher func(ctx context.Context, ev queue.AttendanceRecordedEvent) error

// AttendanceHandler implements the attendance ledger endpoints: the
// registration scan and the per-member / per-film history queries.
type AttendanceHandler struct {
	Members MemberStore
	Ledger  AttendanceStore
	Publish AttendancePublisher // optional
}

func NewAttendanceHandler(members MemberStore, ledger AttendanceStore, publish AttendancePublisher) *AttendanceHandler {
	return &AttendanceHandler{Members: members, Ledger: ledger, Publish: publish}
}

type registerAttendanceReq struct {
	MembershipCode string `json:"membershipCode"`
	FilmID         uint64 `json:"filmId"`
}

type attendancePart struct {
	model.Attendance
	MemberName string `json:"memberName"`
}

// Register records that the member identified by the scanned membership
// code attended the given screening. The code match is exact and
// case-sensitive. A duplicate pair is rejected with the member's name in
// the payload so the operator sees "already marked for X" without a
// second lookup; the unique key on (member_id, film_id) settles races
// the pre-check cannot.
func (h *AttendanceHandler) Register(c echo.Context) error {
	var req registerAttendanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.MembershipCode = strings.TrimSpace(req.MembershipCode)
	if req.MembershipCode == "" || req.FilmID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "membershipCode and filmId required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	member, err := h.Members.GetByMembershipCode(ctx, req.MembershipCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "attendance registration failed"})
	}

	exists, err := h.Ledger.Exists(ctx, member.ID, req.FilmID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "attendance registration failed"})
	}
	if exists {
		return h.alreadyMarked(c, member)
	}

	att := model.Attendance{MemberID: member.ID, FilmID: req.FilmID}
	if err := h.Ledger.Create(ctx, &att); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRecorded):
			// Lost the race against a concurrent scan of the same card.
			return h.alreadyMarked(c, member)
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "film not found"})
		}
		c.Logger().Errorf("register attendance: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "attendance registration failed"})
	}

	if h.Publish != nil {
		ev := queue.AttendanceRecordedEvent{
			AttendanceID:   att.ID,
			MemberID:       member.ID,
			MemberName:     member.FullName(),
			MembershipCode: member.MembershipCode,
			FilmID:         att.FilmID,
			RecordedAt:     att.AttendedAt.UTC().Format(time.RFC3339),
		}
		// Echo recycles the context once the handler returns, so the
		// goroutine must not touch it; grab the logger up front.
		logger := c.Logger()
		go func() {
			if err := h.Publish(context.Background(), ev); err != nil {
				logger.Warnf("publish attendance event: %v", err)
			}
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "attendance marked",
		"attendance": attendancePart{Attendance: att, MemberName: member.FullName()},
	})
}

func (h *AttendanceHandler) alreadyMarked(c echo.Context, member model.Member) error {
	name := member.FullName()
	return c.JSON(http.StatusBadRequest, echo.Map{
		"message":       "attendance already recorded for " + name,
		"memberName":    name,
		"alreadyMarked": true,
	})
}

// ByMember returns a member's attendance history joined with screening
// title and date, most recent first. Route middleware restricts access
// to admins and the member themself.
func (h *AttendanceHandler) ByMember(c echo.Context) error {
	memberID, err := parseID(c, "memberId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid member id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	records, err := h.Ledger.ListByMember(ctx, memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch attendance"})
	}
	return c.JSON(http.StatusOK, records)
}

// ByFilm returns a screening's attendance joined with member names, most
// recent first. Admin only, enforced by route middleware.
func (h *AttendanceHandler) ByFilm(c echo.Context) error {
	filmID, err := parseID(c, "filmId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid film id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	records, err := h.Ledger.ListByFilm(ctx, filmID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch attendance"})
	}
	return c.JSON(http.StatusOK, records)
}
