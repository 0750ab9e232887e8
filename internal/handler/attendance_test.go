package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/queue"
)

func attendanceFixture() (*fakeMemberStore, *fakeAttendanceStore) {
	members := newFakeMemberStore()
	members.add(model.Member{
		ID: 5, FirstName: "Giulia", LastName: "Bianchi",
		MembershipCode: "CF000042",
		ExpiryDate:     time.Now().UTC().AddDate(1, 0, 0),
	})
	ledger := newFakeAttendanceStore()
	ledger.films = map[uint64]bool{10: true}
	return members, ledger
}

func register(t *testing.T, h *AttendanceHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := postJSON("/attendance", body)
	require.NoError(t, h.Register(c))
	return rec
}

func TestRegisterAttendance(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)

	rec := register(t, h, `{"membershipCode":"CF000042","filmId":10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message    string `json:"message"`
		Attendance struct {
			ID         uint64 `json:"id"`
			MemberID   uint64 `json:"memberId"`
			FilmID     uint64 `json:"filmId"`
			MemberName string `json:"memberName"`
		} `json:"attendance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "attendance marked", resp.Message)
	assert.Equal(t, uint64(5), resp.Attendance.MemberID)
	assert.Equal(t, uint64(10), resp.Attendance.FilmID)
	assert.Equal(t, "Giulia Bianchi", resp.Attendance.MemberName)
}

func TestRegisterAttendanceUnknownCode(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)

	rec := register(t, h, `{"membershipCode":"CF999999","filmId":10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "member not found")
}

func TestRegisterAttendanceCodeIsCaseSensitive(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)

	rec := register(t, h, `{"membershipCode":"cf000042","filmId":10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterAttendanceDuplicate(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)

	require.Equal(t, http.StatusOK, register(t, h, `{"membershipCode":"CF000042","filmId":10}`).Code)

	rec := register(t, h, `{"membershipCode":"CF000042","filmId":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message       string `json:"message"`
		MemberName    string `json:"memberName"`
		AlreadyMarked bool   `json:"alreadyMarked"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyMarked)
	assert.Equal(t, "Giulia Bianchi", resp.MemberName)
	assert.Contains(t, resp.Message, "Giulia Bianchi")
}

func TestRegisterAttendanceLostRace(t *testing.T) {
	members, ledger := attendanceFixture()
	// Exists says no, Create reports the pair key fired anyway.
	ledger.raceOnCreate = true
	h := NewAttendanceHandler(members, ledger, nil)

	rec := register(t, h, `{"membershipCode":"CF000042","filmId":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "alreadyMarked")
}

func TestRegisterAttendanceUnknownFilm(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)

	rec := register(t, h, `{"membershipCode":"CF000042","filmId":77}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "film not found")
}

func TestRegisterAttendanceMissingFields(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)

	for _, body := range []string{`{}`, `{"membershipCode":"CF000042"}`, `{"filmId":10}`} {
		rec := register(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestRegisterAttendancePublishesEvent(t *testing.T) {
	members, ledger := attendanceFixture()

	var mu sync.Mutex
	var got []queue.AttendanceRecordedEvent
	done := make(chan struct{})
	publish := func(_ context.Context, ev queue.AttendanceRecordedEvent) error {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		close(done)
		return nil
	}
	h := NewAttendanceHandler(members, ledger, publish)

	rec := register(t, h, `{"membershipCode":"CF000042","filmId":10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish was not called")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, uint64(5), got[0].MemberID)
	assert.Equal(t, uint64(10), got[0].FilmID)
	assert.Equal(t, "Giulia Bianchi", got[0].MemberName)
	assert.Equal(t, "CF000042", got[0].MembershipCode)
}

// A broker failure is logged from a goroutine that outlives the request,
// while echo has already recycled the context for the next request. The
// handler must not read the context after returning; the race detector
// catches a regression here.
func TestRegisterAttendanceSlowPublishFailureOutlivesRequest(t *testing.T) {
	members, ledger := attendanceFixture()
	ledger.films[11] = true

	published := make(chan struct{}, 2)
	publish := func(_ context.Context, _ queue.AttendanceRecordedEvent) error {
		time.Sleep(20 * time.Millisecond) // broker timing out, after the response went out
		published <- struct{}{}
		return errors.New("broker unavailable")
	}
	h := NewAttendanceHandler(members, ledger, publish)

	e := echo.New()
	e.POST("/attendance", h.Register)
	srv := httptest.NewServer(e)
	defer srv.Close()

	post := func(body string) {
		resp, err := http.Post(srv.URL+"/attendance", echo.MIMEApplicationJSON, strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Back-to-back requests: the second reuses the pooled context while
	// the first publish goroutine is still failing.
	post(`{"membershipCode":"CF000042","filmId":10}`)
	post(`{"membershipCode":"CF000042","filmId":11}`)

	for i := 0; i < 2; i++ {
		select {
		case <-published:
		case <-time.After(time.Second):
			t.Fatal("publish goroutine did not run")
		}
	}
}

func TestAttendanceByMember(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)
	require.Equal(t, http.StatusOK, register(t, h, `{"membershipCode":"CF000042","filmId":10}`).Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/attendance/member/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("memberId")
	c.SetParamValues("5")

	require.NoError(t, h.ByMember(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []model.MemberAttendance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, uint64(10), records[0].FilmID)
}

func TestAttendanceByFilm(t *testing.T) {
	members, ledger := attendanceFixture()
	h := NewAttendanceHandler(members, ledger, nil)
	require.Equal(t, http.StatusOK, register(t, h, `{"membershipCode":"CF000042","filmId":10}`).Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/attendance/film/10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("filmId")
	c.SetParamValues("10")

	require.NoError(t, h.ByFilm(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []model.FilmAttendance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, uint64(5), records[0].MemberID)
}
