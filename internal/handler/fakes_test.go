package handler

import (
	"context"
	"time"

	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/repository"
)

// fakeMemberStore is an in-memory MemberStore that enforces the same
// uniqueness rules as the members table.
type fakeMemberStore struct {
	nextID  uint64
	members map[uint64]model.Member

	createErr error
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{nextID: 1, members: map[uint64]model.Member{}}
}

func (s *fakeMemberStore) add(m model.Member) model.Member {
	if m.ID == 0 {
		m.ID = s.nextID
	}
	if m.ID >= s.nextID {
		s.nextID = m.ID + 1
	}
	s.members[m.ID] = m
	return m
}

func (s *fakeMemberStore) Create(_ context.Context, m *model.Member) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, other := range s.members {
		switch {
		case other.Username == m.Username:
			return &repository.DuplicateError{Field: repository.DupUsername}
		case other.TaxCode == m.TaxCode:
			return &repository.DuplicateError{Field: repository.DupTaxCode}
		case other.MembershipCode == m.MembershipCode:
			return &repository.DuplicateError{Field: repository.DupMembershipCode}
		}
	}
	m.ID = s.nextID
	m.IsActive = true
	m.CreatedAt = time.Now().UTC()
	s.nextID++
	s.members[m.ID] = *m
	return nil
}

func (s *fakeMemberStore) GetByID(_ context.Context, id uint64) (model.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return model.Member{}, repository.ErrNotFound
	}
	return m, nil
}

func (s *fakeMemberStore) GetByUsername(_ context.Context, username string) (model.Member, error) {
	for _, m := range s.members {
		if m.Username == username {
			return m, nil
		}
	}
	return model.Member{}, repository.ErrNotFound
}

func (s *fakeMemberStore) GetByMembershipCode(_ context.Context, code string) (model.Member, error) {
	for _, m := range s.members {
		if m.MembershipCode == code {
			return m, nil
		}
	}
	return model.Member{}, repository.ErrNotFound
}

func (s *fakeMemberStore) List(_ context.Context) ([]model.Member, error) {
	out := make([]model.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeMemberStore) UpdateExpiry(_ context.Context, id uint64, expiry time.Time) error {
	m, ok := s.members[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.ExpiryDate = expiry
	s.members[id] = m
	return nil
}

func (s *fakeMemberStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	m, ok := s.members[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.PasswordHash = hash
	s.members[id] = m
	return nil
}

func (s *fakeMemberStore) UpdateProfile(_ context.Context, id uint64, p model.Profile) error {
	m, ok := s.members[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.FirstName, m.LastName = p.FirstName, p.LastName
	m.BirthDate, m.TaxCode, m.Email = p.BirthDate, p.TaxCode, p.Email
	s.members[id] = m
	return nil
}

func (s *fakeMemberStore) Delete(_ context.Context, id uint64) error {
	if _, ok := s.members[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

// fakeAdminStore is a read-only AdminStore keyed by username.
type fakeAdminStore struct {
	admins map[string]model.Admin
}

func (s *fakeAdminStore) GetByUsername(_ context.Context, username string) (model.Admin, error) {
	if a, ok := s.admins[username]; ok {
		return a, nil
	}
	return model.Admin{}, repository.ErrNotFound
}

type pair struct{ memberID, filmID uint64 }

// fakeAttendanceStore enforces the at-most-once pair rule the way the
// unique key does.
type fakeAttendanceStore struct {
	nextID  uint64
	records map[pair]model.Attendance
	films   map[uint64]bool // known film ids; empty map means "accept all"

	existsErr error
	// raceOnCreate makes Create behave as if a concurrent insert won
	// after the Exists pre-check passed.
	raceOnCreate bool
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{nextID: 1, records: map[pair]model.Attendance{}}
}

func (s *fakeAttendanceStore) Create(_ context.Context, a *model.Attendance) error {
	if s.raceOnCreate {
		return repository.ErrAlreadyRecorded
	}
	if s.films != nil && !s.films[a.FilmID] {
		return repository.ErrNotFound
	}
	key := pair{a.MemberID, a.FilmID}
	if _, ok := s.records[key]; ok {
		return repository.ErrAlreadyRecorded
	}
	a.ID = s.nextID
	a.AttendedAt = time.Now().UTC()
	s.nextID++
	s.records[key] = *a
	return nil
}

func (s *fakeAttendanceStore) Exists(_ context.Context, memberID, filmID uint64) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.records[pair{memberID, filmID}]
	return ok, nil
}

func (s *fakeAttendanceStore) ListByMember(_ context.Context, memberID uint64) ([]model.MemberAttendance, error) {
	out := []model.MemberAttendance{}
	for _, a := range s.records {
		if a.MemberID == memberID {
			out = append(out, model.MemberAttendance{Attendance: a})
		}
	}
	return out, nil
}

func (s *fakeAttendanceStore) ListByFilm(_ context.Context, filmID uint64) ([]model.FilmAttendance, error) {
	out := []model.FilmAttendance{}
	for _, a := range s.records {
		if a.FilmID == filmID {
			out = append(out, model.FilmAttendance{Attendance: a})
		}
	}
	return out, nil
}
