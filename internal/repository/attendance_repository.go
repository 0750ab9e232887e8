package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cineforum/club-api/internal/model"
)

// AttendanceRepo provides persistence for the attendance ledger. Records
// are append-only: they are created by the registration scan and never
// updated afterwards.
type AttendanceRepo struct{ DB *sql.DB }

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{DB: db} }

// Create appends an attendance record with a server-assigned timestamp
// and populates ID and AttendedAt. The unique (member_id, film_id) key
// decides races between concurrent scans: the losing insert comes back
// as ErrAlreadyRecorded. A missing film fails the foreign key and is
// returned as ErrNotFound.
func (r *AttendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO attendance (member_id, film_id) VALUES (?,?)", a.MemberID, a.FilmID)
	if err != nil {
		return translateAttendanceErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT attended_at FROM attendance WHERE id=?", a.ID).Scan(&a.AttendedAt)
}

// Exists reports whether the (member, film) pair is already recorded.
// Used for the friendly pre-check before insert; the unique key remains
// the authority under concurrency.
func (r *AttendanceRepo) Exists(ctx context.Context, memberID, filmID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM attendance WHERE member_id=? AND film_id=? LIMIT 1",
		memberID, filmID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByMember returns a member's attendance joined with film title and
// date, most recent first.
func (r *AttendanceRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.MemberAttendance, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT a.id, a.member_id, a.film_id, a.attended_at, f.title, f.scheduled_date
		 FROM attendance a
		 JOIN films f ON f.id = a.film_id
		 WHERE a.member_id = ?
		 ORDER BY a.attended_at DESC, a.id DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MemberAttendance{}
	for rows.Next() {
		var ma model.MemberAttendance
		if err := rows.Scan(&ma.ID, &ma.MemberID, &ma.FilmID, &ma.AttendedAt,
			&ma.FilmTitle, &ma.FilmDate); err != nil {
			return nil, err
		}
		out = append(out, ma)
	}
	return out, rows.Err()
}

// ListByFilm returns a screening's attendance joined with member display
// names, most recent first. Attendance counts are derived by taking the
// length of this result; no counter is stored anywhere.
func (r *AttendanceRepo) ListByFilm(ctx context.Context, filmID uint64) ([]model.FilmAttendance, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT a.id, a.member_id, a.film_id, a.attended_at,
		        CONCAT(m.first_name, ' ', m.last_name)
		 FROM attendance a
		 JOIN members m ON m.id = a.member_id
		 WHERE a.film_id = ?
		 ORDER BY a.attended_at DESC, a.id DESC`, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FilmAttendance{}
	for rows.Next() {
		var fa model.FilmAttendance
		if err := rows.Scan(&fa.ID, &fa.MemberID, &fa.FilmID, &fa.AttendedAt,
			&fa.MemberName); err != nil {
			return nil, err
		}
		out = append(out, fa)
	}
	return out, rows.Err()
}
