package model

import "time"

// Attendance mirrors the `attendance` table. The (member_id, film_id)
// pair is covered by a unique key, so at most one record can ever exist
// per member per screening.
type Attendance struct {
	ID         uint64    `json:"id"`
	MemberID   uint64    `json:"memberId"`
	FilmID     uint64    `json:"filmId"`
	AttendedAt time.Time `json:"attendedAt"`
}

// MemberAttendance is a member's history row: an attendance record joined
// with the screening it refers to.
type MemberAttendance struct {
	Attendance
	FilmTitle string    `json:"filmTitle"`
	FilmDate  time.Time `json:"filmDate"`
}

// FilmAttendance is a screening's register row: an attendance record
// joined with the member's display name.
type FilmAttendance struct {
	Attendance
	MemberName string `json:"memberName"`
}
