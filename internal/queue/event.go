// Package queue defines the message payloads exchanged over the broker
// and the background consumer that materializes them into the scan log.
package queue

// AttendanceQueueName is the durable queue carrying attendance events.
const AttendanceQueueName = "attendance.recorded"

// AttendanceRecordedEvent is published after a successful registration
// scan. It carries enough context for downstream consumers (scan log,
// notifications, analytics) without a round trip to the database.
type AttendanceRecordedEvent struct {
	AttendanceID   uint64 `json:"attendance_id"`
	MemberID       uint64 `json:"member_id"`
	MemberName     string `json:"member_name"`
	MembershipCode string `json:"membership_code"`
	FilmID         uint64 `json:"film_id"`
	RecordedAt     string `json:"recorded_at"`
}
