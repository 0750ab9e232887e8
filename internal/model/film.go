package model

import "time"

// Film mirrors the `films` table. CoverImage holds the public path of an
// uploaded poster ("/uploads/...") and may be nil when no poster was
// provided.
type Film struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Director      string    `json:"director"`
	Cast          string    `json:"cast"`
	Plot          string    `json:"plot"`
	CoverImage    *string   `json:"coverImage"`
	ScheduledDate time.Time `json:"scheduledDate"`
	CreatedAt     time.Time `json:"createdAt"`
}
