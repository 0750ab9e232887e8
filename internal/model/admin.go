package model

import "time"

// Admin mirrors the `admins` table. A single default admin is seeded at
// first boot when the table is empty; the operator is expected to rotate
// its password afterwards.
type Admin struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
