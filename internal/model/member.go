package model

import "time"

// Membership status values derived from the expiry date. The status is
// never stored; it is recomputed on every read so it can not drift from
// the expiry date itself.
const (
	StatusExpired      = "expired"
	StatusExpiringSoon = "expiring_soon"
	StatusActive       = "active"
)

// Member mirrors the `members` table. The password hash never leaves the
// server; the QR code is a PNG data URL generated once when the member is
// created and stored alongside the row.
type Member struct {
	ID             uint64    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	BirthDate      time.Time `json:"birthDate"`
	TaxCode        string    `json:"taxCode"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	MembershipCode string    `json:"membershipCode"`
	QRCode         string    `json:"qrCode"`
	ExpiryDate     time.Time `json:"expiryDate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Profile carries the admin-supplied identity fields of a member. The
// remaining columns (username, password, membership code, QR, expiry) are
// generated server side at registration time.
type Profile struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate time.Time `json:"birthDate"`
	TaxCode   string    `json:"taxCode"`
	Email     string    `json:"email"`
}

// FullName returns the display name used in attendance payloads.
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// MembershipStatus classifies an expiry date relative to a reference day.
// Comparison is day-granular: the time-of-day of both arguments is
// ignored. An expiry before today is expired; today through thirty days
// out is expiring soon; anything later is active.
func MembershipStatus(expiry, today time.Time) string {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(t).Hours() / 24)
	switch {
	case days < 0:
		return StatusExpired
	case days <= 30:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}
