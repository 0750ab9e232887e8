package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cineforum/club-api/internal/model"
)

const memberColumns = `id, first_name, last_name, birth_date, tax_code, email,
	username, password_hash, membership_code, qr_code, expiry_date, is_active, created_at`

// MemberRepo provides persistence for club members. Uniqueness of
// username, tax code and membership code is enforced by named unique keys
// in the schema; collisions surface as *DuplicateError.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// Create inserts a fully generated member record and populates its ID and
// CreatedAt. The caller supplies every column: credentials, membership
// code, QR data URL and expiry are generated before this call.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO members (first_name, last_name, birth_date, tax_code, email,
			username, password_hash, membership_code, qr_code, expiry_date)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		m.FirstName, m.LastName, m.BirthDate, m.TaxCode, m.Email,
		m.Username, m.PasswordHash, m.MembershipCode, m.QRCode, m.ExpiryDate)
	if err != nil {
		return translateMemberErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT is_active, created_at FROM members WHERE id=?", m.ID).
		Scan(&m.IsActive, &m.CreatedAt)
}

func (r *MemberRepo) scanOne(row *sql.Row) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.BirthDate, &m.TaxCode,
		&m.Email, &m.Username, &m.PasswordHash, &m.MembershipCode, &m.QRCode,
		&m.ExpiryDate, &m.IsActive, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Member{}, ErrNotFound
	}
	return m, err
}

// GetByID fetches a member by primary key.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches a member by login username.
func (r *MemberRepo) GetByUsername(ctx context.Context, username string) (model.Member, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE username=? LIMIT 1", username))
}

// GetByMembershipCode resolves a scanned or typed membership code to a
// member. The match is exact and case-sensitive on the stored code.
func (r *MemberRepo) GetByMembershipCode(ctx context.Context, code string) (model.Member, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE membership_code=? LIMIT 1", code))
}

// List returns all members, newest first.
func (r *MemberRepo) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM members ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.BirthDate,
			&m.TaxCode, &m.Email, &m.Username, &m.PasswordHash, &m.MembershipCode,
			&m.QRCode, &m.ExpiryDate, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateExpiry sets a member's expiry date, typically to one year from
// the renewal call. Returns ErrNotFound when the id matches no row.
// The DSN requests clientFoundRows so renewing twice on the same day
// (same resulting date, zero changed rows) still counts as a match.
func (r *MemberRepo) UpdateExpiry(ctx context.Context, id uint64, expiry time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE members SET expiry_date=? WHERE id=?", expiry, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// UpdatePassword replaces a member's password hash.
func (r *MemberRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE members SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// UpdateProfile rewrites the admin-editable identity fields. A tax-code
// collision with another member surfaces as *DuplicateError.
func (r *MemberRepo) UpdateProfile(ctx context.Context, id uint64, p model.Profile) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE members SET first_name=?, last_name=?, birth_date=?, tax_code=?, email=? WHERE id=?",
		p.FirstName, p.LastName, p.BirthDate, p.TaxCode, p.Email, id)
	if err != nil {
		return translateMemberErr(err)
	}
	return affected(res)
}

// Delete removes a member row.
func (r *MemberRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM members WHERE id=?", id)
	if err != nil {
		return err
	}
	return affected(res)
}
