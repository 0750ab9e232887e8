package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/cineforum/club-api/internal/model"
)

// AdminRepo provides persistence for administrator accounts.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// GetByUsername fetches an admin by username. Returns ErrNotFound when
// no such admin exists.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (model.Admin, error) {
	username = strings.TrimSpace(username)
	var a model.Admin
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM admins WHERE username=? LIMIT 1",
		username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Admin{}, ErrNotFound
	}
	return a, err
}

// Create inserts an admin with an already-hashed password and returns the
// stored row. A username collision surfaces as *DuplicateError, which the
// startup bootstrap treats as "another process seeded first".
func (r *AdminRepo) Create(ctx context.Context, username, passwordHash string) (model.Admin, error) {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins (username, password_hash) VALUES (?,?)", username, passwordHash)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDupEntry {
			return model.Admin{}, &DuplicateError{Field: DupUsername}
		}
		return model.Admin{}, err
	}
	return r.GetByUsername(ctx, username)
}
