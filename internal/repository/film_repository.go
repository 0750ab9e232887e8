package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cineforum/club-api/internal/model"
)

const filmColumns = "id, title, director, `cast`, plot, cover_image, scheduled_date, created_at"

// FilmRepo provides persistence for the screening catalog.
type FilmRepo struct{ DB *sql.DB }

func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{DB: db} }

// Create inserts a film and populates its ID and CreatedAt.
func (r *FilmRepo) Create(ctx context.Context, f *model.Film) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO films (title, director, `cast`, plot, cover_image, scheduled_date) VALUES (?,?,?,?,?,?)",
		f.Title, f.Director, f.Cast, f.Plot, f.CoverImage, f.ScheduledDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM films WHERE id=?", f.ID).Scan(&f.CreatedAt)
}

// GetByID fetches a single film.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (model.Film, error) {
	var f model.Film
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+filmColumns+" FROM films WHERE id=? LIMIT 1", id).
		Scan(&f.ID, &f.Title, &f.Director, &f.Cast, &f.Plot, &f.CoverImage,
			&f.ScheduledDate, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Film{}, ErrNotFound
	}
	return f, err
}

// List returns the whole catalog ordered by screening date.
func (r *FilmRepo) List(ctx context.Context) ([]model.Film, error) {
	return r.query(ctx, "SELECT "+filmColumns+" FROM films ORDER BY scheduled_date")
}

// Upcoming returns films scheduled from the given instant onwards,
// soonest first.
func (r *FilmRepo) Upcoming(ctx context.Context, now time.Time) ([]model.Film, error) {
	return r.query(ctx,
		"SELECT "+filmColumns+" FROM films WHERE scheduled_date >= ? ORDER BY scheduled_date", now)
}

// Past returns films already screened, most recent first.
func (r *FilmRepo) Past(ctx context.Context, now time.Time) ([]model.Film, error) {
	return r.query(ctx,
		"SELECT "+filmColumns+" FROM films WHERE scheduled_date < ? ORDER BY scheduled_date DESC", now)
}

// Update rewrites a film's metadata. Returns ErrNotFound for an unknown id.
func (r *FilmRepo) Update(ctx context.Context, id uint64, f model.Film) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE films SET title=?, director=?, `cast`=?, plot=?, cover_image=?, scheduled_date=? WHERE id=?",
		f.Title, f.Director, f.Cast, f.Plot, f.CoverImage, f.ScheduledDate, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes a film row. Attendance rows referencing it are removed
// with it by the ON DELETE CASCADE on the foreign key.
func (r *FilmRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM films WHERE id=?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *FilmRepo) query(ctx context.Context, q string, args ...any) ([]model.Film, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Film{}
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Director, &f.Cast, &f.Plot,
			&f.CoverImage, &f.ScheduledDate, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// affected converts a zero-row update/delete into ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
