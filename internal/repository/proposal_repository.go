package repository

import (
	"context"
	"database/sql"

	"github.com/cineforum/club-api/internal/model"
)

// ProposalRepo provides persistence for member-submitted film proposals.
type ProposalRepo struct{ DB *sql.DB }

func NewProposalRepo(db *sql.DB) *ProposalRepo { return &ProposalRepo{DB: db} }

// Create appends a proposal in the pending state and populates ID,
// Status and CreatedAt.
func (r *ProposalRepo) Create(ctx context.Context, p *model.Proposal) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO film_proposals (member_id, title, director, reason) VALUES (?,?,?,?)",
		p.MemberID, p.Title, p.Director, p.Reason)
	if err != nil {
		return translateRefErr(err) // FK on member_id -> ErrNotFound
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT status, created_at FROM film_proposals WHERE id=?", p.ID).
		Scan(&p.Status, &p.CreatedAt)
}

// ListByMember returns a member's own proposals, newest first.
func (r *ProposalRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Proposal, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, member_id, title, director, reason, status, created_at
		 FROM film_proposals WHERE member_id=? ORDER BY created_at DESC, id DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Proposal{}
	for rows.Next() {
		var p model.Proposal
		if err := rows.Scan(&p.ID, &p.MemberID, &p.Title, &p.Director, &p.Reason,
			&p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListAll returns every proposal joined with the submitting member's
// display name, newest first. Admin review view.
func (r *ProposalRepo) ListAll(ctx context.Context) ([]model.ProposalWithMember, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.member_id, p.title, p.director, p.reason, p.status, p.created_at,
		        CONCAT(m.first_name, ' ', m.last_name)
		 FROM film_proposals p
		 JOIN members m ON m.id = p.member_id
		 ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ProposalWithMember{}
	for rows.Next() {
		var pm model.ProposalWithMember
		if err := rows.Scan(&pm.ID, &pm.MemberID, &pm.Title, &pm.Director, &pm.Reason,
			&pm.Status, &pm.CreatedAt, &pm.MemberName); err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

// UpdateStatus moves a pending proposal to its terminal review state.
// The WHERE clause refuses to touch already-reviewed rows, so a second
// review attempt reports ErrNotFound rather than silently flipping the
// outcome.
func (r *ProposalRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE film_proposals SET status=? WHERE id=? AND status=?",
		status, id, model.ProposalPending)
	if err != nil {
		return err
	}
	return affected(res)
}
