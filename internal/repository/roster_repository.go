package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

// RosterRepository reads the lab membership roster.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// GetByID fetches a single member.
func (r *RosterRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	const query = `SELECT id, full_name, grade, contact, is_admin, points, created_at, updated_at
FROM members WHERE id = $1`
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "member not found")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &member, nil
}

// Exists reports whether a member with the given id exists.
func (r *RosterRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("member exists: %w", err)
	}
	return exists, nil
}

// MemberIDsByGrades returns the ids of non-admin members in any of the grades.
func (r *RosterRepository) MemberIDsByGrades(ctx context.Context, grades []string) ([]string, error) {
	const query = `SELECT id FROM members WHERE grade = ANY($1) AND is_admin = FALSE ORDER BY id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, pq.Array(grades)); err != nil {
		return nil, fmt.Errorf("member ids by grades: %w", err)
	}
	return ids, nil
}

// AdminIDs returns the set of administrator ids.
func (r *RosterRepository) AdminIDs(ctx context.Context) (map[string]struct{}, error) {
	const query = `SELECT id FROM members WHERE is_admin = TRUE`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("admin ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// MembersByIDs returns roster rows for the given ids, keeping input order
// out of scope; callers sort as needed.
func (r *RosterRepository) MembersByIDs(ctx context.Context, ids []string) ([]models.Member, error) {
	const query = `SELECT id, full_name, grade, contact, is_admin, points, created_at, updated_at
FROM members WHERE id = ANY($1) ORDER BY full_name`
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("members by ids: %w", err)
	}
	return members, nil
}
