package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lab-admin-api/internal/models"
)

// LeaveRepository reads approved leave requests for penalty exemption.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// ApprovedUserIDsOn returns the set of users with an approved leave covering
// the given date.
func (r *LeaveRepository) ApprovedUserIDsOn(ctx context.Context, date time.Time) (map[string]struct{}, error) {
	const query = `SELECT user_id FROM leave_requests
WHERE status = $1 AND date_from <= $2 AND date_to >= $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, models.LeaveStatusApproved, date.Format(models.DateLayout)); err != nil {
		return nil, fmt.Errorf("approved leave user ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
