package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

// CheckInRepository handles persistence for check-in records.
//
// The (trigger_id, user_id) unique constraint is the race guard: a losing
// concurrent insert surfaces as appErrors.ErrDuplicate so the caller can
// report "already signed" instead of a generic failure.
type CheckInRepository struct {
	db *sqlx.DB
}

// NewCheckInRepository constructs the repository.
func NewCheckInRepository(db *sqlx.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Insert records a sign, returning appErrors.ErrDuplicate when the user has
// already signed this trigger.
func (r *CheckInRepository) Insert(ctx context.Context, record *models.CheckInRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.SignedAt.IsZero() {
		record.SignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO checkin_records (id, trigger_id, user_id, latitude, longitude, signed_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (trigger_id, user_id) DO NOTHING
RETURNING id`
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query,
		record.ID, record.TriggerID, record.UserID, record.Latitude, record.Longitude, record.SignedAt,
	).Scan(&insertedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrDuplicate
		}
		return fmt.Errorf("insert check-in: %w", err)
	}
	return nil
}

// Exists reports whether the user already signed the trigger.
func (r *CheckInRepository) Exists(ctx context.Context, triggerID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM checkin_records WHERE trigger_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, triggerID, userID); err != nil {
		return false, fmt.Errorf("check-in exists: %w", err)
	}
	return exists, nil
}

// SignedUserIDs returns the set of users who signed the trigger.
func (r *CheckInRepository) SignedUserIDs(ctx context.Context, triggerID string) (map[string]struct{}, error) {
	const query = `SELECT user_id FROM checkin_records WHERE trigger_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, triggerID); err != nil {
		return nil, fmt.Errorf("signed user ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListByTrigger returns all check-ins for a trigger, earliest first.
func (r *CheckInRepository) ListByTrigger(ctx context.Context, triggerID string) ([]models.CheckInRecord, error) {
	const query = `SELECT id, trigger_id, user_id, latitude, longitude, signed_at
FROM checkin_records WHERE trigger_id = $1 ORDER BY signed_at`
	var records []models.CheckInRecord
	if err := r.db.SelectContext(ctx, &records, query, triggerID); err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return records, nil
}
