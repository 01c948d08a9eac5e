package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lab-admin-api/internal/models"
)

// PointsRepository mutates membership points with an audit trail.
type PointsRepository struct {
	db *sqlx.DB
}

// NewPointsRepository constructs the repository.
func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

// Deduct subtracts points from a member and records an audit entry in one
// transaction. When attributedTo no longer names an existing member the
// audit row falls back to the system actor, so enforcement keeps working
// after an admin account is removed.
func (r *PointsRepository) Deduct(ctx context.Context, userID string, points int, reason, attributedTo string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin deduct tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `UPDATE members SET points = points - $1, updated_at = NOW() WHERE id = $2`, points, userID)
	if err != nil {
		return fmt.Errorf("deduct points: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct points rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deduct points: member %s not found", userID)
	}

	actor := attributedTo
	if actor != models.SystemActorID {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`, attributedTo); err != nil {
			return fmt.Errorf("resolve audit actor: %w", err)
		}
		if !exists {
			actor = models.SystemActorID
		}
	}

	audit := models.PointAuditLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		Delta:        -points,
		Reason:       reason,
		AttributedTo: actor,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO point_audit_logs (id, user_id, delta, reason, attributed_to, created_at)
VALUES (:id, :user_id, :delta, :reason, :attributed_to, :created_at)`, &audit)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deduct tx: %w", err)
	}
	return nil
}

// AuditLogsForUser returns a member's audit trail, newest first.
func (r *PointsRepository) AuditLogsForUser(ctx context.Context, userID string, limit int) ([]models.PointAuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, user_id, delta, reason, attributed_to, created_at
FROM point_audit_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	var logs []models.PointAuditLog
	if err := r.db.SelectContext(ctx, &logs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
