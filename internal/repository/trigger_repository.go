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

// TriggerRepository handles persistence for daily triggers.
//
// The (campaign_id, trigger_date) unique constraint carries the generator's
// idempotency: application-level existence checks are an optimisation only.
type TriggerRepository struct {
	db *sqlx.DB
}

// NewTriggerRepository constructs the repository.
func NewTriggerRepository(db *sqlx.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

const triggerColumns = `id, campaign_id, trigger_date, trigger_time, notification_sent, completed, is_manual, created_at`

// Insert creates a trigger, returning appErrors.ErrDuplicate when one
// already exists for the (campaign, date) pair. The conflict path is the
// expected outcome for concurrent or re-run generator sweeps.
func (r *TriggerRepository) Insert(ctx context.Context, trigger *models.DailyTrigger) error {
	if trigger.ID == "" {
		trigger.ID = uuid.NewString()
	}
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO daily_triggers (id, campaign_id, trigger_date, trigger_time, notification_sent, completed, is_manual, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (campaign_id, trigger_date) DO NOTHING
RETURNING id`
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query,
		trigger.ID, trigger.CampaignID, trigger.TriggerDate, trigger.TriggerTime,
		trigger.NotificationSent, trigger.Completed, trigger.IsManual, trigger.CreatedAt,
	).Scan(&insertedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrDuplicate
		}
		return fmt.Errorf("insert trigger: %w", err)
	}
	return nil
}

// GetByID returns a single trigger.
func (r *TriggerRepository) GetByID(ctx context.Context, id string) (*models.DailyTrigger, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_triggers WHERE id = $1`, triggerColumns)
	var trigger models.DailyTrigger
	if err := r.db.GetContext(ctx, &trigger, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "trigger not found")
		}
		return nil, fmt.Errorf("get trigger: %w", err)
	}
	return &trigger, nil
}

// ExistsFor reports whether a trigger exists for the (campaign, date) pair.
// Used as a cheap pre-check; the unique constraint remains authoritative.
func (r *TriggerRepository) ExistsFor(ctx context.Context, campaignID string, date time.Time) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM daily_triggers WHERE campaign_id = $1 AND trigger_date = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, campaignID, date); err != nil {
		return false, fmt.Errorf("trigger exists: %w", err)
	}
	return exists, nil
}

// ListDue returns triggers for the given date whose time has arrived and
// notification has not been sent.
func (r *TriggerRepository) ListDue(ctx context.Context, date time.Time, timeOfDay string) ([]models.DailyTrigger, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_triggers
WHERE trigger_date = $1 AND trigger_time <= $2 AND notification_sent = FALSE
ORDER BY trigger_time`, triggerColumns)
	var triggers []models.DailyTrigger
	if err := r.db.SelectContext(ctx, &triggers, query, date, timeOfDay); err != nil {
		return nil, fmt.Errorf("list due triggers: %w", err)
	}
	return triggers, nil
}

// ListPendingCompletion returns notified-but-open triggers for the date. The
// Penalty Enforcer filters on the signing-window deadline in memory.
func (r *TriggerRepository) ListPendingCompletion(ctx context.Context, date time.Time) ([]models.DailyTrigger, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_triggers
WHERE trigger_date = $1 AND notification_sent = TRUE AND completed = FALSE
ORDER BY trigger_time`, triggerColumns)
	var triggers []models.DailyTrigger
	if err := r.db.SelectContext(ctx, &triggers, query, date); err != nil {
		return nil, fmt.Errorf("list pending triggers: %w", err)
	}
	return triggers, nil
}

// MarkNotificationSent flips notification_sent once. Re-flipping an already
// sent trigger is a no-op, which keeps overlapping dispatch polls safe.
func (r *TriggerRepository) MarkNotificationSent(ctx context.Context, id string) error {
	const query = `UPDATE daily_triggers SET notification_sent = TRUE
WHERE id = $1 AND notification_sent = FALSE`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// MarkCompleted flips completed. Terminal: there is no reverse transition,
// and repeating the flip is a no-op.
func (r *TriggerRepository) MarkCompleted(ctx context.Context, id string) error {
	const query = `UPDATE daily_triggers SET completed = TRUE
WHERE id = $1 AND completed = FALSE`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}
