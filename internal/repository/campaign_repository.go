package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

// CampaignRepository handles persistence for attendance campaigns.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository constructs the repository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, name, description, date_start, date_end, location_name,
latitude, longitude, radius_meters, penalty_points, target_grades, target_user_ids,
created_by, completed, created_at, updated_at`

// Create inserts a campaign with generated defaults.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	now := time.Now().UTC()
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	campaign.CreatedAt = now
	campaign.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO campaigns (%s)
VALUES (:id, :name, :description, :date_start, :date_end, :location_name,
:latitude, :longitude, :radius_meters, :penalty_points, :target_grades, :target_user_ids,
:created_by, :completed, :created_at, :updated_at)`, campaignColumns)
	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return campaign, nil
}

// GetByID returns a single campaign.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1`, campaignColumns)
	var campaign models.Campaign
	if err := r.db.GetContext(ctx, &campaign, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "campaign not found")
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &campaign, nil
}

// Update persists a full campaign row.
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaigns SET name = :name, description = :description,
date_start = :date_start, date_end = :date_end, location_name = :location_name,
latitude = :latitude, longitude = :longitude, radius_meters = :radius_meters,
penalty_points = :penalty_points, target_grades = :target_grades,
target_user_ids = :target_user_ids, completed = :completed, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, campaign)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update campaign: %w", sql.ErrNoRows)
	}
	return nil
}

// Delete removes a campaign. Triggers and check-ins cascade at the schema level.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete campaign: %w", sql.ErrNoRows)
	}
	return nil
}

// ListActive returns campaigns whose date range covers asOf and are not
// completed. This is the Trigger Generator's daily sweep query.
func (r *CampaignRepository) ListActive(ctx context.Context, asOf time.Time) ([]models.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns
WHERE date_start <= $1 AND date_end >= $1 AND completed = FALSE
ORDER BY created_at`, campaignColumns)
	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, asOf); err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	return campaigns, nil
}

// CampaignFilter narrows List results.
type CampaignFilter struct {
	ActiveOn  *time.Time
	Completed *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// List returns paginated campaigns matching the filter.
func (r *CampaignRepository) List(ctx context.Context, filter CampaignFilter) ([]models.Campaign, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ActiveOn != nil {
		where = append(where, fmt.Sprintf("date_start <= $%d AND date_end >= $%d", len(args)+1, len(args)+1))
		args = append(args, *filter.ActiveOn)
	}
	if filter.Completed != nil {
		where = append(where, fmt.Sprintf("completed = $%d", len(args)+1))
		args = append(args, *filter.Completed)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"name":       "name",
		"date_start": "date_start",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		campaignColumns, whereClause, sortColumn, order, size, offset)

	var rows []models.Campaign
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM campaigns WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}
	return rows, total, nil
}

// TriggersWithStats returns a campaign's triggers joined with signed counts.
func (r *CampaignRepository) TriggersWithStats(ctx context.Context, campaignID string) ([]models.TriggerWithStats, error) {
	const query = `SELECT t.id, t.campaign_id, t.trigger_date, t.trigger_time,
t.notification_sent, t.completed, t.is_manual, t.created_at,
COUNT(c.id) AS signed_count
FROM daily_triggers t
LEFT JOIN checkin_records c ON c.trigger_id = t.id
WHERE t.campaign_id = $1
GROUP BY t.id
ORDER BY t.trigger_date DESC, t.trigger_time DESC`
	var rows []models.TriggerWithStats
	if err := r.db.SelectContext(ctx, &rows, query, campaignID); err != nil {
		return nil, fmt.Errorf("list campaign triggers: %w", err)
	}
	return rows, nil
}
