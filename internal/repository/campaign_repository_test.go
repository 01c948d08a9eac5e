package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lab-admin-api/internal/models"
)

func newCampaignRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func campaignRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "date_start", "date_end", "location_name",
		"latitude", "longitude", "radius_meters", "penalty_points", "target_grades",
		"target_user_ids", "created_by", "completed", "created_at", "updated_at",
	})
}

func TestCampaignRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	campaign := &models.Campaign{
		Name:          "March lab nights",
		DateStart:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		LocationName:  "Building C lab",
		Latitude:      -6.3628,
		Longitude:     106.8269,
		RadiusMeters:  100,
		PenaltyPoints: 5,
		TargetGrades:  pq.StringArray{"10", "11"},
		CreatedBy:     "admin-1",
	}
	created, err := repo.Create(context.Background(), campaign)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := campaignRows().AddRow(
		"camp-1", "March lab nights", "", asOf.AddDate(0, 0, -9), asOf.AddDate(0, 0, 21), "Building C lab",
		-6.3628, 106.8269, 100.0, 5, pq.StringArray{"10"}, pq.StringArray{}, "admin-1", false, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE date_start <= $1 AND date_end >= $1 AND completed = FALSE")).
		WithArgs(asOf).
		WillReturnRows(rows)

	campaigns, err := repo.ListActive(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.Equal(t, "camp-1", campaigns[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryListFiltersAndCounts(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	completed := false
	rows := campaignRows().AddRow(
		"camp-1", "March lab nights", "", time.Now(), time.Now().AddDate(0, 1, 0), "Building C lab",
		-6.3628, 106.8269, 100.0, 5, pq.StringArray{"10"}, pq.StringArray{}, "admin-1", false, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE 1=1 AND completed = $1 ORDER BY created_at DESC LIMIT 50 OFFSET 0")).
		WithArgs(false).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM campaigns WHERE 1=1 AND completed = $1")).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	campaigns, total, err := repo.List(context.Background(), CampaignFilter{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryTriggersWithStats(t *testing.T) {
	db, mock, cleanup := newCampaignRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	rows := sqlmock.NewRows([]string{"id", "campaign_id", "trigger_date", "trigger_time", "notification_sent", "completed", "is_manual", "created_at", "signed_count"}).
		AddRow("trig-1", "camp-1", time.Now(), "21:17:30", true, true, false, time.Now(), 12)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN checkin_records c ON c.trigger_id = t.id")).
		WithArgs("camp-1").
		WillReturnRows(rows)

	stats, err := repo.TriggersWithStats(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, 12, stats[0].SignedCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
