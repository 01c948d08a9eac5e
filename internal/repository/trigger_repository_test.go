package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

func newTriggerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTriggerRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newTriggerRepoMock(t)
	defer cleanup()
	repo := NewTriggerRepository(db)

	trigger := &models.DailyTrigger{
		CampaignID:  "camp-1",
		TriggerDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TriggerTime: "21:18:42",
	}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO daily_triggers")).
		WithArgs(sqlmock.AnyArg(), "camp-1", trigger.TriggerDate, "21:18:42", false, false, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("trig-1"))

	require.NoError(t, repo.Insert(context.Background(), trigger))
	require.NotEmpty(t, trigger.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepositoryInsertConflict(t *testing.T) {
	db, mock, cleanup := newTriggerRepoMock(t)
	defer cleanup()
	repo := NewTriggerRepository(db)

	trigger := &models.DailyTrigger{
		CampaignID:  "camp-1",
		TriggerDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TriggerTime: "21:18:42",
	}
	// ON CONFLICT DO NOTHING returns zero rows when the pair already exists.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO daily_triggers")).
		WithArgs(sqlmock.AnyArg(), "camp-1", trigger.TriggerDate, "21:18:42", false, false, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.Insert(context.Background(), trigger)
	require.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepositoryListDue(t *testing.T) {
	db, mock, cleanup := newTriggerRepoMock(t)
	defer cleanup()
	repo := NewTriggerRepository(db)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "campaign_id", "trigger_date", "trigger_time", "notification_sent", "completed", "is_manual", "created_at"}).
		AddRow("trig-1", "camp-1", date, "21:16:05", false, false, false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE trigger_date = $1 AND trigger_time <= $2 AND notification_sent = FALSE")).
		WithArgs(date, "21:20:00").
		WillReturnRows(rows)

	triggers, err := repo.ListDue(context.Background(), date, "21:20:00")
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	require.Equal(t, "trig-1", triggers[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepositoryMarkNotificationSent(t *testing.T) {
	db, mock, cleanup := newTriggerRepoMock(t)
	defer cleanup()
	repo := NewTriggerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE daily_triggers SET notification_sent = TRUE WHERE id = $1 AND notification_sent = FALSE")).
		WithArgs("trig-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkNotificationSent(context.Background(), "trig-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepositoryMarkCompletedIdempotent(t *testing.T) {
	db, mock, cleanup := newTriggerRepoMock(t)
	defer cleanup()
	repo := NewTriggerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE daily_triggers SET completed = TRUE WHERE id = $1 AND completed = FALSE")).
		WithArgs("trig-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkCompleted(context.Background(), "trig-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
