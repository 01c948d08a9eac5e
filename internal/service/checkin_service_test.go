package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/dto"
	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

type checkInStoreStub struct {
	records map[string]struct{} // triggerID|userID
}

func newCheckInStoreStub() *checkInStoreStub {
	return &checkInStoreStub{records: map[string]struct{}{}}
}

func (s *checkInStoreStub) key(triggerID, userID string) string {
	return triggerID + "|" + userID
}

func (s *checkInStoreStub) Insert(ctx context.Context, record *models.CheckInRecord) error {
	key := s.key(record.TriggerID, record.UserID)
	if _, ok := s.records[key]; ok {
		return appErrors.ErrDuplicate
	}
	record.ID = uuid.NewString()
	s.records[key] = struct{}{}
	return nil
}

func (s *checkInStoreStub) Exists(ctx context.Context, triggerID, userID string) (bool, error) {
	_, ok := s.records[s.key(triggerID, userID)]
	return ok, nil
}

type singleTriggerStub struct {
	trigger *models.DailyTrigger
}

func (s *singleTriggerStub) GetByID(ctx context.Context, id string) (*models.DailyTrigger, error) {
	if s.trigger == nil || s.trigger.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "trigger not found")
	}
	return s.trigger, nil
}

// Campaign fence centered on the lab; 0.0008 degrees of latitude is roughly
// 89 meters, inside a 100 meter radius.
func checkInFixture(completed bool) (*CheckInService, *checkInStoreStub) {
	trigger := &models.DailyTrigger{
		ID:          "t1",
		CampaignID:  "c1",
		TriggerDate: testDate(),
		TriggerTime: "21:16:00",
		Completed:   completed,
	}
	campaigns := &campaignListerStub{campaigns: map[string]*models.Campaign{
		"c1": {ID: "c1", Latitude: -6.3628, Longitude: 106.8269, RadiusMeters: 100},
	}}
	store := newCheckInStoreStub()
	svc := NewCheckInService(store, &singleTriggerStub{trigger: trigger}, campaigns, nil, nil, zap.NewNop())
	return svc, store
}

func TestSubmitCheckInAccepted(t *testing.T) {
	svc, _ := checkInFixture(false)

	result, err := svc.Submit(context.Background(), "m1", dto.SubmitCheckInRequest{
		TriggerID: "t1",
		Latitude:  -6.3620,
		Longitude: 106.8269,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.CheckInID)
	assert.InDelta(t, 89, result.DistanceMeters, 2)
}

func TestSubmitCheckInUnknownTrigger(t *testing.T) {
	svc, _ := checkInFixture(false)

	_, err := svc.Submit(context.Background(), "m1", dto.SubmitCheckInRequest{
		TriggerID: "missing",
		Latitude:  -6.3628,
		Longitude: 106.8269,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSubmitCheckInClosedTrigger(t *testing.T) {
	svc, _ := checkInFixture(true)

	_, err := svc.Submit(context.Background(), "m1", dto.SubmitCheckInRequest{
		TriggerID: "t1",
		Latitude:  -6.3628,
		Longitude: 106.8269,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrTriggerClosed))
}

func TestSubmitCheckInDuplicateBeatsGeofence(t *testing.T) {
	svc, store := checkInFixture(false)
	store.records[store.key("t1", "m1")] = struct{}{}

	// Far outside the fence, but the duplicate check runs first.
	_, err := svc.Submit(context.Background(), "m1", dto.SubmitCheckInRequest{
		TriggerID: "t1",
		Latitude:  -6.5,
		Longitude: 106.8269,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrAlreadySigned))
}

func TestSubmitCheckInOutOfRangeCarriesDistance(t *testing.T) {
	svc, _ := checkInFixture(false)

	_, err := svc.Submit(context.Background(), "m1", dto.SubmitCheckInRequest{
		TriggerID: "t1",
		Latitude:  -6.3600,
		Longitude: 106.8269,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrOutOfRange))
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr.Details)
	distance, ok := appErr.Details["distance_meters"].(float64)
	require.True(t, ok)
	assert.Greater(t, distance, 100.0)
	assert.Equal(t, 100.0, appErr.Details["radius_meters"])
}

func TestSubmitCheckInSecondAttemptRejected(t *testing.T) {
	svc, _ := checkInFixture(false)

	req := dto.SubmitCheckInRequest{TriggerID: "t1", Latitude: -6.3628, Longitude: 106.8269}
	_, err := svc.Submit(context.Background(), "m1", req)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "m1", req)
	require.True(t, appErrors.Is(err, appErrors.ErrAlreadySigned))
}
