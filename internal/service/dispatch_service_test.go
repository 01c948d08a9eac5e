package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/models"
	"github.com/noah-isme/lab-admin-api/internal/notify"
)

type dueTriggerStoreStub struct {
	due    []models.DailyTrigger
	marked []string
}

func (s *dueTriggerStoreStub) ListDue(ctx context.Context, date time.Time, timeOfDay string) ([]models.DailyTrigger, error) {
	return s.due, nil
}

func (s *dueTriggerStoreStub) MarkNotificationSent(ctx context.Context, id string) error {
	s.marked = append(s.marked, id)
	return nil
}

type audienceStub struct {
	audience []string
	contacts map[string]string
	err      error
}

func (a *audienceStub) Resolve(ctx context.Context, campaign *models.Campaign) ([]string, error) {
	return a.audience, a.err
}

func (a *audienceStub) Contacts(ctx context.Context, userIDs []string) (map[string]string, error) {
	return a.contacts, nil
}

type publisherStub struct {
	published []notify.CallUp
	err       error
}

func (p *publisherStub) Publish(ctx context.Context, callUp notify.CallUp) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, callUp)
	return nil
}

func dispatchTrigger(id string) models.DailyTrigger {
	return models.DailyTrigger{
		ID:          id,
		CampaignID:  "c1",
		TriggerDate: testDate(),
		TriggerTime: "21:16:00",
	}
}

func newDispatchFixture(triggers *dueTriggerStoreStub, audience *audienceStub, publisher *publisherStub) *DispatchService {
	campaigns := &campaignListerStub{campaigns: map[string]*models.Campaign{
		"c1": {
			ID:           "c1",
			Name:         "March lab nights",
			LocationName: "Building C lab",
			Latitude:     -6.3628,
			Longitude:    106.8269,
			RadiusMeters: 100,
		},
	}}
	return NewDispatchService(triggers, campaigns, audience, publisher, 3*time.Minute, nil, zap.NewNop())
}

func TestDispatchDueSendsAndMarks(t *testing.T) {
	triggers := &dueTriggerStoreStub{due: []models.DailyTrigger{dispatchTrigger("t1")}}
	audience := &audienceStub{audience: []string{"m1", "m2"}, contacts: map[string]string{"m1": "m1@lab.test"}}
	publisher := &publisherStub{}
	svc := newDispatchFixture(triggers, audience, publisher)

	sent, err := svc.DispatchDue(context.Background(), time.Date(2026, 3, 10, 21, 20, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, publisher.published, 1)
	callUp := publisher.published[0]
	assert.Equal(t, "t1", callUp.TriggerID)
	assert.Equal(t, []string{"m1", "m2"}, callUp.Recipients)
	assert.Equal(t, callUp.ScheduledFor.Add(3*time.Minute), callUp.Deadline)
	// Recipients need the fence to know where to report.
	assert.Equal(t, "Building C lab", callUp.LocationName)
	assert.Equal(t, -6.3628, callUp.Latitude)
	assert.Equal(t, 106.8269, callUp.Longitude)
	assert.Equal(t, 100.0, callUp.RadiusMeters)
	assert.Equal(t, []string{"t1"}, triggers.marked)
}

func TestDispatchEmptyAudienceStillMarksSent(t *testing.T) {
	triggers := &dueTriggerStoreStub{due: []models.DailyTrigger{dispatchTrigger("t1")}}
	publisher := &publisherStub{}
	svc := newDispatchFixture(triggers, &audienceStub{}, publisher)

	sent, err := svc.DispatchDue(context.Background(), time.Date(2026, 3, 10, 21, 20, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Empty(t, publisher.published)
	assert.Equal(t, []string{"t1"}, triggers.marked)
}

func TestDispatchPublishFailureLeavesTriggerUnsent(t *testing.T) {
	triggers := &dueTriggerStoreStub{due: []models.DailyTrigger{dispatchTrigger("t1")}}
	publisher := &publisherStub{err: errors.New("redis down")}
	svc := newDispatchFixture(triggers, &audienceStub{audience: []string{"m1"}}, publisher)

	sent, err := svc.DispatchDue(context.Background(), time.Date(2026, 3, 10, 21, 20, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, triggers.marked)
}
