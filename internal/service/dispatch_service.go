package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/models"
	"github.com/noah-isme/lab-admin-api/internal/notify"
)

type dueTriggerStore interface {
	ListDue(ctx context.Context, date time.Time, timeOfDay string) ([]models.DailyTrigger, error)
	MarkNotificationSent(ctx context.Context, id string) error
}

type campaignGetter interface {
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
}

type audienceResolver interface {
	Resolve(ctx context.Context, campaign *models.Campaign) ([]string, error)
	Contacts(ctx context.Context, userIDs []string) (map[string]string, error)
}

type callUpPublisher interface {
	Publish(ctx context.Context, callUp notify.CallUp) error
}

// DispatchService polls for due triggers and sends call-up notifications.
//
// The sent flag is flipped only after a successful publish, so a notifier
// outage means the trigger is retried on the next poll. Flipping first
// would trade duplicate notifications for silently lost ones.
type DispatchService struct {
	triggers      dueTriggerStore
	campaigns     campaignGetter
	audience      audienceResolver
	notifier      callUpPublisher
	signingWindow time.Duration
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewDispatchService constructs the dispatcher.
func NewDispatchService(triggers dueTriggerStore, campaigns campaignGetter, audience audienceResolver, notifier callUpPublisher, signingWindow time.Duration, metrics *MetricsService, logger *zap.Logger) *DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchService{
		triggers:      triggers,
		campaigns:     campaigns,
		audience:      audience,
		notifier:      notifier,
		signingWindow: signingWindow,
		metrics:       metrics,
		logger:        logger,
	}
}

// DispatchDue sends notifications for every trigger whose time has arrived
// as of now. Per-trigger failures are logged and skipped. Returns the
// number of triggers dispatched.
func (s *DispatchService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due, err := s.triggers.ListDue(ctx, date, now.Format(models.TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("list due triggers: %w", err)
	}

	sent := 0
	for i := range due {
		if err := s.DispatchOne(ctx, &due[i]); err != nil {
			s.logger.Error("dispatch failed",
				zap.String("trigger_id", due[i].ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	if len(due) > 0 {
		s.logger.Info("dispatch poll finished",
			zap.Int("due", len(due)),
			zap.Int("sent", sent))
	}
	return sent, nil
}

// DispatchOne notifies the audience of a single trigger and marks it sent.
// An empty audience still counts as sent: there is nobody left to notify.
func (s *DispatchService) DispatchOne(ctx context.Context, trigger *models.DailyTrigger) error {
	campaign, err := s.campaigns.GetByID(ctx, trigger.CampaignID)
	if err != nil {
		return fmt.Errorf("load campaign: %w", err)
	}
	audience, err := s.audience.Resolve(ctx, campaign)
	if err != nil {
		return fmt.Errorf("resolve audience: %w", err)
	}

	if len(audience) > 0 {
		contacts, err := s.audience.Contacts(ctx, audience)
		if err != nil {
			return fmt.Errorf("resolve contacts: %w", err)
		}
		scheduledFor, err := trigger.ScheduledFor()
		if err != nil {
			return fmt.Errorf("trigger schedule: %w", err)
		}
		callUp := notify.CallUp{
			TriggerID:    trigger.ID,
			CampaignID:   campaign.ID,
			CampaignName: campaign.Name,
			LocationName: campaign.LocationName,
			Latitude:     campaign.Latitude,
			Longitude:    campaign.Longitude,
			RadiusMeters: campaign.RadiusMeters,
			ScheduledFor: scheduledFor,
			Deadline:     scheduledFor.Add(s.signingWindow),
			Recipients:   audience,
			Contacts:     contacts,
		}
		if err := s.notifier.Publish(ctx, callUp); err != nil {
			return fmt.Errorf("publish call-up: %w", err)
		}
	}

	if err := s.triggers.MarkNotificationSent(ctx, trigger.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if s.metrics != nil {
		s.metrics.NotificationSent()
	}
	return nil
}
