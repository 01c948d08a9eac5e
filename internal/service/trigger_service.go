package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

type campaignLister interface {
	ListActive(ctx context.Context, asOf time.Time) ([]models.Campaign, error)
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
}

type triggerStore interface {
	Insert(ctx context.Context, trigger *models.DailyTrigger) error
	ExistsFor(ctx context.Context, campaignID string, date time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*models.DailyTrigger, error)
}

type triggerNotifier interface {
	DispatchOne(ctx context.Context, trigger *models.DailyTrigger) error
}

// TimeSampler picks a trigger time-of-day inside [start, end]. Both bounds
// are HH:MM:SS strings; the result uses the same layout.
type TimeSampler func(start, end string) (string, error)

// RandomTimeSampler returns a uniformly random second within the window.
func RandomTimeSampler() TimeSampler {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var mu sync.Mutex
	return func(start, end string) (string, error) {
		from, err := time.Parse(models.TimeLayout, start)
		if err != nil {
			return "", fmt.Errorf("parse window start: %w", err)
		}
		to, err := time.Parse(models.TimeLayout, end)
		if err != nil {
			return "", fmt.Errorf("parse window end: %w", err)
		}
		span := int(to.Sub(from).Seconds())
		if span < 0 {
			return "", fmt.Errorf("trigger window end %s before start %s", end, start)
		}
		offset := 0
		if span > 0 {
			mu.Lock()
			offset = rng.Intn(span + 1)
			mu.Unlock()
		}
		return from.Add(time.Duration(offset) * time.Second).Format(models.TimeLayout), nil
	}
}

// TriggerService creates the daily trigger rows campaigns run on.
type TriggerService struct {
	campaigns   campaignLister
	triggers    triggerStore
	dispatcher  triggerNotifier
	sampler     TimeSampler
	windowStart string
	windowEnd   string
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewTriggerService constructs the generator. The dispatcher delivers the
// call-up for manually forced triggers at creation time; the daily sweep
// never uses it.
func NewTriggerService(campaigns campaignLister, triggers triggerStore, dispatcher triggerNotifier, sampler TimeSampler, windowStart, windowEnd string, metrics *MetricsService, logger *zap.Logger) *TriggerService {
	if sampler == nil {
		sampler = RandomTimeSampler()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriggerService{
		campaigns:   campaigns,
		triggers:    triggers,
		dispatcher:  dispatcher,
		sampler:     sampler,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GenerateForDate sweeps active campaigns and creates the day's trigger for
// each that lacks one. A failing campaign is logged and skipped so one bad
// row cannot starve the rest of the sweep. Returns the number of triggers
// created.
func (s *TriggerService) GenerateForDate(ctx context.Context, date time.Time) (int, error) {
	campaigns, err := s.campaigns.ListActive(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list active campaigns: %w", err)
	}

	created := 0
	for i := range campaigns {
		campaign := &campaigns[i]
		ok, err := s.generateOne(ctx, campaign, date)
		if err != nil {
			s.logger.Error("trigger generation failed",
				zap.String("campaign_id", campaign.ID),
				zap.Time("date", date),
				zap.Error(err))
			continue
		}
		if ok {
			created++
		}
	}
	s.logger.Info("trigger sweep finished",
		zap.Time("date", date),
		zap.Int("campaigns", len(campaigns)),
		zap.Int("created", created))
	return created, nil
}

func (s *TriggerService) generateOne(ctx context.Context, campaign *models.Campaign, date time.Time) (bool, error) {
	exists, err := s.triggers.ExistsFor(ctx, campaign.ID, date)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	triggerTime, err := s.sampler(s.windowStart, s.windowEnd)
	if err != nil {
		return false, err
	}
	trigger := &models.DailyTrigger{
		CampaignID:  campaign.ID,
		TriggerDate: date,
		TriggerTime: triggerTime,
	}
	if err := s.triggers.Insert(ctx, trigger); err != nil {
		// A concurrent sweep won the insert; that is a success for the day.
		if appErrors.Is(err, appErrors.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	if s.metrics != nil {
		s.metrics.TriggerGenerated()
	}
	return true, nil
}

// ForceTrigger creates a manual trigger for the campaign on the given date,
// at triggerTime when supplied or at the current time of day otherwise, and
// dispatches its call-up immediately instead of waiting for the poll.
// Unlike the sweep, hitting an existing trigger is surfaced to the caller.
func (s *TriggerService) ForceTrigger(ctx context.Context, campaignID string, date time.Time, triggerTime *string) (*models.DailyTrigger, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Completed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "campaign is already completed")
	}
	if !campaign.Covers(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is outside the campaign range")
	}

	tt := s.now().Format(models.TimeLayout)
	if triggerTime != nil {
		if _, err := time.Parse(models.TimeLayout, *triggerTime); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "trigger_time must be HH:MM:SS")
		}
		tt = *triggerTime
	}

	trigger := &models.DailyTrigger{
		CampaignID:  campaign.ID,
		TriggerDate: date,
		TriggerTime: tt,
		IsManual:    true,
	}
	if err := s.triggers.Insert(ctx, trigger); err != nil {
		if appErrors.Is(err, appErrors.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a trigger already exists for this campaign and date")
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TriggerGenerated()
	}
	s.logger.Info("manual trigger created",
		zap.String("campaign_id", campaign.ID),
		zap.String("trigger_id", trigger.ID),
		zap.Time("date", date),
		zap.String("time", tt))

	// The sent flag stays false on failure; the dispatch poll picks the
	// trigger up on its next tick.
	if s.dispatcher != nil {
		if err := s.dispatcher.DispatchOne(ctx, trigger); err != nil {
			s.logger.Warn("immediate dispatch failed, poll will retry",
				zap.String("trigger_id", trigger.ID),
				zap.Error(err))
		}
	}
	return trigger, nil
}

// GetTrigger returns a trigger by id.
func (s *TriggerService) GetTrigger(ctx context.Context, id string) (*models.DailyTrigger, error) {
	return s.triggers.GetByID(ctx, id)
}
