package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/dto"
	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
	"github.com/noah-isme/lab-admin-api/pkg/geo"
)

type checkInStore interface {
	Insert(ctx context.Context, record *models.CheckInRecord) error
	Exists(ctx context.Context, triggerID, userID string) (bool, error)
}

type triggerGetter interface {
	GetByID(ctx context.Context, id string) (*models.DailyTrigger, error)
}

// CheckInService validates and records member sign attempts.
//
// Validation order is fixed: existence, completion, duplicate, geofence.
// A member who already signed sees ALREADY_SIGNED even when their reported
// position has drifted out of range.
type CheckInService struct {
	checkins  checkInStore
	triggers  triggerGetter
	campaigns campaignGetter
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewCheckInService constructs the check-in service.
func NewCheckInService(checkins checkInStore, triggers triggerGetter, campaigns campaignGetter, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *CheckInService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{
		checkins:  checkins,
		triggers:  triggers,
		campaigns: campaigns,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
	}
}

// Submit records a sign against a trigger after the full validation chain.
func (s *CheckInService) Submit(ctx context.Context, userID string, req dto.SubmitCheckInRequest) (*dto.CheckInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	trigger, err := s.triggers.GetByID(ctx, req.TriggerID)
	if err != nil {
		return nil, err
	}
	if trigger.Completed {
		s.observe("closed")
		return nil, appErrors.ErrTriggerClosed
	}

	signed, err := s.checkins.Exists(ctx, trigger.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing sign: %w", err)
	}
	if signed {
		s.observe("duplicate")
		return nil, appErrors.ErrAlreadySigned
	}

	campaign, err := s.campaigns.GetByID(ctx, trigger.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}

	inside, distance := geo.WithinRadius(campaign.Latitude, campaign.Longitude, req.Latitude, req.Longitude, campaign.RadiusMeters)
	if !inside {
		s.observe("out_of_range")
		return nil, appErrors.WithDetails(appErrors.ErrOutOfRange, map[string]interface{}{
			"distance_meters": distance,
			"radius_meters":   campaign.RadiusMeters,
		})
	}

	record := &models.CheckInRecord{
		TriggerID: trigger.ID,
		UserID:    userID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := s.checkins.Insert(ctx, record); err != nil {
		if appErrors.Is(err, appErrors.ErrDuplicate) {
			s.observe("duplicate")
			return nil, appErrors.ErrAlreadySigned
		}
		return nil, fmt.Errorf("record check-in: %w", err)
	}

	s.observe("accepted")
	s.logger.Info("check-in accepted",
		zap.String("trigger_id", trigger.ID),
		zap.String("user_id", userID),
		zap.Float64("distance_meters", distance))
	return &dto.CheckInResult{CheckInID: record.ID, DistanceMeters: distance}, nil
}

func (s *CheckInService) observe(result string) {
	if s.metrics != nil {
		s.metrics.CheckInObserved(result)
	}
}
