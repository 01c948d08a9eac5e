package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/dto"
	"github.com/noah-isme/lab-admin-api/internal/models"
	"github.com/noah-isme/lab-admin-api/internal/repository"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

type campaignStore interface {
	Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter repository.CampaignFilter) ([]models.Campaign, int, error)
	TriggersWithStats(ctx context.Context, campaignID string) ([]models.TriggerWithStats, error)
}

// CampaignService manages the campaign lifecycle.
type CampaignService struct {
	campaigns campaignStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs the campaign service.
func NewCampaignService(campaigns campaignStore, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{campaigns: campaigns, validator: validate, logger: logger}
}

// Create validates and persists a new campaign.
func (s *CampaignService) Create(ctx context.Context, createdBy string, req dto.CreateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}
	dateStart, dateEnd, err := parseDateRange(req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		Name:          req.Name,
		Description:   req.Description,
		DateStart:     dateStart,
		DateEnd:       dateEnd,
		LocationName:  req.LocationName,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		RadiusMeters:  req.RadiusMeters,
		PenaltyPoints: req.PenaltyPoints,
		TargetGrades:  pq.StringArray(req.TargetGrades),
		TargetUserIDs: pq.StringArray(req.TargetUserIDs),
		CreatedBy:     createdBy,
	}
	created, err := s.campaigns.Create(ctx, campaign)
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign created",
		zap.String("campaign_id", created.ID),
		zap.String("created_by", createdBy))
	return created, nil
}

// Get returns a single campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	return s.campaigns.GetByID(ctx, id)
}

// GetDetail returns a campaign with its triggers and signed counts.
func (s *CampaignService) GetDetail(ctx context.Context, id string) (*dto.CampaignDetail, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	triggers, err := s.campaigns.TriggersWithStats(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CampaignDetail{Campaign: *campaign, Triggers: triggers}, nil
}

// Update applies a full update to an existing campaign.
func (s *CampaignService) Update(ctx context.Context, id string, req dto.UpdateCampaignRequest) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}
	dateStart, dateEnd, err := parseDateRange(req.DateStart, req.DateEnd)
	if err != nil {
		return nil, err
	}

	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	campaign.Name = req.Name
	campaign.Description = req.Description
	campaign.DateStart = dateStart
	campaign.DateEnd = dateEnd
	campaign.LocationName = req.LocationName
	campaign.Latitude = req.Latitude
	campaign.Longitude = req.Longitude
	campaign.RadiusMeters = req.RadiusMeters
	campaign.PenaltyPoints = req.PenaltyPoints
	campaign.TargetGrades = pq.StringArray(req.TargetGrades)
	campaign.TargetUserIDs = pq.StringArray(req.TargetUserIDs)
	if req.Completed != nil {
		// Completion is one-way; reopening a finished campaign is rejected.
		if campaign.Completed && !*req.Completed {
			return nil, appErrors.Clone(appErrors.ErrConflict, "campaign completion cannot be reverted")
		}
		campaign.Completed = *req.Completed
	}

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// Delete removes a campaign and, via schema cascade, its triggers and signs.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("campaign deleted", zap.String("campaign_id", id))
	return nil
}

// List returns paginated campaigns.
func (s *CampaignService) List(ctx context.Context, filter dto.CampaignFilter) ([]models.Campaign, *models.Pagination, error) {
	repoFilter := repository.CampaignFilter{
		Completed: filter.Completed,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}
	if filter.ActiveOn != "" {
		activeOn, err := time.Parse(models.DateLayout, filter.ActiveOn)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "active_on must be YYYY-MM-DD")
		}
		repoFilter.ActiveOn = &activeOn
	}

	campaigns, total, err := s.campaigns.List(ctx, repoFilter)
	if err != nil {
		return nil, nil, err
	}
	page := repoFilter.Page
	if page < 1 {
		page = 1
	}
	size := repoFilter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return campaigns, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	dateStart, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date_start must be YYYY-MM-DD")
	}
	dateEnd, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date_end must be YYYY-MM-DD")
	}
	if dateEnd.Before(dateStart) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date_end must not precede date_start")
	}
	return dateStart, dateEnd, nil
}
