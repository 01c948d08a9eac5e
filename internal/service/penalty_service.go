package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/models"
)

type pendingTriggerStore interface {
	ListPendingCompletion(ctx context.Context, date time.Time) ([]models.DailyTrigger, error)
	MarkCompleted(ctx context.Context, id string) error
}

type signedChecker interface {
	SignedUserIDs(ctx context.Context, triggerID string) (map[string]struct{}, error)
}

type leaveReader interface {
	ApprovedUserIDsOn(ctx context.Context, date time.Time) (map[string]struct{}, error)
}

type pointsDeductor interface {
	Deduct(ctx context.Context, userID string, points int, reason, attributedTo string) error
}

// PenaltyService closes expired triggers and deducts points from absentees.
//
// A trigger's absentees are its audience minus signed members minus members
// on approved leave for the trigger date. Each deduction is independent: a
// failing member is logged and the rest still get processed, and the
// trigger completes regardless so it is never re-enforced.
type PenaltyService struct {
	triggers      pendingTriggerStore
	campaigns     campaignGetter
	audience      audienceResolver
	checkins      signedChecker
	leaves        leaveReader
	points        pointsDeductor
	signingWindow time.Duration
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewPenaltyService constructs the enforcer.
func NewPenaltyService(triggers pendingTriggerStore, campaigns campaignGetter, audience audienceResolver, checkins signedChecker, leaves leaveReader, points pointsDeductor, signingWindow time.Duration, metrics *MetricsService, logger *zap.Logger) *PenaltyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PenaltyService{
		triggers:      triggers,
		campaigns:     campaigns,
		audience:      audience,
		checkins:      checkins,
		leaves:        leaves,
		points:        points,
		signingWindow: signingWindow,
		metrics:       metrics,
		logger:        logger,
	}
}

// EnforceDue processes every notified trigger whose signing window has
// closed as of now. Returns the number of triggers completed.
func (s *PenaltyService) EnforceDue(ctx context.Context, now time.Time) (int, error) {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	pending, err := s.triggers.ListPendingCompletion(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list pending triggers: %w", err)
	}

	completed := 0
	for i := range pending {
		trigger := &pending[i]
		deadline, err := trigger.Deadline(s.signingWindow)
		if err != nil {
			s.logger.Error("unparseable trigger time",
				zap.String("trigger_id", trigger.ID),
				zap.String("trigger_time", trigger.TriggerTime),
				zap.Error(err))
			continue
		}
		if now.Before(deadline) {
			continue
		}
		if err := s.enforceOne(ctx, trigger); err != nil {
			s.logger.Error("enforcement failed",
				zap.String("trigger_id", trigger.ID),
				zap.Error(err))
			continue
		}
		completed++
	}
	return completed, nil
}

func (s *PenaltyService) enforceOne(ctx context.Context, trigger *models.DailyTrigger) error {
	campaign, err := s.campaigns.GetByID(ctx, trigger.CampaignID)
	if err != nil {
		return fmt.Errorf("load campaign: %w", err)
	}
	audience, err := s.audience.Resolve(ctx, campaign)
	if err != nil {
		return fmt.Errorf("resolve audience: %w", err)
	}
	signed, err := s.checkins.SignedUserIDs(ctx, trigger.ID)
	if err != nil {
		return fmt.Errorf("load signed set: %w", err)
	}
	onLeave, err := s.leaves.ApprovedUserIDsOn(ctx, trigger.TriggerDate)
	if err != nil {
		return fmt.Errorf("load leave set: %w", err)
	}

	reason := fmt.Sprintf("missed call-up for %s on %s", campaign.Name, trigger.TriggerDate.Format(models.DateLayout))
	penalized := 0
	for _, userID := range audience {
		if _, ok := signed[userID]; ok {
			continue
		}
		if _, ok := onLeave[userID]; ok {
			continue
		}
		if err := s.points.Deduct(ctx, userID, campaign.PenaltyPoints, reason, campaign.CreatedBy); err != nil {
			s.logger.Error("point deduction failed",
				zap.String("trigger_id", trigger.ID),
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		if s.metrics != nil {
			s.metrics.PenaltyApplied()
		}
		penalized++
	}

	// Completion is terminal even when some deductions failed; retrying the
	// whole trigger would double-penalize everyone who already paid.
	if err := s.triggers.MarkCompleted(ctx, trigger.ID); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	s.logger.Info("trigger enforced",
		zap.String("trigger_id", trigger.ID),
		zap.String("campaign_id", campaign.ID),
		zap.Int("audience", len(audience)),
		zap.Int("signed", len(signed)),
		zap.Int("penalized", penalized))
	return nil
}
