package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/models"
)

type rosterReader interface {
	MemberIDsByGrades(ctx context.Context, grades []string) ([]string, error)
	AdminIDs(ctx context.Context) (map[string]struct{}, error)
	MembersByIDs(ctx context.Context, ids []string) ([]models.Member, error)
}

// AudienceService resolves which members a campaign obligates.
//
// The audience is the union of the grade filter and the explicit user list,
// minus administrators. A campaign naming neither falls back to the
// configured default grades.
type AudienceService struct {
	roster        rosterReader
	defaultGrades []string
	logger        *zap.Logger
}

// NewAudienceService constructs the resolver.
func NewAudienceService(roster rosterReader, defaultGrades []string, logger *zap.Logger) *AudienceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudienceService{roster: roster, defaultGrades: defaultGrades, logger: logger}
}

// Resolve returns the campaign's obligated member ids, sorted for stable
// iteration. Administrators are never part of an audience, even when an
// explicit user list names one.
func (s *AudienceService) Resolve(ctx context.Context, campaign *models.Campaign) ([]string, error) {
	grades := []string(campaign.TargetGrades)
	explicit := []string(campaign.TargetUserIDs)
	if len(grades) == 0 && len(explicit) == 0 {
		grades = s.defaultGrades
	}

	set := make(map[string]struct{})
	if len(grades) > 0 {
		ids, err := s.roster.MemberIDsByGrades(ctx, grades)
		if err != nil {
			return nil, fmt.Errorf("resolve grades: %w", err)
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	if len(explicit) > 0 {
		// Only ids still on the roster count; a stale target id would
		// otherwise be penalized as an eternal absentee.
		members, err := s.roster.MembersByIDs(ctx, explicit)
		if err != nil {
			return nil, fmt.Errorf("resolve explicit ids: %w", err)
		}
		for _, m := range members {
			set[m.ID] = struct{}{}
		}
	}

	admins, err := s.roster.AdminIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve admins: %w", err)
	}
	out := make([]string, 0, len(set))
	for id := range set {
		if _, isAdmin := admins[id]; isAdmin {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Contacts returns the contact addresses for a resolved audience, keyed by
// member id. Members without a roster row are skipped.
func (s *AudienceService) Contacts(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}
	members, err := s.roster.MembersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve contacts: %w", err)
	}
	contacts := make(map[string]string, len(members))
	for _, m := range members {
		contacts[m.ID] = m.Contact
	}
	return contacts, nil
}
