package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/models"
)

type rosterStub struct {
	byGrade map[string][]string
	admins  map[string]struct{}
	members map[string]models.Member
}

func (r *rosterStub) MemberIDsByGrades(ctx context.Context, grades []string) ([]string, error) {
	var ids []string
	for _, grade := range grades {
		ids = append(ids, r.byGrade[grade]...)
	}
	return ids, nil
}

func (r *rosterStub) AdminIDs(ctx context.Context) (map[string]struct{}, error) {
	if r.admins == nil {
		return map[string]struct{}{}, nil
	}
	return r.admins, nil
}

func (r *rosterStub) MembersByIDs(ctx context.Context, ids []string) ([]models.Member, error) {
	var out []models.Member
	for _, id := range ids {
		if m, ok := r.members[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestAudienceResolveUnionOfGradesAndExplicit(t *testing.T) {
	roster := &rosterStub{
		byGrade: map[string][]string{"10": {"m1", "m2"}},
		members: map[string]models.Member{
			"m2": {ID: "m2"},
			"m3": {ID: "m3"},
		},
	}
	svc := NewAudienceService(roster, nil, zap.NewNop())

	campaign := &models.Campaign{
		TargetGrades:  pq.StringArray{"10"},
		TargetUserIDs: pq.StringArray{"m2", "m3"},
	}
	audience, err := svc.Resolve(context.Background(), campaign)
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "m2", "m3"}, audience)
}

func TestAudienceResolveDropsUnknownExplicitIDs(t *testing.T) {
	roster := &rosterStub{
		byGrade: map[string][]string{"10": {"m1"}},
		members: map[string]models.Member{"m2": {ID: "m2"}},
	}
	svc := NewAudienceService(roster, nil, zap.NewNop())

	// "ghost" left the lab; keeping the id would penalize nobody every
	// evening and spam the enforcement log instead.
	campaign := &models.Campaign{
		TargetGrades:  pq.StringArray{"10"},
		TargetUserIDs: pq.StringArray{"m2", "ghost"},
	}
	audience, err := svc.Resolve(context.Background(), campaign)
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "m2"}, audience)
}

func TestAudienceResolveDefaultGradesFallback(t *testing.T) {
	roster := &rosterStub{byGrade: map[string][]string{"10": {"m1"}, "11": {"m4"}}}
	svc := NewAudienceService(roster, []string{"10", "11"}, zap.NewNop())

	audience, err := svc.Resolve(context.Background(), &models.Campaign{})
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "m4"}, audience)
}

func TestAudienceResolveExcludesAdmins(t *testing.T) {
	roster := &rosterStub{
		byGrade: map[string][]string{"10": {"m1", "m2"}},
		admins:  map[string]struct{}{"m2": {}, "boss": {}},
		members: map[string]models.Member{"boss": {ID: "boss"}},
	}
	svc := NewAudienceService(roster, nil, zap.NewNop())

	campaign := &models.Campaign{
		TargetGrades:  pq.StringArray{"10"},
		TargetUserIDs: pq.StringArray{"boss"},
	}
	audience, err := svc.Resolve(context.Background(), campaign)
	require.NoError(t, err)
	require.Equal(t, []string{"m1"}, audience)
}

func TestAudienceContacts(t *testing.T) {
	roster := &rosterStub{members: map[string]models.Member{
		"m1": {ID: "m1", Contact: "m1@lab.test"},
	}}
	svc := NewAudienceService(roster, nil, zap.NewNop())

	contacts, err := svc.Contacts(context.Background(), []string{"m1", "gone"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"m1": "m1@lab.test"}, contacts)
}
