package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/dto"
	"github.com/noah-isme/lab-admin-api/internal/models"
	"github.com/noah-isme/lab-admin-api/internal/repository"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
	"github.com/noah-isme/lab-admin-api/pkg/jobs"
)

type reportRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *reportRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *reportRepoStub) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return job, nil
}

func (r *reportRepoStub) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *reportRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *reportRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type generatorStub struct {
	result *ExportResult
	err    error
}

func (g *generatorStub) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	return g.result, g.err
}

func newReportFixture(repo *reportRepoStub, queue *queueStub) *ReportService {
	campaigns := &campaignListerStub{campaigns: map[string]*models.Campaign{
		"c1": {ID: "c1", Name: "March lab nights"},
	}}
	return NewReportService(repo, campaigns, queue, nil, zap.NewNop(), ReportServiceConfig{})
}

func TestReportCreateJobEnqueues(t *testing.T) {
	repo := newReportRepoStub()
	queue := &queueStub{}
	svc := newReportFixture(repo, queue)

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		CampaignID: "c1",
		Format:     models.ReportFormatCSV,
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.ID, queue.jobs[0].ID)
}

func TestReportCreateJobRejectsUnknownCampaign(t *testing.T) {
	svc := newReportFixture(newReportRepoStub(), &queueStub{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		CampaignID: "missing",
		Format:     models.ReportFormatCSV,
	}, "admin-1")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestReportCreateJobRejectsBadFormat(t *testing.T) {
	svc := newReportFixture(newReportRepoStub(), &queueStub{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		CampaignID: "c1",
		Format:     models.ReportFormat("xlsx"),
	}, "admin-1")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReportCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	repo := newReportRepoStub()
	queue := &queueStub{err: errors.New("queue closed")}
	svc := newReportFixture(repo, queue)

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		CampaignID: "c1",
		Format:     models.ReportFormatPDF,
	}, "admin-1")
	require.Error(t, err)
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestReportGetStatusEnforcesOwnership(t *testing.T) {
	repo := newReportRepoStub()
	job := &models.ReportJob{CreatedBy: "m1", Status: models.ReportStatusProcessing}
	require.NoError(t, repo.Create(context.Background(), job))
	svc := newReportFixture(repo, &queueStub{})

	_, err := svc.GetStatus(context.Background(), job.ID, "m2", models.RoleMember)
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	resp, err := svc.GetStatus(context.Background(), job.ID, "m2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusProcessing, resp.Status)
}

func TestReportWorkerMarksFinished(t *testing.T) {
	repo := newReportRepoStub()
	job := &models.ReportJob{Params: models.ReportJobParams{CampaignID: "c1", Format: models.ReportFormatCSV}}
	require.NoError(t, repo.Create(context.Background(), job))

	worker := NewReportWorker(repo, &generatorStub{result: &ExportResult{URL: "/api/v1/export/tok"}}, 3, zap.NewNop())
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID}))

	stored := repo.jobs[job.ID]
	assert.Equal(t, models.ReportStatusFinished, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.ResultURL)
	assert.Equal(t, "/api/v1/export/tok", *stored.ResultURL)
}

func TestReportWorkerRequeuesUntilMaxRetries(t *testing.T) {
	repo := newReportRepoStub()
	job := &models.ReportJob{Params: models.ReportJobParams{CampaignID: "c1", Format: models.ReportFormatCSV}}
	require.NoError(t, repo.Create(context.Background(), job))

	worker := NewReportWorker(repo, &generatorStub{err: errors.New("render failed")}, 2, zap.NewNop())

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0}))
	assert.Equal(t, models.ReportStatusQueued, repo.jobs[job.ID].Status)

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 2}))
	assert.Equal(t, models.ReportStatusFailed, repo.jobs[job.ID].Status)
}
