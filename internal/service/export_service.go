package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lab-admin-api/internal/models"
	"github.com/noah-isme/lab-admin-api/pkg/export"
	"github.com/noah-isme/lab-admin-api/pkg/storage"
)

type exportCampaignReader interface {
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	TriggersWithStats(ctx context.Context, campaignID string) ([]models.TriggerWithStats, error)
}

type exportCheckInReader interface {
	SignedUserIDs(ctx context.Context, triggerID string) (map[string]struct{}, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds campaign attendance datasets and persists rendered
// files.
type ExportService struct {
	campaigns exportCampaignReader
	checkins  exportCheckInReader
	audience  audienceResolver
	roster    rosterReader
	leaves    leaveReader
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(campaigns exportCampaignReader, checkins exportCheckInReader, audience audienceResolver, roster rosterReader, leaves leaveReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		campaigns: campaigns,
		checkins:  checkins,
		audience:  audience,
		roster:    roster,
		leaves:    leaves,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds the dataset for the job's campaign and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job.Params)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL
// when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	campaignPart := sanitizeFilename(job.Params.CampaignID)
	return fmt.Sprintf("attendance_%s_%s.%s", campaignPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// buildDataset produces one row per audience member: how many of the
// campaign's completed triggers they signed, missed, or spent on leave.
func (s *ExportService) buildDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	campaign, err := s.campaigns.GetByID(ctx, params.CampaignID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	audience, err := s.audience.Resolve(ctx, campaign)
	if err != nil {
		return export.Dataset{}, "", err
	}
	triggers, err := s.campaigns.TriggersWithStats(ctx, campaign.ID)
	if err != nil {
		return export.Dataset{}, "", err
	}

	type tally struct {
		signed  int
		missed  int
		onLeave int
	}
	tallies := make(map[string]*tally, len(audience))
	for _, id := range audience {
		tallies[id] = &tally{}
	}
	completed := 0
	for _, trigger := range triggers {
		if !trigger.Completed {
			continue
		}
		completed++
		signed, err := s.checkins.SignedUserIDs(ctx, trigger.ID)
		if err != nil {
			return export.Dataset{}, "", err
		}
		onLeave, err := s.leaves.ApprovedUserIDsOn(ctx, trigger.TriggerDate)
		if err != nil {
			return export.Dataset{}, "", err
		}
		for _, id := range audience {
			switch {
			case contains(signed, id):
				tallies[id].signed++
			case contains(onLeave, id):
				tallies[id].onLeave++
			default:
				tallies[id].missed++
			}
		}
	}

	members, err := s.roster.MembersByIDs(ctx, audience)
	if err != nil {
		return export.Dataset{}, "", err
	}

	rows := make([]map[string]string, 0, len(members))
	for _, member := range members {
		t := tallies[member.ID]
		if t == nil {
			continue
		}
		rate := 0.0
		if completed > 0 {
			rate = float64(t.signed) / float64(completed) * 100
		}
		rows = append(rows, map[string]string{
			"Member ID":      member.ID,
			"Name":           member.FullName,
			"Grade":          member.Grade,
			"Signed":         fmt.Sprintf("%d", t.signed),
			"Missed":         fmt.Sprintf("%d", t.missed),
			"On Leave":       fmt.Sprintf("%d", t.onLeave),
			"Attendance (%)": fmt.Sprintf("%.2f", rate),
			"Points":         fmt.Sprintf("%d", member.Points),
		})
	}

	dataset := export.Dataset{
		Headers: []string{"Member ID", "Name", "Grade", "Signed", "Missed", "On Leave", "Attendance (%)", "Points"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Attendance Report %s", campaign.Name)
	return dataset, title, nil
}

func contains(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
