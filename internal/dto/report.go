package dto

import "github.com/noah-isme/lab-admin-api/internal/models"

// ReportRequest is the POST /reports/generate payload.
type ReportRequest struct {
	CampaignID string              `json:"campaignId"`
	Format     models.ReportFormat `json:"format"`
}

// ReportJobResponse acknowledges an enqueued report job.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress and, once finished, the signed
// download URL.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
