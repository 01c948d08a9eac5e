package dto

import "github.com/noah-isme/lab-admin-api/internal/models"

// CreateCampaignRequest is the admin payload for a new attendance campaign.
type CreateCampaignRequest struct {
	Name          string   `json:"name" validate:"required,max=128"`
	Description   *string  `json:"description,omitempty"`
	DateStart     string   `json:"date_start" validate:"required"`
	DateEnd       string   `json:"date_end" validate:"required"`
	LocationName  string   `json:"location_name" validate:"required,max=128"`
	Latitude      float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude     float64  `json:"longitude" validate:"min=-180,max=180"`
	RadiusMeters  float64  `json:"radius_meters" validate:"required,gt=0"`
	PenaltyPoints int      `json:"penalty_points" validate:"required,gt=0"`
	TargetGrades  []string `json:"target_grades,omitempty"`
	TargetUserIDs []string `json:"target_user_ids,omitempty"`
}

// UpdateCampaignRequest mirrors the create payload for full updates.
type UpdateCampaignRequest struct {
	Name          string   `json:"name" validate:"required,max=128"`
	Description   *string  `json:"description,omitempty"`
	DateStart     string   `json:"date_start" validate:"required"`
	DateEnd       string   `json:"date_end" validate:"required"`
	LocationName  string   `json:"location_name" validate:"required,max=128"`
	Latitude      float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude     float64  `json:"longitude" validate:"min=-180,max=180"`
	RadiusMeters  float64  `json:"radius_meters" validate:"required,gt=0"`
	PenaltyPoints int      `json:"penalty_points" validate:"required,gt=0"`
	TargetGrades  []string `json:"target_grades,omitempty"`
	TargetUserIDs []string `json:"target_user_ids,omitempty"`
	Completed     *bool    `json:"completed,omitempty"`
}

// CampaignFilter defines list query parameters.
type CampaignFilter struct {
	ActiveOn  string // YYYY-MM-DD; only campaigns whose range covers the date
	Completed *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CampaignDetail is a campaign with its triggers and per-trigger signed counts.
type CampaignDetail struct {
	models.Campaign
	Triggers []models.TriggerWithStats `json:"triggers"`
}

// ForceTriggerRequest creates a manual trigger, optionally at a supplied time.
type ForceTriggerRequest struct {
	TriggerTime *string `json:"trigger_time,omitempty" validate:"omitempty,len=8"`
}
