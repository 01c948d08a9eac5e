package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lab-admin-api/internal/dto"
	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
	"github.com/noah-isme/lab-admin-api/pkg/response"
)

type campaignService interface {
	Create(ctx context.Context, createdBy string, req dto.CreateCampaignRequest) (*models.Campaign, error)
	Get(ctx context.Context, id string) (*models.Campaign, error)
	GetDetail(ctx context.Context, id string) (*dto.CampaignDetail, error)
	Update(ctx context.Context, id string, req dto.UpdateCampaignRequest) (*models.Campaign, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter dto.CampaignFilter) ([]models.Campaign, *models.Pagination, error)
}

type triggerForcer interface {
	ForceTrigger(ctx context.Context, campaignID string, date time.Time, triggerTime *string) (*models.DailyTrigger, error)
}

// CampaignHandler manages campaign HTTP endpoints.
type CampaignHandler struct {
	campaigns campaignService
	triggers  triggerForcer
}

// NewCampaignHandler constructs the handler.
func NewCampaignHandler(campaigns campaignService, triggers triggerForcer) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, triggers: triggers}
}

// Create godoc
// @Summary Create attendance campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.CreateCampaignRequest true "Campaign"
// @Success 201 {object} response.Envelope
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid campaign payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	campaign, err := h.campaigns.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, campaign)
}

// List godoc
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Param active_on query string false "YYYY-MM-DD"
// @Param completed query bool false "Completion filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	filter := dto.CampaignFilter{
		ActiveOn:  c.Query("active_on"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "completed must be a boolean"))
			return
		}
		filter.Completed = &completed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	campaigns, pagination, err := h.campaigns.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaigns, pagination)
}

// Get godoc
// @Summary Campaign detail with triggers
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	detail, err := h.campaigns.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param request body dto.UpdateCampaignRequest true "Campaign"
// @Success 200 {object} response.Envelope
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) Update(c *gin.Context) {
	var req dto.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid campaign payload"))
		return
	}
	campaign, err := h.campaigns.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaign, nil)
}

// Delete godoc
// @Summary Delete campaign
// @Tags Campaigns
// @Param id path string true "Campaign ID"
// @Success 204
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.campaigns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ForceTrigger godoc
// @Summary Create a manual trigger for today
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param request body dto.ForceTriggerRequest false "Options"
// @Success 201 {object} response.Envelope
// @Router /campaigns/{id}/force-trigger [post]
func (h *CampaignHandler) ForceTrigger(c *gin.Context) {
	var req dto.ForceTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid trigger payload"))
		return
	}
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	trigger, err := h.triggers.ForceTrigger(c.Request.Context(), c.Param("id"), date, req.TriggerTime)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, trigger)
}
