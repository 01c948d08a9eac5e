package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lab-admin-api/internal/dto"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
	"github.com/noah-isme/lab-admin-api/pkg/response"
)

type checkInService interface {
	Submit(ctx context.Context, userID string, req dto.SubmitCheckInRequest) (*dto.CheckInResult, error)
}

// CheckInHandler manages member sign endpoints.
type CheckInHandler struct {
	checkins checkInService
}

// NewCheckInHandler constructs the handler.
func NewCheckInHandler(checkins checkInService) *CheckInHandler {
	return &CheckInHandler{checkins: checkins}
}

// Submit godoc
// @Summary Sign a call-up with the caller's location
// @Tags CheckIns
// @Accept json
// @Produce json
// @Param request body dto.SubmitCheckInRequest true "Check-in"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /checkins [post]
func (h *CheckInHandler) Submit(c *gin.Context) {
	var req dto.SubmitCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid check-in payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.checkins.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil)
}
