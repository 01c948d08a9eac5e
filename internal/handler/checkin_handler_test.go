package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lab-admin-api/internal/dto"
	"github.com/noah-isme/lab-admin-api/internal/middleware"
	"github.com/noah-isme/lab-admin-api/internal/models"
	appErrors "github.com/noah-isme/lab-admin-api/pkg/errors"
)

type checkInServiceMock struct {
	result *dto.CheckInResult
	err    error
	userID string
}

func (m *checkInServiceMock) Submit(ctx context.Context, userID string, req dto.SubmitCheckInRequest) (*dto.CheckInResult, error) {
	m.userID = userID
	return m.result, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestCheckInHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &checkInServiceMock{result: &dto.CheckInResult{CheckInID: "chk-1", DistanceMeters: 42.5}}
	handler := NewCheckInHandler(mockSvc)

	payload, _ := json.Marshal(dto.SubmitCheckInRequest{TriggerID: "t1", Latitude: -6.3628, Longitude: 106.8269})
	c, w := newGinContext(http.MethodPost, "/checkins", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "m1", Role: models.RoleMember})

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "m1", mockSvc.userID)
}

func TestCheckInHandlerSubmitOutOfRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &checkInServiceMock{err: appErrors.WithDetails(appErrors.ErrOutOfRange, map[string]interface{}{
		"distance_meters": 180.0,
		"radius_meters":   100.0,
	})}
	handler := NewCheckInHandler(mockSvc)

	payload, _ := json.Marshal(dto.SubmitCheckInRequest{TriggerID: "t1", Latitude: -6.36, Longitude: 106.8269})
	c, w := newGinContext(http.MethodPost, "/checkins", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "m1", Role: models.RoleMember})

	handler.Submit(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "distance_meters")
}

func TestCheckInHandlerSubmitRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCheckInHandler(&checkInServiceMock{})

	payload, _ := json.Marshal(dto.SubmitCheckInRequest{TriggerID: "t1", Latitude: -6.3628, Longitude: 106.8269})
	c, w := newGinContext(http.MethodPost, "/checkins", payload)

	handler.Submit(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
