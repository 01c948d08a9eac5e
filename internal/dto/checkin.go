package dto

// SubmitCheckInRequest is a member's location-verified sign against a trigger.
type SubmitCheckInRequest struct {
	TriggerID string  `json:"trigger_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// CheckInResult reports the accepted sign and the computed distance for
// caller transparency.
type CheckInResult struct {
	CheckInID      string  `json:"checkin_id"`
	DistanceMeters float64 `json:"distance_meters"`
}
