package models

// Pagination describes list envelopes.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// DateLayout is the calendar-date wire format used across the API.
const DateLayout = "2006-01-02"

// TimeLayout is the time-of-day wire format used for trigger times.
const TimeLayout = "15:04:05"
