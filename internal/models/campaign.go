package models

import (
	"time"

	"github.com/lib/pq"
)

// Campaign is an attendance requirement spanning a date range with a
// geofenced location and per-absence penalty.
type Campaign struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Description   *string        `db:"description" json:"description,omitempty"`
	DateStart     time.Time      `db:"date_start" json:"date_start"`
	DateEnd       time.Time      `db:"date_end" json:"date_end"`
	LocationName  string         `db:"location_name" json:"location_name"`
	Latitude      float64        `db:"latitude" json:"latitude"`
	Longitude     float64        `db:"longitude" json:"longitude"`
	RadiusMeters  float64        `db:"radius_meters" json:"radius_meters"`
	PenaltyPoints int            `db:"penalty_points" json:"penalty_points"`
	TargetGrades  pq.StringArray `db:"target_grades" json:"target_grades"`
	TargetUserIDs pq.StringArray `db:"target_user_ids" json:"target_user_ids"`
	CreatedBy     string         `db:"created_by" json:"created_by"`
	Completed     bool           `db:"completed" json:"completed"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the campaign's inclusive date range contains day.
func (c *Campaign) Covers(day time.Time) bool {
	d := truncateToDate(day)
	return !d.Before(truncateToDate(c.DateStart)) && !d.After(truncateToDate(c.DateEnd))
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
