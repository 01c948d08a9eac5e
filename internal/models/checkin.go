package models

import "time"

// CheckInRecord is an accepted, location-verified sign against a trigger.
// Insert-only; at most one record per (trigger_id, user_id).
type CheckInRecord struct {
	ID        string    `db:"id" json:"id"`
	TriggerID string    `db:"trigger_id" json:"trigger_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	SignedAt  time.Time `db:"signed_at" json:"signed_at"`
}
