package models

import (
	"time"
)

// DailyTrigger is the single daily instantiation of a campaign: the unit
// that gets notified, signed against, and completed.
//
// At most one trigger exists per (campaign_id, trigger_date); the database
// unique constraint, not application checks, enforces this.
type DailyTrigger struct {
	ID               string    `db:"id" json:"id"`
	CampaignID       string    `db:"campaign_id" json:"campaign_id"`
	TriggerDate      time.Time `db:"trigger_date" json:"trigger_date"`
	TriggerTime      string    `db:"trigger_time" json:"trigger_time"` // HH:MM:SS
	NotificationSent bool      `db:"notification_sent" json:"notification_sent"`
	Completed        bool      `db:"completed" json:"completed"`
	IsManual         bool      `db:"is_manual" json:"is_manual"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ScheduledFor combines the trigger's calendar date and time-of-day.
func (t *DailyTrigger) ScheduledFor() (time.Time, error) {
	tod, err := time.Parse(TimeLayout, t.TriggerTime)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.TriggerDate.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), 0, t.TriggerDate.Location()), nil
}

// Deadline returns the end of the signing window.
func (t *DailyTrigger) Deadline(signingWindow time.Duration) (time.Time, error) {
	at, err := t.ScheduledFor()
	if err != nil {
		return time.Time{}, err
	}
	return at.Add(signingWindow), nil
}

// TriggerWithStats augments a trigger with its signed check-in count for
// campaign detail views.
type TriggerWithStats struct {
	DailyTrigger
	SignedCount int `db:"signed_count" json:"signed_count"`
}
