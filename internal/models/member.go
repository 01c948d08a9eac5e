package models

import "time"

// Member is a lab member in the roster. The engine reads grade, admin flag,
// contact address, and point balance; everything else belongs to the member
// management surface.
type Member struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Grade     string    `db:"grade" json:"grade"`
	Contact   string    `db:"contact" json:"contact"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	Points    int       `db:"points" json:"points"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LeaveRequest is an approved absence interval. Only approved rows are
// visible to the engine.
type LeaveRequest struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	DateFrom  time.Time `db:"date_from" json:"date_from"`
	DateTo    time.Time `db:"date_to" json:"date_to"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeaveStatusApproved is the only status the Penalty Enforcer honors.
const LeaveStatusApproved = "approved"
