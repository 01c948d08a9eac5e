package models

import "time"

// SystemActorID is the fallback attribution when a campaign's creator no
// longer resolves to a member.
const SystemActorID = "system"

// PointAuditLog records one point-balance adjustment with attribution.
type PointAuditLog struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Delta        int       `db:"delta" json:"delta"`
	Reason       string    `db:"reason" json:"reason"`
	AttributedTo string    `db:"attributed_to" json:"attributed_to"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
