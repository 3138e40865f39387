package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite is a single-use, optionally time-limited registration code.
type Invite struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Code      string     `json:"code" db:"code" example:"K7Q2ZD"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ExpiresAt *time.Time `json:"expiresAt" db:"expires_at"`
	UsedAt    *time.Time `json:"usedAt" db:"used_at"`
	UsedByID  *uuid.UUID `json:"usedById" db:"used_by_id"`
	RevokedAt *time.Time `json:"revokedAt" db:"revoked_at"`
}

// IsUsable reports whether the invite can still be redeemed at now.
func (i *Invite) IsUsable(now time.Time) bool {
	if i.RevokedAt != nil || i.UsedAt != nil {
		return false
	}
	return i.ExpiresAt == nil || i.ExpiresAt.After(now)
}
