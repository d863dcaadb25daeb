package models

import "time"

// EligibilityStatus eligibility lifecycle status
type EligibilityStatus string

const (
	EligibilityActive  EligibilityStatus = "active"
	EligibilityUsed    EligibilityStatus = "used"
	EligibilityExpired EligibilityStatus = "expired"
)

// Eligibility time-boxed right to mint one token
type Eligibility struct {
	ID         string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	PlayerID   string            `gorm:"index;type:varchar(128);not null" json:"player_id"`
	CategoryID string            `gorm:"type:varchar(32);not null" json:"category_id"`
	IsGuest    bool              `gorm:"not null;default:false" json:"is_guest"`
	Status     EligibilityStatus `gorm:"type:varchar(16);not null" json:"status"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// TableName specify table name
func (Eligibility) TableName() string {
	return "tb_eligibility"
}

// EffectiveStatus status as seen at now; an active record past its expiry reads as expired
func (e *Eligibility) EffectiveStatus(now time.Time) EligibilityStatus {
	if e.Status == EligibilityActive && !now.Before(e.ExpiresAt) {
		return EligibilityExpired
	}
	return e.Status
}
