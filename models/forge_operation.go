package models

import "time"

// ForgeType kind of forge, named after the tier it produces
type ForgeType string

const (
	ForgeCategoryUltimate ForgeType = "category_ultimate"
	ForgeMasterUltimate   ForgeType = "master_ultimate"
	ForgeSeasonalUltimate ForgeType = "seasonal_ultimate"
)

// Valid report whether t is a known forge type
func (t ForgeType) Valid() bool {
	switch t {
	case ForgeCategoryUltimate, ForgeMasterUltimate, ForgeSeasonalUltimate:
		return true
	}
	return false
}

// ForgeStatus forge state machine status
type ForgeStatus string

const (
	ForgePending       ForgeStatus = "pending"
	ForgeBurnSubmitted ForgeStatus = "burn_submitted"
	ForgeBurnConfirmed ForgeStatus = "burn_confirmed"
	ForgeMintSubmitted ForgeStatus = "mint_submitted"
	ForgeConfirmed     ForgeStatus = "confirmed"
	ForgeFailed        ForgeStatus = "failed"
	ForgeCancelled     ForgeStatus = "cancelled"
)

// Terminal confirmed, failed or cancelled
func (s ForgeStatus) Terminal() bool {
	return s == ForgeConfirmed || s == ForgeFailed || s == ForgeCancelled
}

// forgeOrder position of each status along the forward path
var forgeOrder = map[ForgeStatus]int{
	ForgePending:       0,
	ForgeBurnSubmitted: 1,
	ForgeBurnConfirmed: 2,
	ForgeMintSubmitted: 3,
	ForgeConfirmed:     4,
}

// CanTransition forward-only moves; failed from any non-terminal state, cancelled from pending
func (s ForgeStatus) CanTransition(to ForgeStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case ForgeFailed:
		return true
	case ForgeCancelled:
		return s == ForgePending
	}
	from, ok1 := forgeOrder[s]
	next, ok2 := forgeOrder[to]
	return ok1 && ok2 && next == from+1
}

// BurnStarted burn was (or may have been) submitted to the ledger
func (s ForgeStatus) BurnStarted() bool {
	return s != ForgePending && s != ForgeCancelled
}

// ForgeOperation burn-then-mint workflow instance
type ForgeOperation struct {
	ID               string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Type             ForgeType   `gorm:"type:varchar(32);not null" json:"type"`
	OwnerKey         string      `gorm:"index;type:varchar(128);not null" json:"owner_key"`
	CategoryID       string      `gorm:"type:varchar(32)" json:"category_id,omitempty"`
	SeasonID         string      `gorm:"type:varchar(16)" json:"season_id,omitempty"`
	InputIdentifiers []string    `gorm:"serializer:json;type:text;not null" json:"input_identifiers"`
	BurnTxRef        string      `gorm:"type:varchar(128)" json:"burn_tx_ref,omitempty"`
	MintTxRef        string      `gorm:"type:varchar(128)" json:"mint_tx_ref,omitempty"`
	OutputIdentifier string      `gorm:"type:varchar(64)" json:"output_identifier,omitempty"`
	Status           ForgeStatus `gorm:"index;type:varchar(16);not null" json:"status"`

	FailureReason    string `gorm:"type:varchar(32)" json:"failure_reason,omitempty"`
	Error            string `gorm:"type:text" json:"error,omitempty"`
	PollAttempts     int    `gorm:"not null;default:0" json:"poll_attempts"`
	SubmitAttempts   int    `gorm:"not null;default:0" json:"submit_attempts"`
	RequiresOperator bool   `gorm:"not null;default:false" json:"requires_operator"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specify table name
func (ForgeOperation) TableName() string {
	return "tb_forge_operation"
}

// ForgeInput active claim of an identifier by a non-terminal forge
type ForgeInput struct {
	ForgeID         string `gorm:"primaryKey;type:varchar(64)" json:"forge_id"`
	AssetIdentifier string `gorm:"primaryKey;type:varchar(64)" json:"asset_identifier"`
	Active          bool   `gorm:"not null;default:true" json:"active"`
}

// TableName specify table name
func (ForgeInput) TableName() string {
	return "tb_forge_input"
}
