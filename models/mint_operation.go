package models

import "time"

// MintStatus mint operation status
type MintStatus string

const (
	MintPending   MintStatus = "pending"
	MintSubmitted MintStatus = "submitted"
	MintConfirmed MintStatus = "confirmed"
	MintFailed    MintStatus = "failed"
)

// Terminal confirmed or failed
func (s MintStatus) Terminal() bool {
	return s == MintConfirmed || s == MintFailed
}

// Failure reasons shared by mint and forge operations
const (
	ReasonSubmission     = "submission_failed"
	ReasonLedgerRejected = "ledger_rejected"
	ReasonUnknownOutcome = "unknown_outcome"
	ReasonPostBurn       = "post_burn"
	ReasonInputsLost     = "inputs_unavailable"
)

// MintOperation issuance of one catalog design to a player
type MintOperation struct {
	ID              string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	EligibilityID   string     `gorm:"index;type:varchar(64);not null" json:"eligibility_id"`
	CatalogItemID   string     `gorm:"type:varchar(64);not null" json:"catalog_item_id"`
	OwnerKey        string     `gorm:"index;type:varchar(128);not null" json:"owner_key"`
	CategoryID      string     `gorm:"type:varchar(32);not null" json:"category_id"`
	SeasonID        string     `gorm:"type:varchar(16)" json:"season_id,omitempty"`
	AssetIdentifier string     `gorm:"type:varchar(64);not null" json:"asset_identifier"`
	TxRef           string     `gorm:"type:varchar(128)" json:"tx_ref,omitempty"`
	Status          MintStatus `gorm:"index;type:varchar(16);not null" json:"status"`

	FailureReason    string `gorm:"type:varchar(32)" json:"failure_reason,omitempty"`
	Error            string `gorm:"type:text" json:"error,omitempty"`
	PollAttempts     int    `gorm:"not null;default:0" json:"poll_attempts"`
	SubmitAttempts   int    `gorm:"not null;default:0" json:"submit_attempts"`
	RequiresOperator bool   `gorm:"not null;default:false" json:"requires_operator"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specify table name
func (MintOperation) TableName() string {
	return "tb_mint_operation"
}
