package models

import "time"

// OwnershipStatus ownership record status
type OwnershipStatus string

const (
	OwnershipHeld   OwnershipStatus = "held"
	OwnershipLocked OwnershipStatus = "locked" // inputs of a forge whose burn was submitted
	OwnershipBurned OwnershipStatus = "burned"
)

// Ownership sources
const (
	SourceMint  = "mint"
	SourceForge = "forge"
)

// OwnershipRecord a token held by a player
type OwnershipRecord struct {
	ID              string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OwnerKey        string          `gorm:"index;type:varchar(128);not null" json:"owner_key"`
	AssetIdentifier string          `gorm:"uniqueIndex;type:varchar(64);not null" json:"asset_identifier"`
	Tier            string          `gorm:"type:varchar(32);not null" json:"tier"`
	Source          string          `gorm:"type:varchar(16);not null" json:"source"`
	CategoryID      string          `gorm:"type:varchar(32)" json:"category_id,omitempty"`
	SeasonID        string          `gorm:"type:varchar(16)" json:"season_id,omitempty"`
	Status          OwnershipStatus `gorm:"type:varchar(16);not null" json:"status"`
	ForgeID         string          `gorm:"type:varchar(64)" json:"forge_id,omitempty"` // forge holding or burning this record

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specify table name
func (OwnershipRecord) TableName() string {
	return "tb_ownership_record"
}

// AssetClaim reserves an asset identifier before it is submitted to the ledger
type AssetClaim struct {
	AssetIdentifier string    `gorm:"primaryKey;type:varchar(64)" json:"asset_identifier"`
	OperationID     string    `gorm:"type:varchar(64);not null" json:"operation_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specify table name
func (AssetClaim) TableName() string {
	return "tb_asset_claim"
}
