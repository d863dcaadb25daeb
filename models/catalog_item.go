package models

import "time"

// TierDefaultBase tier of every seeded catalog design
const TierDefaultBase = "base"

// CatalogItem one mintable design of a category
type CatalogItem struct {
	ID          string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CategoryID  string `gorm:"index:idx_catalog_pool,priority:1;type:varchar(32);not null" json:"category_id"`
	TierDefault string `gorm:"type:varchar(16);not null;default:base" json:"tier_default"`
	Title       string `gorm:"type:varchar(255)" json:"title"`

	// Pool flags
	IsReserved bool `gorm:"index:idx_catalog_pool,priority:2;not null;default:false" json:"is_reserved"`
	IsMinted   bool `gorm:"index:idx_catalog_pool,priority:3;not null;default:false" json:"is_minted"`

	ReservedAt *time.Time `json:"reserved_at,omitempty"`
	MintedAt   *time.Time `json:"minted_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specify table name
func (CatalogItem) TableName() string {
	return "tb_catalog_item"
}

// Catalog item states
const (
	CatalogAvailable = "available"
	CatalogReserved  = "reserved"
	CatalogMinted    = "minted"
)

// State available/reserved/minted derived from the pool flags
func (c *CatalogItem) State() string {
	switch {
	case c.IsMinted:
		return CatalogMinted
	case c.IsReserved:
		return CatalogReserved
	default:
		return CatalogAvailable
	}
}
